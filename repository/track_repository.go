package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"riseup/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetAllTracks() ([]*model.Track, error)
	SearchTracks(query, genre string) ([]*model.Track, error)
	GetAdminTracks() ([]*model.Track, error)
	GetTracksByCreator(creatorID int64) ([]*model.Track, error)
	DeleteTrack(id int64) error
	IncrementPlays(id int64) error
	AdjustLikes(id int64, delta int64) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

const trackColumns = "id, creator_id, title, artist_name, album, genre, audio_url, cover_url, video_url, duration, plays, likes, price, is_admin_track, created_at, updated_at"

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*model.Track, error) {
	track := &model.Track{}
	err := scanner.Scan(&track.ID, &track.CreatorID, &track.Title, &track.ArtistName,
		&track.Album, &track.Genre, &track.AudioURL, &track.CoverURL, &track.VideoURL,
		&track.Duration, &track.Plays, &track.Likes, &track.Price, &track.IsAdminTrack,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (r *mysqlTrackRepository) queryTracks(query string, args ...any) ([]*model.Track, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*model.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track rows: %w", err)
	}
	return tracks, nil
}

// CreateTrack adds a new track to the catalog.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (creator_id, title, artist_name, album, genre, audio_url, cover_url, video_url, duration, price, is_admin_track)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create track statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(track.CreatorID, track.Title, track.ArtistName, track.Album, track.Genre,
		track.AudioURL, track.CoverURL, track.VideoURL, track.Duration, track.Price, track.IsAdminTrack)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create track statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for track: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	query := "SELECT " + trackColumns + " FROM tracks WHERE id = ?"
	track, err := scanTrack(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track row for ID %d: %w", id, err)
	}
	return track, nil
}

// GetAllTracks retrieves the whole catalog, newest first.
func (r *mysqlTrackRepository) GetAllTracks() ([]*model.Track, error) {
	return r.queryTracks("SELECT " + trackColumns + " FROM tracks ORDER BY created_at DESC")
}

// SearchTracks filters the catalog with a case-insensitive match across
// title, artist, album and genre, plus an optional genre filter. "all" as a
// genre means no genre filter.
func (r *mysqlTrackRepository) SearchTracks(query, genre string) ([]*model.Track, error) {
	var conditions []string
	var args []any

	if query != "" {
		like := "%" + query + "%"
		conditions = append(conditions, "(title LIKE ? OR artist_name LIKE ? OR album LIKE ? OR genre LIKE ?)")
		args = append(args, like, like, like, like)
	}
	if genre != "" && !strings.EqualFold(genre, "all") {
		conditions = append(conditions, "genre LIKE ?")
		args = append(args, "%"+genre+"%")
	}

	sqlQuery := "SELECT " + trackColumns + " FROM tracks"
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlQuery += " ORDER BY created_at DESC"

	return r.queryTracks(sqlQuery, args...)
}

// GetAdminTracks retrieves the admin-uploaded portion of the catalog, newest first.
func (r *mysqlTrackRepository) GetAdminTracks() ([]*model.Track, error) {
	return r.queryTracks("SELECT " + trackColumns + " FROM tracks WHERE is_admin_track = TRUE ORDER BY created_at DESC")
}

// GetTracksByCreator retrieves all tracks published by the given creator.
func (r *mysqlTrackRepository) GetTracksByCreator(creatorID int64) ([]*model.Track, error) {
	return r.queryTracks("SELECT "+trackColumns+" FROM tracks WHERE creator_id = ? ORDER BY created_at DESC", creatorID)
}

// DeleteTrack removes a track from the catalog.
func (r *mysqlTrackRepository) DeleteTrack(id int64) error {
	if _, err := r.db.Exec("DELETE FROM tracks WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete track %d: %w", id, err)
	}
	return nil
}

// IncrementPlays bumps the play counter by one.
func (r *mysqlTrackRepository) IncrementPlays(id int64) error {
	if _, err := r.db.Exec("UPDATE tracks SET plays = plays + 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to increment plays for track %d: %w", id, err)
	}
	return nil
}

// AdjustLikes moves the denormalized like counter by delta, clamped at zero.
func (r *mysqlTrackRepository) AdjustLikes(id int64, delta int64) error {
	if _, err := r.db.Exec("UPDATE tracks SET likes = GREATEST(0, likes + ?) WHERE id = ?", delta, id); err != nil {
		return fmt.Errorf("failed to adjust likes for track %d: %w", id, err)
	}
	return nil
}
