package repository

import (
	"errors"
	"fmt"

	"riseup/model"

	"gorm.io/gorm"
)

var (
	// ErrPlaylistNotFound is returned when a playlist does not exist or is
	// not owned by the requesting user.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrTrackAlreadyInPlaylist is returned when adding a track a playlist
	// already contains.
	ErrTrackAlreadyInPlaylist = errors.New("track already in playlist")
)

// PlaylistRepository defines the interface for playlist data operations.
type PlaylistRepository interface {
	CreatePlaylist(playlist *model.Playlist) error
	GetPlaylistsByUser(userID int64) ([]*model.PlaylistWithTracks, error)
	GetPlaylistByID(id, userID int64) (*model.PlaylistWithTracks, error)
	AddTrackToPlaylist(playlistID, trackID int64) error
	RemoveTrackFromPlaylist(playlistID, trackID int64) error
	DeletePlaylist(id, userID int64) error
	CountByUser(userID int64) (int64, error)
}

// gormPlaylistRepository implements PlaylistRepository on GORM.
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a new gormPlaylistRepository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) CreatePlaylist(playlist *model.Playlist) error {
	if err := r.db.Create(playlist).Error; err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *gormPlaylistRepository) GetPlaylistsByUser(userID int64) ([]*model.PlaylistWithTracks, error) {
	var playlists []model.Playlist
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	out := make([]*model.PlaylistWithTracks, 0, len(playlists))
	for _, playlist := range playlists {
		trackIDs, err := r.trackIDs(playlist.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &model.PlaylistWithTracks{Playlist: playlist, TrackIDs: trackIDs})
	}
	return out, nil
}

func (r *gormPlaylistRepository) GetPlaylistByID(id, userID int64) (*model.PlaylistWithTracks, error) {
	var playlist model.Playlist
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	trackIDs, err := r.trackIDs(playlist.ID)
	if err != nil {
		return nil, err
	}
	return &model.PlaylistWithTracks{Playlist: playlist, TrackIDs: trackIDs}, nil
}

// AddTrackToPlaylist appends the track at the tail position. Duplicates are
// rejected; the unique (playlist_id, track_id) index backs this up when two
// adds race.
func (r *gormPlaylistRepository) AddTrackToPlaylist(playlistID, trackID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.PlaylistTrack{}).
			Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check playlist membership: %w", err)
		}
		if count > 0 {
			return ErrTrackAlreadyInPlaylist
		}

		var maxPosition int64
		if err := tx.Model(&model.PlaylistTrack{}).
			Where("playlist_id = ?", playlistID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPosition).Error; err != nil {
			return fmt.Errorf("failed to find tail position: %w", err)
		}

		entry := model.PlaylistTrack{
			PlaylistID: playlistID,
			TrackID:    trackID,
			Position:   int(maxPosition) + 1,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrTrackAlreadyInPlaylist
			}
			return fmt.Errorf("failed to add track to playlist: %w", err)
		}
		return nil
	})
}

func (r *gormPlaylistRepository) RemoveTrackFromPlaylist(playlistID, trackID int64) error {
	res := r.db.Where("playlist_id = ? AND track_id = ?", playlistID, trackID).Delete(&model.PlaylistTrack{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove track from playlist: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func (r *gormPlaylistRepository) DeletePlaylist(id, userID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Playlist{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete playlist: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPlaylistNotFound
		}
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistTrack{}).Error; err != nil {
			return fmt.Errorf("failed to delete playlist tracks: %w", err)
		}
		return nil
	})
}

func (r *gormPlaylistRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Playlist{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", err)
	}
	return count, nil
}

func (r *gormPlaylistRepository) trackIDs(playlistID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.Model(&model.PlaylistTrack{}).
		Where("playlist_id = ?", playlistID).
		Order("position ASC").
		Pluck("track_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load playlist track ids: %w", err)
	}
	return ids, nil
}
