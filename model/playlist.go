package model

import "time"

// Playlist is a user-owned ordered collection of tracks.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"userId" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	IsPublic    bool      `json:"isPublic" gorm:"default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistTrack is a membership row; Position gives the play order.
// The unique index keeps a playlist free of duplicate track ids.
type PlaylistTrack struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlistId" gorm:"uniqueIndex:uq_playlist_track;not null"`
	TrackID    int64     `json:"trackId" gorm:"uniqueIndex:uq_playlist_track;not null"`
	Position   int       `json:"position" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (PlaylistTrack) TableName() string {
	return "playlist_tracks"
}

// PlaylistWithTracks bundles a playlist with its resolved track ids in order.
type PlaylistWithTracks struct {
	Playlist
	TrackIDs []int64 `json:"trackIds"`
}
