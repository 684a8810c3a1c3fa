package model

import (
	"database/sql"
	"time"
)

// Track represents an audio track in the catalog.
// Creator tracks carry a CreatorID; admin tracks carry a free-form ArtistName
// instead and are flagged IsAdminTrack.
type Track struct {
	ID           int64          `json:"id"`
	CreatorID    sql.NullInt64  `json:"creatorId,omitempty"`
	Title        string         `json:"title"`
	ArtistName   string         `json:"artistName"`
	Album        sql.NullString `json:"album,omitempty"`
	Genre        sql.NullString `json:"genre,omitempty"`
	AudioURL     string         `json:"audioUrl"`
	CoverURL     sql.NullString `json:"coverUrl,omitempty"`
	VideoURL     sql.NullString `json:"videoUrl,omitempty"`
	Duration     sql.NullInt64  `json:"duration,omitempty"` // Seconds
	Plays        int64          `json:"plays"`
	Likes        int64          `json:"likes"`
	Price        sql.NullString `json:"price,omitempty"` // Decimal string
	IsAdminTrack bool           `json:"isAdminTrack"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
