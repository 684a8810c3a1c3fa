package model

import "time"

// Like marks a track as favorited by a user. One row per (user, track) pair,
// enforced by the unique index; repeated like requests toggle the row.
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:uq_user_track;not null"`
	TrackID   int64     `json:"trackId" gorm:"uniqueIndex:uq_user_track;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (Like) TableName() string {
	return "likes"
}

// LikedTrack is a liked-songs listing row: the track plus when it was liked.
type LikedTrack struct {
	Track   Track     `json:"track"`
	LikedAt time.Time `json:"likedAt"`
}
