package repository

import (
	"errors"
	"fmt"

	"riseup/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations.
type LikeRepository interface {
	// ToggleLike flips the like state for (userID, trackID) and reports the
	// resulting state. The unique pair index guarantees at most one row even
	// when two toggles race.
	ToggleLike(userID, trackID int64) (liked bool, err error)
	IsLiked(userID, trackID int64) (bool, error)
	ListByUser(userID int64) ([]*model.Like, error)
	CountByUser(userID int64) (int64, error)
	DeleteByTrack(trackID int64) error
}

// gormLikeRepository implements LikeRepository on GORM.
type gormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository creates a new gormLikeRepository.
func NewGormLikeRepository(db *gorm.DB) LikeRepository {
	return &gormLikeRepository{db: db}
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (r *gormLikeRepository) ToggleLike(userID, trackID int64) (bool, error) {
	var existing model.Like
	err := r.db.Where("user_id = ? AND track_id = ?", userID, trackID).First(&existing).Error
	switch {
	case err == nil:
		// Unlike.
		if err := r.db.Delete(&existing).Error; err != nil {
			return false, fmt.Errorf("failed to delete like: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := model.Like{UserID: userID, TrackID: trackID}
		return resolveLikeCreate(r.db.Create(&like).Error)
	default:
		return false, fmt.Errorf("failed to look up like: %w", err)
	}
}

// resolveLikeCreate maps the like-insert outcome to the resulting state. A
// concurrent toggle may insert the row between the existence check and the
// insert; the unique index turns that into a duplicate-entry error, which
// still means "liked".
func resolveLikeCreate(err error) (bool, error) {
	if err == nil || isDuplicateKey(err) {
		return true, nil
	}
	return false, fmt.Errorf("failed to create like: %w", err)
}

func (r *gormLikeRepository) IsLiked(userID, trackID int64) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Like{}).Where("user_id = ? AND track_id = ?", userID, trackID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count likes: %w", err)
	}
	return count > 0, nil
}

// ListByUser returns the user's likes, newest first.
func (r *gormLikeRepository) ListByUser(userID int64) ([]*model.Like, error) {
	var likes []*model.Like
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	return likes, nil
}

func (r *gormLikeRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Like{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// DeleteByTrack removes every like pointing at the given track. Called when
// an admin deletes a track so no dangling pairs remain.
func (r *gormLikeRepository) DeleteByTrack(trackID int64) error {
	if err := r.db.Where("track_id = ?", trackID).Delete(&model.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete likes for track %d: %w", trackID, err)
	}
	return nil
}
