package repository

import (
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserBlockRepository struct {
	db *gorm.DB
}

func NewUserBlockRepository(db *gorm.DB) *UserBlockRepository {
	return &UserBlockRepository{db: db}
}

func (r *UserBlockRepository) Block(userID, blockedUserID string) error {
	block := &models.UserBlock{
		UserID:        userID,
		BlockedUserID: blockedUserID,
	}
	// Blocking twice is a no-op.
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(block).Error
}

func (r *UserBlockRepository) Unblock(userID, blockedUserID string) error {
	return r.db.Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&models.UserBlock{}).Error
}

func (r *UserBlockRepository) ListBlockerIDs(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.UserBlock{}).
		Where("blocked_user_id = ?", userID).
		Pluck("user_id", &ids).Error
	return ids, err
}
