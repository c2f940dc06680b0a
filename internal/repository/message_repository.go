package repository

import (
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) ListByRoom(roomID string, before *time.Time, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.Where("chat_room_id = ?", roomID)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) CountUnread(roomID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("chat_room_id = ? AND created_at > ?", roomID, since).
		Count(&count).Error
	return count, err
}
