package repository

import (
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"gorm.io/gorm"
)

type ChatRoomMemberRepository struct {
	db *gorm.DB
}

func NewChatRoomMemberRepository(db *gorm.DB) *ChatRoomMemberRepository {
	return &ChatRoomMemberRepository{db: db}
}

func (r *ChatRoomMemberRepository) Add(member *models.ChatRoomMember) error {
	return r.db.Create(member).Error
}

func (r *ChatRoomMemberRepository) Find(roomID, userID string) (*models.ChatRoomMember, error) {
	var member models.ChatRoomMember
	err := r.db.
		Where("chat_room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
		First(&member).Error
	return &member, err
}

func (r *ChatRoomMemberRepository) ListByRoom(roomID string) ([]models.ChatRoomMember, error) {
	var members []models.ChatRoomMember
	err := r.db.Preload("User").
		Where("chat_room_id = ? AND left_at IS NULL", roomID).
		Find(&members).Error
	return members, err
}

// AdvanceLastRead only moves the cursor forward; the guard makes repeated
// or out-of-order calls safe.
func (r *ChatRoomMemberRepository) AdvanceLastRead(roomID, userID string, t time.Time) error {
	return r.db.Model(&models.ChatRoomMember{}).
		Where("chat_room_id = ? AND user_id = ? AND last_read_at < ?", roomID, userID, t).
		Update("last_read_at", t).Error
}

func (r *ChatRoomMemberRepository) Leave(roomID, userID string, at time.Time) error {
	return r.db.Model(&models.ChatRoomMember{}).
		Where("chat_room_id = ? AND user_id = ? AND left_at IS NULL", roomID, userID).
		Update("left_at", at).Error
}
