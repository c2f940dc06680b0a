package repository

import (
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"gorm.io/gorm"
)

type ChatRoomRepository struct {
	db *gorm.DB
}

func NewChatRoomRepository(db *gorm.DB) *ChatRoomRepository {
	return &ChatRoomRepository{db: db}
}

// Create persists the room together with its initial members in one
// transaction (GORM saves the Members association with the room).
func (r *ChatRoomRepository) Create(room *models.ChatRoom) error {
	return r.db.Create(room).Error
}

func (r *ChatRoomRepository) FindByID(id string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.First(&room, "id = ?", id).Error
	return &room, err
}

func (r *ChatRoomRepository) ListByUserID(userID string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.
		Joins("JOIN chat_room_members ON chat_room_members.chat_room_id = chat_rooms.id").
		Where("chat_room_members.user_id = ? AND chat_room_members.left_at IS NULL", userID).
		Order("chat_rooms.updated_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// Delete removes the room; memberships cascade, messages keep a nulled
// room reference (retained for audit).
func (r *ChatRoomRepository) Delete(id string) error {
	return r.db.Delete(&models.ChatRoom{}, "id = ?", id).Error
}
