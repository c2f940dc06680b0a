package repository

import (
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	UpdateFCMToken(userID string, token *string) error
}

// UserBlockRepositoryInterface defines the contract for block list operations
type UserBlockRepositoryInterface interface {
	Block(userID, blockedUserID string) error
	Unblock(userID, blockedUserID string) error
	// ListBlockerIDs returns the IDs of users who have blocked the given user.
	ListBlockerIDs(userID string) ([]string, error)
}

// ChatRoomRepositoryInterface defines the contract for chat room operations
type ChatRoomRepositoryInterface interface {
	Create(room *models.ChatRoom) error
	FindByID(id string) (*models.ChatRoom, error)
	ListByUserID(userID string) ([]models.ChatRoom, error)
	Delete(id string) error
}

// ChatRoomMemberRepositoryInterface defines the contract for membership operations
type ChatRoomMemberRepositoryInterface interface {
	Add(member *models.ChatRoomMember) error
	// Find returns the active (not left) membership, or gorm.ErrRecordNotFound.
	Find(roomID, userID string) (*models.ChatRoomMember, error)
	ListByRoom(roomID string) ([]models.ChatRoomMember, error)
	// AdvanceLastRead moves the read cursor forward; an older timestamp is a no-op.
	AdvanceLastRead(roomID, userID string, t time.Time) error
	Leave(roomID, userID string, at time.Time) error
}

// MessageRepositoryInterface defines the contract for message operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	// ListByRoom returns messages in (created_at, id) descending order,
	// older than the cursor when one is given.
	ListByRoom(roomID string, before *time.Time, limit int) ([]models.Message, error)
	CountUnread(roomID string, since time.Time) (int64, error)
}
