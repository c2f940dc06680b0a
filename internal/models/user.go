package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	// FCMToken is the device push token; nil until the client registers one.
	FCMToken *string `gorm:"type:varchar(255)" json:"-"`

	Messages        []Message        `gorm:"foreignKey:UserID" json:"-"`
	ChatRoomMembers []ChatRoomMember `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
	}
}

// UserBlock records that UserID has blocked BlockedUserID. Blocked users
// still appear in rooms; they are only excluded from push fan-out.
type UserBlock struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID        string `gorm:"type:uuid;not null;uniqueIndex:idx_user_blocked" json:"user_id"`
	BlockedUserID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_blocked" json:"blocked_user_id"`
}

func (b *UserBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
