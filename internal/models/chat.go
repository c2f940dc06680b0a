package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRoom struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:100;index" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	IsPrivate   bool   `gorm:"not null;default:true" json:"is_private"`
	IsGroupChat bool   `gorm:"not null;default:true" json:"is_group_chat"`

	// AdminUserID is cleared (not cascaded) when the admin account is deleted.
	AdminUserID *string `gorm:"type:uuid;index" json:"admin_user_id"`
	AdminUser   *User   `gorm:"foreignKey:AdminUserID;constraint:OnDelete:SET NULL" json:"-"`

	Members []ChatRoomMember `gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ChatRoomMember is the durable (room, user) relationship. At most one row
// exists per pair; leaving a room sets LeftAt instead of deleting the row.
type ChatRoomMember struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChatRoomID string `gorm:"type:uuid;not null;uniqueIndex:idx_room_user;index" json:"chat_room_id"`
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_room_user;index" json:"user_id"`

	IsAdmin bool `gorm:"not null;default:false" json:"is_admin"`

	// LastReadAt only ever moves forward; the history endpoint is its sole
	// writer (AdvanceLastRead guards monotonicity in SQL).
	LastReadAt time.Time  `gorm:"not null" json:"last_read_at"`
	LeftAt     *time.Time `json:"left_at"`

	ChatRoom ChatRoom `gorm:"foreignKey:ChatRoomID;constraint:OnDelete:CASCADE" json:"-"`
	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}

func (m *ChatRoomMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.LastReadAt.IsZero() {
		m.LastReadAt = time.Now().UTC()
	}
	return nil
}

// Message rows are immutable and retained for audit: deleting the room or
// the author nulls the reference instead of cascading.
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	ChatRoomID *string `gorm:"type:uuid;index" json:"chat_room_id"`
	UserID     *string `gorm:"type:uuid;index" json:"user_id"`

	Text string `gorm:"size:300" json:"text"`

	ChatRoom *ChatRoom `gorm:"foreignKey:ChatRoomID;constraint:OnDelete:SET NULL" json:"-"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type ChatRoomResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"is_private"`
	IsGroupChat bool      `json:"is_group_chat"`
	AdminUserID *string   `json:"admin_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UnreadCount int64     `json:"unread_count"`
}

func (r *ChatRoom) ToResponse() ChatRoomResponse {
	return ChatRoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsPrivate:   r.IsPrivate,
		IsGroupChat: r.IsGroupChat,
		AdminUserID: r.AdminUserID,
		CreatedAt:   r.CreatedAt,
	}
}

type ChatRoomMemberResponse struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	IsAdmin    bool         `json:"is_admin"`
	LastReadAt time.Time    `json:"last_read_at"`
	User       UserResponse `json:"user"`
}

func (m *ChatRoomMember) ToResponse() ChatRoomMemberResponse {
	return ChatRoomMemberResponse{
		ID:         m.ID,
		UserID:     m.UserID,
		IsAdmin:    m.IsAdmin,
		LastReadAt: m.LastReadAt,
		User:       m.User.ToResponse(),
	}
}
