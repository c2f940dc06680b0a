package service

import (
	"errors"
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/cache"
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"github.com/ColaboAI/WeGoGym-api/internal/repository"
)

var (
	ErrNotMember = errors.New("user is not a member of the room")
	ErrNotAdmin  = errors.New("user is not an admin of the room")
)

type RoomService struct {
	roomRepo    repository.ChatRoomRepositoryInterface
	memberRepo  repository.ChatRoomMemberRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	chatService *ChatService
	chatCache   *cache.ChatCache
}

func NewRoomService(
	roomRepo repository.ChatRoomRepositoryInterface,
	memberRepo repository.ChatRoomMemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	chatService *ChatService,
	chatCache *cache.ChatCache,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		memberRepo:  memberRepo,
		userRepo:    userRepo,
		chatService: chatService,
		chatCache:   chatCache,
	}
}

type CreateRoomInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	IsPrivate     bool     `json:"is_private"`
	IsGroupChat   bool     `json:"is_group_chat"`
	MembersUserID []string `json:"members_user_id"`
}

// CreateRoom persists the room with its creator as admin member plus the
// requested members, all in one create.
func (s *RoomService) CreateRoom(creatorID string, input CreateRoomInput) (*models.ChatRoom, error) {
	if _, err := s.userRepo.FindByID(creatorID); err != nil {
		return nil, err
	}

	room := &models.ChatRoom{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		IsGroupChat: input.IsGroupChat,
		AdminUserID: &creatorID,
		Members: []models.ChatRoomMember{
			{UserID: creatorID, IsAdmin: true},
		},
	}
	for _, userID := range input.MembersUserID {
		if userID == creatorID {
			continue
		}
		if _, err := s.userRepo.FindByID(userID); err != nil {
			return nil, err
		}
		room.Members = append(room.Members, models.ChatRoomMember{UserID: userID})
	}

	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom returns the room only to its active members.
func (s *RoomService) GetRoom(roomID, userID string) (*models.ChatRoom, error) {
	if _, err := s.memberRepo.Find(roomID, userID); err != nil {
		return nil, ErrNotMember
	}
	return s.roomRepo.FindByID(roomID)
}

// ListRooms returns the caller's active rooms with unread counts attached.
func (s *RoomService) ListRooms(userID string) ([]models.ChatRoomResponse, error) {
	rooms, err := s.roomRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ChatRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp := room.ToResponse()
		if count, err := s.chatService.UnreadCount(room.ID, userID); err == nil {
			resp.UnreadCount = count
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// LeaveRoom soft-leaves: the membership row stays (read cursor included)
// with left_at set. Any live session is untouched; the next handshake
// re-validates and gets rejected.
func (s *RoomService) LeaveRoom(roomID, userID string) error {
	if _, err := s.memberRepo.Find(roomID, userID); err != nil {
		return ErrNotMember
	}
	if err := s.memberRepo.Leave(roomID, userID, time.Now().UTC()); err != nil {
		return err
	}
	s.chatCache.InvalidateMembers(roomID)
	return nil
}

// DeleteRoom is admin-only. Memberships cascade; messages survive with a
// nulled room reference.
func (s *RoomService) DeleteRoom(roomID, userID string) error {
	member, err := s.memberRepo.Find(roomID, userID)
	if err != nil {
		return ErrNotMember
	}
	if !member.IsAdmin {
		return ErrNotAdmin
	}
	if err := s.roomRepo.Delete(roomID); err != nil {
		return err
	}
	s.chatCache.InvalidateMembers(roomID)
	s.chatCache.InvalidateRoomUnreadCounts(roomID)
	return nil
}
