package service

import (
	"context"
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/cache"
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"github.com/ColaboAI/WeGoGym-api/internal/repository"
)

// ChatService backs both the websocket sessions (message persistence, push
// fan-out set) and the history endpoint (pagination + read cursor).
type ChatService struct {
	memberRepo  repository.ChatRoomMemberRepositoryInterface
	messageRepo repository.MessageRepositoryInterface
	blockRepo   repository.UserBlockRepositoryInterface
	chatCache   *cache.ChatCache
}

func NewChatService(
	memberRepo repository.ChatRoomMemberRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	blockRepo repository.UserBlockRepositoryInterface,
	chatCache *cache.ChatCache,
) *ChatService {
	return &ChatService{
		memberRepo:  memberRepo,
		messageRepo: messageRepo,
		blockRepo:   blockRepo,
		chatCache:   chatCache,
	}
}

// VerifyMembership returns the active membership for the handshake, or an
// error when the user is not (or no longer) in the room.
func (s *ChatService) VerifyMembership(roomID, userID string) (*models.ChatRoomMember, error) {
	return s.memberRepo.Find(roomID, userID)
}

// CreateMessage persists one message row. The caller must not publish the
// message unless this returns nil.
func (s *ChatService) CreateMessage(ctx context.Context, roomID, userID, text string) (*models.Message, error) {
	message := &models.Message{
		ChatRoomID: &roomID,
		UserID:     &userID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	// Every member's unread counter is stale now.
	s.chatCache.InvalidateRoomUnreadCounts(roomID)

	return message, nil
}

// PushTokens computes the push fan-out set for a sender's message: every
// active member except the sender and except anyone who has blocked the
// sender, keeping only registered device tokens.
func (s *ChatService) PushTokens(ctx context.Context, roomID, senderID string) ([]string, error) {
	members, err := s.members(roomID)
	if err != nil {
		return nil, err
	}

	blockerIDs, err := s.blockRepo.ListBlockerIDs(senderID)
	if err != nil {
		return nil, err
	}
	blockers := make(map[string]struct{}, len(blockerIDs))
	for _, id := range blockerIDs {
		blockers[id] = struct{}{}
	}

	tokens := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserID == senderID {
			continue
		}
		if _, blocked := blockers[m.UserID]; blocked {
			continue
		}
		if m.User.FCMToken != nil && *m.User.FCMToken != "" {
			tokens = append(tokens, *m.User.FCMToken)
		}
	}
	return tokens, nil
}

// History returns one page of messages in (created_at, id) descending order
// and, as a side effect, advances the caller's read cursor to the newest
// returned message. This is the only writer of last_read_at.
func (s *ChatService) History(roomID, userID string, before *time.Time, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	messages, err := s.messageRepo.ListByRoom(roomID, before, limit)
	if err != nil {
		return nil, err
	}

	if len(messages) > 0 {
		// Newest first, so index 0 carries the cursor target. The SQL
		// guard keeps the cursor monotonic under repeated reads.
		if err := s.memberRepo.AdvanceLastRead(roomID, userID, messages[0].CreatedAt); err != nil {
			return nil, err
		}
		s.chatCache.InvalidateUnreadCount(roomID, userID)
	}

	return messages, nil
}

// UnreadCount counts messages newer than the member's read cursor,
// cache-first.
func (s *ChatService) UnreadCount(roomID, userID string) (int64, error) {
	if count, ok := s.chatCache.GetUnreadCount(roomID, userID); ok {
		return count, nil
	}

	member, err := s.memberRepo.Find(roomID, userID)
	if err != nil {
		return 0, err
	}
	count, err := s.messageRepo.CountUnread(roomID, member.LastReadAt)
	if err != nil {
		return 0, err
	}

	s.chatCache.SetUnreadCount(roomID, userID, count)
	return count, nil
}

func (s *ChatService) Members(roomID string) ([]models.ChatRoomMember, error) {
	return s.members(roomID)
}

func (s *ChatService) members(roomID string) ([]models.ChatRoomMember, error) {
	if members, ok := s.chatCache.GetMembers(roomID); ok {
		return members, nil
	}
	members, err := s.memberRepo.ListByRoom(roomID)
	if err != nil {
		return nil, err
	}
	s.chatCache.SetMembers(roomID, members)
	return members, nil
}
