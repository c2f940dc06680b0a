package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ColaboAI/WeGoGym-api/internal/models"
)

// TTL constants for chat cache entries
const (
	UnreadCountTTL = 1 * time.Minute
	MemberListTTL  = 2 * time.Minute
)

// ChatCache caches the hot read paths of the room-list and history screens:
// per-member unread counts and room member snapshots. All methods tolerate
// a nil receiver or nil Redis so the server can run without a cache.
type ChatCache struct {
	redis *RedisCache
}

func NewChatCache(redis *RedisCache) *ChatCache {
	return &ChatCache{redis: redis}
}

func unreadKey(roomID, userID string) string {
	return fmt.Sprintf("chat:unread:%s:%s", roomID, userID)
}

func membersKey(roomID string) string {
	return fmt.Sprintf("chat:members:%s", roomID)
}

// GetUnreadCount retrieves a cached unread count
func (cc *ChatCache) GetUnreadCount(roomID, userID string) (int64, bool) {
	if cc == nil || cc.redis == nil {
		return 0, false
	}
	data, err := cc.redis.Get(unreadKey(roomID, userID))
	if err != nil || data == nil {
		return 0, false
	}

	var count int64
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount caches an unread count
func (cc *ChatCache) SetUnreadCount(roomID, userID string, count int64) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(count)
	if err != nil {
		return err
	}
	return cc.redis.Set(unreadKey(roomID, userID), data, UnreadCountTTL)
}

// InvalidateUnreadCount drops the caller's unread counter, typically after
// the history endpoint advanced their read cursor.
func (cc *ChatCache) InvalidateUnreadCount(roomID, userID string) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	return cc.redis.Delete(unreadKey(roomID, userID))
}

// InvalidateRoomUnreadCounts drops every member's counter for a room, used
// when a new message lands.
func (cc *ChatCache) InvalidateRoomUnreadCounts(roomID string) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	return cc.redis.DeletePattern(fmt.Sprintf("chat:unread:%s:*", roomID))
}

// GetMembers retrieves a cached member snapshot
func (cc *ChatCache) GetMembers(roomID string) ([]models.ChatRoomMember, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(membersKey(roomID))
	if err != nil || data == nil {
		return nil, false
	}

	var members []models.ChatRoomMember
	if err := msgpack.Unmarshal(data, &members); err != nil {
		return nil, false
	}
	return members, true
}

// SetMembers caches a member snapshot
func (cc *ChatCache) SetMembers(roomID string, members []models.ChatRoomMember) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(members)
	if err != nil {
		return err
	}
	return cc.redis.Set(membersKey(roomID), data, MemberListTTL)
}

// InvalidateMembers removes a member snapshot after a join or leave.
func (cc *ChatCache) InvalidateMembers(roomID string) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	return cc.redis.Delete(membersKey(roomID))
}
