package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ColaboAI/WeGoGym-api/internal/httpx"
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"github.com/ColaboAI/WeGoGym-api/internal/service"
	"github.com/ColaboAI/WeGoGym-api/internal/validation"
)

type ChatHandler struct {
	roomService *service.RoomService
	chatService *service.ChatService
}

func NewChatHandler(roomService *service.RoomService, chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{roomService: roomService, chatService: chatService}
}

func (h *ChatHandler) CreateRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	var input service.CreateRoomInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_body", "Invalid request body")
	}
	input.Name = validation.TrimAndLimit(input.Name, 0)
	if input.IsGroupChat && !validation.ValidateRoomName(input.Name) {
		return httpx.BadRequest(c, "invalid_room_name", "Group chat rooms need a name up to 100 characters")
	}
	if !validation.ValidateRoomDescription(input.Description) {
		return httpx.BadRequest(c, "invalid_room_description", "Description too long")
	}

	room, err := h.roomService.CreateRoom(userID, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "user_not_found", "A requested member does not exist")
		}
		return httpx.Internal(c, "room_create_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(room.ToResponse())
}

func (h *ChatHandler) GetRooms(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	rooms, err := h.roomService.ListRooms(userID)
	if err != nil {
		return httpx.Internal(c, "room_list_failed")
	}
	return c.JSON(fiber.Map{"rooms": rooms})
}

func (h *ChatHandler) GetRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	room, err := h.roomService.GetRoom(c.Params("room_id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotMember) {
			return httpx.Forbidden(c, "not_a_member", "Not a member of this room")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httpx.NotFound(c, "room_not_found", "Chat room not found")
		}
		return httpx.Internal(c, "room_get_failed")
	}
	return c.JSON(room.ToResponse())
}

func (h *ChatHandler) DeleteRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	if err := h.roomService.DeleteRoom(c.Params("room_id"), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotMember):
			return httpx.Forbidden(c, "not_a_member", "Not a member of this room")
		case errors.Is(err, service.ErrNotAdmin):
			return httpx.Forbidden(c, "not_an_admin", "Only the room admin can delete it")
		default:
			return httpx.Internal(c, "room_delete_failed")
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChatHandler) GetMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}
	roomID := c.Params("room_id")

	if _, err := h.chatService.VerifyMembership(roomID, userID); err != nil {
		return httpx.Forbidden(c, "not_a_member", "Not a member of this room")
	}

	members, err := h.chatService.Members(roomID)
	if err != nil {
		return httpx.Internal(c, "member_list_failed")
	}

	responses := make([]models.ChatRoomMemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, m.ToResponse())
	}
	return c.JSON(fiber.Map{"members": responses})
}

func (h *ChatHandler) LeaveRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}

	if err := h.roomService.LeaveRoom(c.Params("room_id"), userID); err != nil {
		if errors.Is(err, service.ErrNotMember) {
			return httpx.Forbidden(c, "not_a_member", "Not a member of this room")
		}
		return httpx.Internal(c, "room_leave_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMessages serves one history page, newest first, and advances the
// caller's read cursor as a side effect. The websocket session never touches
// the cursor; this endpoint is its sole writer.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalString(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "missing_identity", "Missing identity")
	}
	roomID := c.Params("room_id")

	if _, err := h.chatService.VerifyMembership(roomID, userID); err != nil {
		return httpx.Forbidden(c, "not_a_member", "Not a member of this room")
	}

	var before *time.Time
	if cursor := c.Query("before"); cursor != "" {
		t, err := time.Parse(time.RFC3339, cursor)
		if err != nil {
			return httpx.BadRequest(c, "invalid_cursor", "before must be RFC3339")
		}
		before = &t
	}
	limit := c.QueryInt("limit", 50)

	messages, err := h.chatService.History(roomID, userID, before, limit)
	if err != nil {
		return httpx.Internal(c, "history_failed")
	}

	// Full precision: a second-truncated cursor would skip messages created
	// in the same second as the page boundary.
	var nextCursor string
	if len(messages) > 0 {
		nextCursor = messages[len(messages)-1].CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return c.JSON(fiber.Map{
		"messages":    messages,
		"next_cursor": nextCursor,
	})
}
