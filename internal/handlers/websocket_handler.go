package handlers

import (
	"context"
	"encoding/binary"
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/ColaboAI/WeGoGym-api/internal/bus"
	"github.com/ColaboAI/WeGoGym-api/internal/handlers/ws"
	"github.com/ColaboAI/WeGoGym-api/internal/push"
	"github.com/ColaboAI/WeGoGym-api/internal/service"
)

// closePolicyViolation is the websocket close code sent when the handshake
// identifies a user with no active membership in the room.
const closePolicyViolation = 1008

type WebSocketHandler struct {
	chatService *service.ChatService
	userService *service.UserService
	registry    *ws.Registry
	bus         bus.Bus
	notifier    push.Notifier
}

func NewWebSocketHandler(chatService *service.ChatService, userService *service.UserService, b bus.Bus, notifier push.Notifier) *WebSocketHandler {
	return &WebSocketHandler{
		chatService: chatService,
		userService: userService,
		registry:    ws.NewRegistry(),
		bus:         b,
		notifier:    notifier,
	}
}

// GetRegistry exposes the registry for shutdown wiring.
func (h *WebSocketHandler) GetRegistry() *ws.Registry {
	return h.registry
}

// HandleChat runs one accepted chat socket end to end: membership check,
// registry entry, session lifecycle, teardown.
func (h *WebSocketHandler) HandleChat(c *websocket.Conn) {
	roomID := c.Params("room_id")
	userID, _ := c.Locals("userID").(string)

	// Membership gate: no session state exists before this passes.
	if _, err := h.chatService.VerifyMembership(roomID, userID); err != nil {
		log.Printf("ws: rejected handshake room=%s user=%s: %v", roomID, userID, err)
		writeClose(c, closePolicyViolation, "not a member of this room")
		c.Close()
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		log.Printf("ws: sender lookup failed user=%s: %v", userID, err)
		c.Close()
		return
	}

	key := ws.Key{RoomID: roomID, UserID: userID}
	h.registry.Connect(key, c)
	// Teardown must only remove this handler's own socket: a reconnect may
	// have replaced the entry under the key by the time this runs.
	defer h.registry.DisconnectConn(key, c)

	session := ws.NewSession(c, key, user.Username, h.bus, h.chatService, h.notifier)
	if err := session.Run(context.Background()); err != nil {
		log.Printf("ws: session ended room=%s user=%s: %v", roomID, userID, err)
	}
}

func writeClose(c *websocket.Conn, code int, reason string) {
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, uint16(code))
	copy(payload[2:], reason)
	if err := c.WriteMessage(websocket.CloseMessage, payload); err != nil {
		log.Printf("ws: close frame write failed: %v", err)
	}
}
