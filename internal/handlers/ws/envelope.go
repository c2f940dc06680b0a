package ws

import (
	"encoding/json"
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/models"
)

const TypeTextMessage = "text_message"

// RoomTopic names the pub/sub topic for a room. One topic per room; the
// payload is always a serialized Envelope.
func RoomTopic(roomID string) string {
	return "chat:room:" + roomID
}

// Envelope is the normalized wire form of one chat message. The same value
// is relayed to sockets and attached to push notifications, built in one
// place so the two cannot drift.
type Envelope struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	RoomID    string `json:"room_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
}

// BuildEnvelope converts a persisted message. Envelopes are only built for
// rows the session just created, so the room and author references are set.
func BuildEnvelope(msg *models.Message) Envelope {
	env := Envelope{
		ID:        msg.ID,
		Type:      TypeTextMessage,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
		Text:      msg.Text,
	}
	if msg.ChatRoomID != nil {
		env.RoomID = *msg.ChatRoomID
	}
	if msg.UserID != nil {
		env.UserID = *msg.UserID
	}
	return env
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Data flattens the envelope into the string map FCM carries as the
// structured push payload.
func (e Envelope) Data() map[string]string {
	return map[string]string{
		"id":         e.ID,
		"type":       e.Type,
		"room_id":    e.RoomID,
		"user_id":    e.UserID,
		"created_at": e.CreatedAt,
		"text":       e.Text,
	}
}

// Inbound is the client frame format.
type Inbound struct {
	Text string `json:"text"`
}

func ParseInbound(raw []byte) (Inbound, error) {
	var in Inbound
	err := json.Unmarshal(raw, &in)
	return in, err
}
