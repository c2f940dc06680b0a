package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ColaboAI/WeGoGym-api/internal/testutil"
)

func TestBuildEnvelope(t *testing.T) {
	h := testutil.NewTestHelper(t)
	msg := h.CreateTestMessage("room-1", "alice", "see you at the gym")

	env := BuildEnvelope(msg)
	h.AssertEqual(env.ID, msg.ID, "id")
	h.AssertEqual(env.Type, TypeTextMessage, "type")
	h.AssertEqual(env.RoomID, "room-1", "room id")
	h.AssertEqual(env.UserID, "alice", "user id")
	h.AssertEqual(env.Text, "see you at the gym", "text")

	if _, err := time.Parse(time.RFC3339, env.CreatedAt); err != nil {
		t.Errorf("created_at is not RFC3339: %q", env.CreatedAt)
	}
}

// The socket frame and the push payload are built from the same envelope;
// field for field they must agree.
func TestEnvelopeDataMatchesWireForm(t *testing.T) {
	h := testutil.NewTestHelper(t)
	msg := h.CreateTestMessage("room-1", "alice", "hello")
	env := BuildEnvelope(msg)

	payload, err := env.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]string
	if err := json.Unmarshal(payload, &wire); err != nil {
		t.Fatal(err)
	}

	data := env.Data()
	h.AssertEqual(len(data), len(wire), "field count")
	for k, v := range wire {
		h.AssertEqual(data[k], v, "field "+k)
	}
}

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"text":"hello"}`, "hello", false},
		{"unknown fields tolerated", `{"text":"hello","client_ts":123}`, "hello", false},
		{"missing text", `{}`, "", false},
		{"not json", `hello`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ParseInbound([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if in.Text != tt.want {
				t.Errorf("text = %q, want %q", in.Text, tt.want)
			}
		})
	}
}

func TestRoomTopic(t *testing.T) {
	if got := RoomTopic("room-1"); got != "chat:room:room-1" {
		t.Errorf("RoomTopic = %q", got)
	}
}
