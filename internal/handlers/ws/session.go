package ws

import (
	"context"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/ColaboAI/WeGoGym-api/internal/bus"
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"github.com/ColaboAI/WeGoGym-api/internal/push"
	"github.com/ColaboAI/WeGoGym-api/internal/validation"
)

// Store is the slice of the chat service a session needs: durable message
// creation and the push fan-out token set for a sender's message.
type Store interface {
	CreateMessage(ctx context.Context, roomID, userID, text string) (*models.Message, error)
	// PushTokens returns the device tokens of the room's active members,
	// excluding the sender and anyone who has blocked the sender.
	PushTokens(ctx context.Context, roomID, senderID string) ([]string, error)
}

// Session owns the full lifecycle of one accepted socket: an inbound duty
// (read frame -> persist -> publish -> push fan-out) and an outbound duty
// (bus topic -> socket), exactly one of each. The first duty to finish wins
// and the other is torn down.
type Session struct {
	conn       Conn
	key        Key
	senderName string

	bus      bus.Bus
	store    Store
	notifier push.Notifier

	closeOnce sync.Once
}

func NewSession(conn Conn, key Key, senderName string, b bus.Bus, store Store, notifier push.Notifier) *Session {
	return &Session{
		conn:       conn,
		key:        key,
		senderName: senderName,
		bus:        b,
		store:      store,
		notifier:   notifier,
	}
}

// Run blocks until the session is over. It subscribes before starting the
// duties so the sender's own messages are always relayed back, then races
// the two duties; whichever returns first triggers the single teardown
// path. Run only returns once both duties have exited.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub, err := s.bus.Subscribe(ctx, RoomTopic(s.key.RoomID))
	if err != nil {
		s.conn.Close()
		return err
	}

	done := make(chan error, 2)
	go func() { done <- s.inbound(ctx) }()
	go func() { done <- s.outbound(ctx, sub) }()

	first := <-done
	s.shutdown(cancel, sub)
	<-done

	return first
}

// shutdown cancels the surviving duty, tears down the subscription and
// closes the socket. Guarded so racing duties and external closes collapse
// into one pass.
func (s *Session) shutdown(cancel context.CancelFunc, sub bus.Subscription) {
	s.closeOnce.Do(func() {
		cancel()
		if err := sub.Close(); err != nil {
			log.Printf("chat: unsubscribe failed room=%s user=%s: %v", s.key.RoomID, s.key.UserID, err)
		}
		if err := s.conn.Close(); err != nil {
			log.Printf("chat: close failed room=%s user=%s: %v", s.key.RoomID, s.key.UserID, err)
		}
	})
}

// inbound reads client frames until the socket errors or a persist/publish
// fails. A message is published only after its row is durable.
func (s *Session) inbound(ctx context.Context) error {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			// Socket no longer readable: reconnecting clients land
			// here, which is a clean exit rather than a failure.
			return nil
		}

		in, err := ParseInbound(raw)
		if err != nil {
			log.Printf("chat: invalid frame room=%s user=%s: %v", s.key.RoomID, s.key.UserID, err)
			continue
		}
		text := validation.TrimAndLimit(in.Text, validation.MaxMessageLength())
		if text == "" {
			continue
		}

		msg, err := s.store.CreateMessage(ctx, s.key.RoomID, s.key.UserID, text)
		if err != nil {
			log.Printf("chat: persist failed room=%s user=%s: %v", s.key.RoomID, s.key.UserID, err)
			return err
		}

		env := BuildEnvelope(msg)
		payload, err := env.Marshal()
		if err != nil {
			return err
		}
		if err := s.bus.Publish(ctx, RoomTopic(s.key.RoomID), payload); err != nil {
			log.Printf("chat: publish failed room=%s user=%s: %v", s.key.RoomID, s.key.UserID, err)
			return err
		}

		s.notifyOffline(ctx, env)
	}
}

// outbound relays every envelope published on the room topic to this
// session's socket, verbatim, in the order the bus delivers them.
func (s *Session) outbound(ctx context.Context, sub bus.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		}
	}
}

// notifyOffline is best-effort: a push failure must never abort the inbound
// duty once the message is persisted and published.
func (s *Session) notifyOffline(ctx context.Context, env Envelope) {
	tokens, err := s.store.PushTokens(ctx, s.key.RoomID, s.key.UserID)
	if err != nil {
		log.Printf("chat: push recipients lookup failed room=%s: %v", s.key.RoomID, err)
		return
	}
	if err := s.notifier.Send(ctx, tokens, s.senderName, env.Text, env.Data()); err != nil {
		log.Printf("chat: push send failed room=%s: %v", s.key.RoomID, err)
	}
}
