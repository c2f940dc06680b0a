package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ColaboAI/WeGoGym-api/internal/bus"
	"github.com/ColaboAI/WeGoGym-api/internal/models"
	"github.com/ColaboAI/WeGoGym-api/internal/testutil"
)

// fakeConn is an in-memory stand-in for a websocket connection. Reads block
// on a frame channel until the connection is closed.
type fakeConn struct {
	in   chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:   make(chan []byte, 16),
		done: make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case <-f.done:
		return 0, nil, errors.New("use of closed connection")
	case b := <-f.in:
		return 1, b, nil
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.done:
		return errors.New("use of closed connection")
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.done) })
	return nil
}

func (f *fakeConn) send(frame string) {
	f.in <- []byte(frame)
}

func (f *fakeConn) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeConn) write(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[i]
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// mockStore implements Store in memory.
type mockStore struct {
	mu         sync.Mutex
	messages   []*models.Message
	failCreate bool
	tokens     []string
	tokensErr  error
}

func (m *mockStore) CreateMessage(ctx context.Context, roomID, userID, text string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return nil, errors.New("insert failed")
	}
	msg := &models.Message{
		ID:         uuid.NewString(),
		ChatRoomID: &roomID,
		UserID:     &userID,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *mockStore) PushTokens(ctx context.Context, roomID, senderID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, m.tokensErr
}

func (m *mockStore) messageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

type notifyCall struct {
	tokens []string
	title  string
	body   string
	data   map[string]string
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (n *mockNotifier) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{tokens: tokens, title: title, body: body, data: data})
	return n.err
}

func (n *mockNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func (n *mockNotifier) call(i int) notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[i]
}

func runSession(s *Session) chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	return done
}

func TestSessionRelaysInPublishOrder(t *testing.T) {
	h := testutil.NewTestHelper(t)
	b := bus.NewMemoryBus()
	store := &mockStore{}
	notifier := &mockNotifier{}

	connA := newFakeConn()
	connB := newFakeConn()
	sessA := NewSession(connA, Key{RoomID: "room-1", UserID: "alice"}, "alice", b, store, notifier)
	sessB := NewSession(connB, Key{RoomID: "room-1", UserID: "bob"}, "bob", b, store, notifier)
	doneA := runSession(sessA)
	doneB := runSession(sessB)

	h.WaitFor(func() bool {
		return b.SubscriberCount(RoomTopic("room-1")) == 2
	}, 2*time.Second, "both sessions subscribed")

	const n = 5
	for i := 0; i < n; i++ {
		connA.send(fmt.Sprintf(`{"text":"message %d"}`, i))
	}

	h.WaitFor(func() bool {
		return connA.writeCount() == n && connB.writeCount() == n
	}, 2*time.Second, "both sockets received all messages")

	for i := 0; i < n; i++ {
		var envA, envB Envelope
		if err := json.Unmarshal(connA.write(i), &envA); err != nil {
			t.Fatalf("invalid envelope on A: %v", err)
		}
		if err := json.Unmarshal(connB.write(i), &envB); err != nil {
			t.Fatalf("invalid envelope on B: %v", err)
		}
		h.AssertEqual(envA.Text, fmt.Sprintf("message %d", i), "A observes publish order")
		h.AssertEqual(envB.Text, fmt.Sprintf("message %d", i), "B observes publish order")
		h.AssertEqual(envA.ID, envB.ID, "same envelope on both sockets")
		h.AssertEqual(envA.Type, TypeTextMessage, "envelope type")
		h.AssertEqual(envA.RoomID, "room-1", "envelope room")
		h.AssertEqual(envA.UserID, "alice", "envelope author")
	}

	connA.Close()
	connB.Close()
	if err := <-doneA; err != nil {
		t.Errorf("session A ended with error: %v", err)
	}
	if err := <-doneB; err != nil {
		t.Errorf("session B ended with error: %v", err)
	}
	h.AssertEqual(b.SubscriberCount(RoomTopic("room-1")), 0, "subscriptions released after teardown")
}

func TestSessionPersistFailurePublishesNothing(t *testing.T) {
	h := testutil.NewTestHelper(t)
	b := bus.NewMemoryBus()
	store := &mockStore{failCreate: true}
	notifier := &mockNotifier{}

	observer, err := b.Subscribe(context.Background(), RoomTopic("room-1"))
	if err != nil {
		t.Fatal(err)
	}
	defer observer.Close()

	conn := newFakeConn()
	sess := NewSession(conn, Key{RoomID: "room-1", UserID: "alice"}, "alice", b, store, notifier)
	done := runSession(sess)

	conn.send(`{"text":"hello"}`)

	if err := <-done; err == nil {
		t.Fatal("expected session to end with the persistence error")
	}

	select {
	case payload := <-observer.Messages():
		t.Fatalf("unpersisted message reached the bus: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
	h.AssertEqual(notifier.callCount(), 0, "no push for unpersisted message")
	h.AssertEqual(conn.isClosed(), true, "socket closed on teardown")
}

func TestSessionPushFanout(t *testing.T) {
	h := testutil.NewTestHelper(t)
	b := bus.NewMemoryBus()
	store := &mockStore{tokens: []string{"token-c", "token-e"}}
	notifier := &mockNotifier{}

	conn := newFakeConn()
	sess := NewSession(conn, Key{RoomID: "room-1", UserID: "alice"}, "Alice Kim", b, store, notifier)
	done := runSession(sess)

	conn.send(`{"text":"hello"}`)
	h.WaitFor(func() bool { return notifier.callCount() == 1 }, 2*time.Second, "push sent")

	call := notifier.call(0)
	h.AssertEqual(len(call.tokens), 2, "push token count")
	h.AssertEqual(call.tokens[0], "token-c", "push token")
	h.AssertEqual(call.title, "Alice Kim", "push title is sender name")
	h.AssertEqual(call.body, "hello", "push body is message text")
	h.AssertEqual(call.data["text"], "hello", "push payload carries the envelope")
	h.AssertEqual(call.data["type"], TypeTextMessage, "push payload type")
	if call.data["id"] == "" {
		t.Error("push payload missing message id")
	}

	conn.Close()
	<-done
}

func TestSessionPushFailureDoesNotEndSession(t *testing.T) {
	h := testutil.NewTestHelper(t)
	b := bus.NewMemoryBus()
	store := &mockStore{tokens: []string{"token-c"}}
	notifier := &mockNotifier{err: errors.New("fcm unavailable")}

	conn := newFakeConn()
	sess := NewSession(conn, Key{RoomID: "room-1", UserID: "alice"}, "alice", b, store, notifier)
	done := runSession(sess)

	conn.send(`{"text":"first"}`)
	conn.send(`{"text":"second"}`)

	h.WaitFor(func() bool { return store.messageCount() == 2 }, 2*time.Second, "both messages persisted")
	h.WaitFor(func() bool { return conn.writeCount() == 2 }, 2*time.Second, "both messages relayed")

	conn.Close()
	if err := <-done; err != nil {
		t.Errorf("push failure must not surface: %v", err)
	}
}

func TestSessionIgnoresInvalidAndEmptyFrames(t *testing.T) {
	h := testutil.NewTestHelper(t)
	b := bus.NewMemoryBus()
	store := &mockStore{}
	notifier := &mockNotifier{}

	conn := newFakeConn()
	sess := NewSession(conn, Key{RoomID: "room-1", UserID: "alice"}, "alice", b, store, notifier)
	done := runSession(sess)

	conn.send(`not json at all`)
	conn.send(`{"text":"   "}`)
	conn.send(`{"text":"kept","extra":"field"}`)

	h.WaitFor(func() bool { return store.messageCount() == 1 }, 2*time.Second, "only the valid frame persisted")
	h.WaitFor(func() bool { return conn.writeCount() == 1 }, 2*time.Second, "only the valid frame relayed")

	var env Envelope
	if err := json.Unmarshal(conn.write(0), &env); err != nil {
		t.Fatal(err)
	}
	h.AssertEqual(env.Text, "kept", "trailing fields tolerated")

	conn.Close()
	<-done
}

func TestSessionContextCancelTearsDown(t *testing.T) {
	h := testutil.NewTestHelper(t)
	b := bus.NewMemoryBus()
	store := &mockStore{}
	notifier := &mockNotifier{}

	conn := newFakeConn()
	sess := NewSession(conn, Key{RoomID: "room-1", UserID: "alice"}, "alice", b, store, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	h.WaitFor(func() bool {
		return b.SubscriberCount(RoomTopic("room-1")) == 1
	}, 2*time.Second, "session subscribed")

	cancel()
	if err := <-done; err != nil {
		t.Errorf("cancelled session should end cleanly: %v", err)
	}
	h.AssertEqual(conn.isClosed(), true, "socket closed")
	h.AssertEqual(b.SubscriberCount(RoomTopic("room-1")), 0, "subscription released")
}
