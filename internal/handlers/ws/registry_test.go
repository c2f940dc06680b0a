package ws

import (
	"sync"
	"testing"

	"github.com/ColaboAI/WeGoGym-api/internal/testutil"
)

func TestRegistryConnectDisconnect(t *testing.T) {
	h := testutil.NewTestHelper(t)
	r := NewRegistry()
	key := Key{RoomID: "room-1", UserID: "alice"}
	conn := newFakeConn()

	r.Connect(key, conn)
	h.AssertEqual(r.IsConnected(key), true, "connected after Connect")
	h.AssertEqual(r.Count(), 1, "one live connection")

	r.Disconnect(key)
	h.AssertEqual(r.IsConnected(key), false, "removed after Disconnect")
	h.AssertEqual(conn.isClosed(), true, "socket closed on Disconnect")
	h.AssertEqual(r.Count(), 0, "table empty")
}

func TestRegistryDisconnectIsIdempotent(t *testing.T) {
	h := testutil.NewTestHelper(t)
	r := NewRegistry()
	key := Key{RoomID: "room-1", UserID: "alice"}

	// Never connected: must not panic.
	r.Disconnect(key)

	r.Connect(key, newFakeConn())
	r.Disconnect(key)
	r.Disconnect(key)
	h.AssertEqual(r.Count(), 0, "registry consistent after repeated disconnects")
}

func TestRegistryReconnectClosesOldHandle(t *testing.T) {
	h := testutil.NewTestHelper(t)
	r := NewRegistry()
	key := Key{RoomID: "room-1", UserID: "alice"}
	oldConn := newFakeConn()
	newConn := newFakeConn()

	r.Connect(key, oldConn)
	r.Connect(key, newConn)

	h.AssertEqual(oldConn.isClosed(), true, "replaced handle closed")
	h.AssertEqual(newConn.isClosed(), false, "new handle stays open")
	h.AssertEqual(r.Count(), 1, "one entry per key")
}

// A reconnecting client replaces the registry entry while the replaced
// handler is still unwinding; its teardown must leave the new socket alone.
func TestRegistryReconnectSurvivesOldHandlerTeardown(t *testing.T) {
	h := testutil.NewTestHelper(t)
	r := NewRegistry()
	key := Key{RoomID: "room-1", UserID: "alice"}
	oldConn := newFakeConn()
	newConn := newFakeConn()

	// First handler registers, then a reconnect takes over the key.
	r.Connect(key, oldConn)
	r.Connect(key, newConn)
	h.AssertEqual(oldConn.isClosed(), true, "replaced handle closed")

	// The first handler's deferred teardown runs last. It no longer owns
	// the entry, so the new socket must stay registered and open.
	r.DisconnectConn(key, oldConn)
	h.AssertEqual(r.IsConnected(key), true, "reconnected socket still registered")
	h.AssertEqual(newConn.isClosed(), false, "reconnected socket still open")
	h.AssertEqual(r.Count(), 1, "one live connection")

	// The new handler's own teardown removes it.
	r.DisconnectConn(key, newConn)
	h.AssertEqual(r.IsConnected(key), false, "entry removed by its owner")
	h.AssertEqual(newConn.isClosed(), true, "socket closed by its owner")

	// Running it again is a no-op.
	r.DisconnectConn(key, newConn)
	h.AssertEqual(r.Count(), 0, "table empty")
}

func TestRegistryCloseAll(t *testing.T) {
	h := testutil.NewTestHelper(t)
	r := NewRegistry()

	conns := make([]*fakeConn, 0, 8)
	for _, user := range []string{"alice", "bob", "carol", "dave"} {
		for _, room := range []string{"room-1", "room-2"} {
			conn := newFakeConn()
			conns = append(conns, conn)
			r.Connect(Key{RoomID: room, UserID: user}, conn)
		}
	}
	h.AssertEqual(r.Count(), 8, "all connections registered")

	// Shutdown races in-flight disconnects.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.Disconnect(Key{RoomID: "room-1", UserID: "alice"})
	}()
	go func() {
		defer wg.Done()
		r.CloseAll()
	}()
	wg.Wait()
	r.CloseAll()

	h.AssertEqual(r.Count(), 0, "table cleared")
	for i, conn := range conns {
		if !conn.isClosed() {
			t.Errorf("connection %d left open after CloseAll", i)
		}
	}
}
