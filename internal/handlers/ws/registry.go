package ws

import (
	"log"
	"sync"
)

// Key identifies one live socket: a user inside a room. A user connected to
// two rooms holds two entries.
type Key struct {
	RoomID string
	UserID string
}

// Conn is the slice of the websocket connection the registry and session
// need. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Registry is the process-local table of live sockets. It holds no
// persistent state; after a restart clients simply reconnect.
type Registry struct {
	mu    sync.Mutex
	conns map[Key]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[Key]Conn)}
}

// Connect stores the handle under the key. A reconnect that overwrites an
// existing entry closes the old handle first, so the replaced socket cannot
// linger half-open.
func (r *Registry) Connect(key Key, conn Conn) {
	r.mu.Lock()
	old, existed := r.conns[key]
	r.conns[key] = conn
	count := len(r.conns)
	r.mu.Unlock()

	if existed {
		old.Close()
		log.Printf("ws: replaced connection room=%s user=%s", key.RoomID, key.UserID)
	}
	log.Printf("ws: connected room=%s user=%s (total: %d)", key.RoomID, key.UserID, count)
}

// DisconnectConn closes and removes the entry only while it still holds
// conn. After a reconnect replaced the handle, the replaced handler's
// teardown must not touch the new socket registered under the same key.
func (r *Registry) DisconnectConn(key Key, conn Conn) {
	r.mu.Lock()
	current, existed := r.conns[key]
	if !existed || current != conn {
		r.mu.Unlock()
		return
	}
	delete(r.conns, key)
	count := len(r.conns)
	r.mu.Unlock()

	conn.Close()
	log.Printf("ws: disconnected room=%s user=%s (total: %d)", key.RoomID, key.UserID, count)
}

// Disconnect closes and removes the entry. Calling it twice, or for a key
// that was never connected, is a no-op.
func (r *Registry) Disconnect(key Key) {
	r.mu.Lock()
	conn, existed := r.conns[key]
	delete(r.conns, key)
	count := len(r.conns)
	r.mu.Unlock()

	if !existed {
		return
	}
	conn.Close()
	log.Printf("ws: disconnected room=%s user=%s (total: %d)", key.RoomID, key.UserID, count)
}

// CloseAll closes every live socket and clears the table. Shutdown only.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[Key]Conn)
	r.mu.Unlock()

	for key, conn := range conns {
		if err := conn.Close(); err != nil {
			log.Printf("ws: close failed room=%s user=%s: %v", key.RoomID, key.UserID, err)
		}
	}
	if len(conns) > 0 {
		log.Printf("ws: closed %d connection(s) on shutdown", len(conns))
	}
}

func (r *Registry) IsConnected(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[key]
	return ok
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
