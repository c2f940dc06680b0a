package bus

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. It backs single-process deployments that
// run without Redis, and the test suites. Per topic, publishes reach every
// subscriber in the same order.
type MemoryBus struct {
	mu     sync.Mutex
	topics map[string][]*memorySubscription
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string][]*memorySubscription)}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.topics[topic] {
		sub.deliver(payload)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	sub := &memorySubscription{
		bus:   b,
		topic: topic,
		out:   make(chan []byte, 64),
	}
	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.mu.Unlock()
	return sub, nil
}

// SubscriberCount reports how many subscriptions a topic currently has.
func (b *MemoryBus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func (b *MemoryBus) remove(topic string, sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, s := range subs {
		if s == sub {
			b.topics[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}

type memorySubscription struct {
	bus    *MemoryBus
	topic  string
	out    chan []byte
	mu     sync.Mutex
	closed bool
}

// deliver is called with the bus lock held, which serializes deliveries and
// preserves publish order across subscribers.
func (s *memorySubscription) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// A subscriber that stopped draining loses messages rather than
	// blocking every other subscriber on the topic.
	select {
	case s.out <- payload:
	default:
	}
}

func (s *memorySubscription) Messages() <-chan []byte {
	return s.out
}

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.out)
	s.mu.Unlock()

	s.bus.remove(s.topic, s)
	return nil
}
