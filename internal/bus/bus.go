// Package bus provides topic-based publish/subscribe used to fan chat
// messages out across server processes. One topic exists per chat room;
// every process holding a socket for that room subscribes to its topic.
package bus

import "context"

// Bus is the cross-process delivery mechanism for chat envelopes.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is one subscriber's view of a topic. Close must always be
// called, even when the owning session is already tearing down.
type Subscription interface {
	// Messages yields payloads in publish order. The channel is closed
	// when the subscription is closed or the bus connection is lost.
	Messages() <-chan []byte
	Close() error
}
