// Package push delivers offline notifications to device tokens. Delivery is
// best-effort everywhere: chat must never fail because a push did.
package push

import (
	"context"
	"log"
)

// Notifier sends a notification to a list of device tokens. Implementations
// must treat an empty token list as a silent no-op.
type Notifier interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// LogNotifier is used when FCM credentials are not configured; it only
// records what would have been sent.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}
	log.Printf("push (dry-run): %d token(s) title=%q body_len=%d", len(tokens), title, len(body))
	return nil
}
