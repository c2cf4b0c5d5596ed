// Package channels implements outbound report delivery.
package channels

import (
	"context"
	"log/slog"
)

// Deliverer sends a rendered report payload to a group's chat. Success is an
// opaque boolean; retry and backoff policy live with the caller, not here.
type Deliverer interface {
	// Name returns the channel name (e.g. "slack").
	Name() string
	// Deliver sends payload to the chat backing groupID.
	Deliver(ctx context.Context, groupID, payload string) bool
}

// LogDeliverer writes payloads to the log. It stands in when no real
// delivery channel is configured and always reports success.
type LogDeliverer struct{}

func (LogDeliverer) Name() string { return "log" }

func (LogDeliverer) Deliver(_ context.Context, groupID, payload string) bool {
	slog.Info("Delivery (log channel)", "group_id", groupID, "payload", payload)
	return true
}
