// Package bus provides the async event bus between inbound sources and the
// collector loop.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ChatPulse/ChatPulse/internal/ingest"
)

// InboundEvent wraps a normalized chat event with source bookkeeping.
type InboundEvent struct {
	Source     string       `json:"source"`
	TraceID    string       `json:"trace_id"`
	Event      ingest.Event `json:"event"`
	ReceivedAt time.Time    `json:"received_at"`
}

// EventBus decouples event sources from the collector.
type EventBus struct {
	inbound chan *InboundEvent
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		inbound: make(chan *InboundEvent, 100),
	}
}

// PublishInbound sends an event from a source to the collector loop.
func (b *EventBus) PublishInbound(ev *InboundEvent) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}
	if ev.TraceID == "" {
		ev.TraceID = uuid.NewString()
	}
	b.inbound <- ev
}

// ConsumeInbound blocks until an event is available or the context is
// cancelled.
func (b *EventBus) ConsumeInbound(ctx context.Context) (*InboundEvent, error) {
	select {
	case ev := <-b.inbound:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// InboundSize returns the number of pending inbound events.
func (b *EventBus) InboundSize() int {
	return len(b.inbound)
}
