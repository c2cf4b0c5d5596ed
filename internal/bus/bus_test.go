package bus

import (
	"context"
	"testing"
	"time"

	"github.com/ChatPulse/ChatPulse/internal/ingest"
)

func TestPublishConsumeRoundTrip(t *testing.T) {
	b := NewEventBus()

	b.PublishInbound(&InboundEvent{
		Source: "test",
		Event:  &ingest.Message{MessageID: "m1"},
	})
	if b.InboundSize() != 1 {
		t.Fatalf("expected 1 pending event, got %d", b.InboundSize())
	}

	ev, err := b.ConsumeInbound(context.Background())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	msg, ok := ev.Event.(*ingest.Message)
	if !ok || msg.MessageID != "m1" {
		t.Fatalf("unexpected event: %+v", ev.Event)
	}
	if ev.TraceID == "" {
		t.Fatalf("expected trace id to be assigned")
	}
	if ev.ReceivedAt.IsZero() {
		t.Fatalf("expected received time to be stamped")
	}
}

func TestPublishKeepsCallerTraceID(t *testing.T) {
	b := NewEventBus()

	b.PublishInbound(&InboundEvent{
		Source:  "test",
		TraceID: "fixed",
		Event:   &ingest.Recall{MessageID: "m1"},
	})
	ev, err := b.ConsumeInbound(context.Background())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ev.TraceID != "fixed" {
		t.Fatalf("expected caller trace id preserved, got %q", ev.TraceID)
	}
}

func TestConsumeHonorsContextCancel(t *testing.T) {
	b := NewEventBus()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := b.ConsumeInbound(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("consume did not return on cancel")
	}
}
