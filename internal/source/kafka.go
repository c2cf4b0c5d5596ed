// Package source feeds inbound chat events from external transports onto
// the bus.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/ChatPulse/ChatPulse/internal/bus"
	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/ingest"
)

// Wire event kinds accepted from the topic.
const (
	kindMessage = "message"
	kindRecall  = "recall"
	kindMember  = "member"
	kindFile    = "file"
)

// KafkaSource consumes JSON chat events from a Kafka topic and publishes
// them inbound. Upstream delivery is at-least-once; the collector's
// idempotent insert absorbs redelivery.
type KafkaSource struct {
	cfg    config.KafkaSourceConfig
	bus    *bus.EventBus
	reader *kafka.Reader
}

// NewKafkaSource creates a Kafka event source.
func NewKafkaSource(cfg config.KafkaSourceConfig, b *bus.EventBus) *KafkaSource {
	return &KafkaSource{cfg: cfg, bus: b}
}

// Name returns the source name.
func (s *KafkaSource) Name() string { return "kafka" }

// Start begins consuming. Blocks until the context is cancelled.
func (s *KafkaSource) Start(ctx context.Context) error {
	s.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(s.cfg.Brokers, ","),
		Topic:    s.cfg.Topic,
		GroupID:  s.cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer s.reader.Close()

	slog.Info("KafkaSource started", "topic", s.cfg.Topic, "brokers", s.cfg.Brokers)
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("KafkaSource: read error", "topic", s.cfg.Topic, "error", err)
			continue
		}
		ev, err := DecodeEvent(msg.Value)
		if err != nil {
			// Malformed input is dropped, never propagated.
			slog.Warn("KafkaSource: event dropped", "error", err)
			continue
		}
		s.bus.PublishInbound(&bus.InboundEvent{Source: s.Name(), Event: ev})
	}
}

// DecodeEvent parses one wire event. The payload is a JSON object tagged
// with a "type" field; the remaining fields follow the matching event shape.
func DecodeEvent(data []byte) (ingest.Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse event envelope: %w", err)
	}

	switch head.Type {
	case kindMessage:
		var ev ingest.Message
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("parse message event: %w", err)
		}
		return &ev, nil
	case kindRecall:
		var ev ingest.Recall
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("parse recall event: %w", err)
		}
		if ev.MessageID == "" {
			return nil, fmt.Errorf("recall event missing message_id")
		}
		return &ev, nil
	case kindMember:
		var ev ingest.MemberChange
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("parse member event: %w", err)
		}
		return &ev, nil
	case kindFile:
		var ev ingest.FileUpload
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("parse file event: %w", err)
		}
		return &ev, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", head.Type)
	}
}
