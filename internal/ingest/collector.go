package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/store"
)

// Collector normalizes inbound events and performs idempotent insertion.
// It runs inline in the inbound event path, so it never lets an error
// propagate past its boundary: malformed input is dropped and logged.
type Collector struct {
	store *store.Store
	cfg   *config.Store
}

// NewCollector creates a Collector writing to st under the live config in cfg.
func NewCollector(st *store.Store, cfg *config.Store) *Collector {
	return &Collector{store: st, cfg: cfg}
}

// Ingest routes one inbound event. Best-effort: failures are logged, never
// returned.
func (c *Collector) Ingest(ev Event) {
	switch e := ev.(type) {
	case *Message:
		c.collectMessage(e)
	case *Recall:
		c.MarkRecalled(e)
	case *MemberChange:
		c.collectMemberChange(e)
	case *FileUpload:
		c.collectFileUpload(e)
	default:
		slog.Warn("Collector: unknown event kind dropped", "event", fmt.Sprintf("%T", ev))
	}
}

func (c *Collector) collectMessage(msg *Message) {
	cfg := c.cfg.Snapshot()
	rec := normalizeMessage(msg, cfg)

	if rec.ChatType == store.ChatTypePrivate && !cfg.Collector.PrivateMessages {
		return
	}
	if rec.ChatType == store.ChatTypeGroup && rec.GroupID != "" && !cfg.GroupEnabled(rec.GroupID) {
		return
	}

	inserted, err := c.store.InsertMessage(rec)
	if err != nil {
		slog.Error("Collector: message insert failed", "message_id", rec.MessageID, "error", err)
		return
	}
	if inserted {
		c.store.BumpCounter(store.CounterCollected)
	}
}

// MarkRecalled flags a stored message as recalled. A recall for an unknown
// message id is a warning-logged no-op and returns false; no row is created.
func (c *Collector) MarkRecalled(rc *Recall) bool {
	at := rc.Time
	if at == 0 {
		at = time.Now().Unix()
	}
	matched, err := c.store.MarkRecalled(rc.MessageID, at)
	if err != nil {
		slog.Error("Collector: recall update failed", "message_id", rc.MessageID, "error", err)
		return false
	}
	if !matched {
		slog.Warn("Collector: recall for unknown message", "message_id", rc.MessageID)
		return false
	}
	c.store.BumpCounter(store.CounterRecalled)
	return true
}

func (c *Collector) collectMemberChange(ev *MemberChange) {
	if ev.GroupID == "" || ev.UserID == "" {
		return
	}
	err := c.store.AppendMemberEvent(&store.MemberEvent{
		GroupID:   ev.GroupID,
		UserID:    ev.UserID,
		EventType: ev.Action,
		EventTime: eventTimeOrNow(ev.Time),
	})
	if err != nil {
		slog.Error("Collector: member event insert failed", "group_id", ev.GroupID, "error", err)
	}
}

func (c *Collector) collectFileUpload(ev *FileUpload) {
	if !c.cfg.Snapshot().Collector.GroupFiles {
		return
	}
	if ev.GroupID == "" || ev.UserID == "" {
		return
	}
	err := c.store.AppendFileEvent(&store.FileEvent{
		GroupID:   ev.GroupID,
		UserID:    ev.UserID,
		FileID:    ev.FileID,
		FileName:  ev.FileName,
		FileSize:  ev.FileSize,
		EventTime: eventTimeOrNow(ev.Time),
	})
	if err != nil {
		slog.Error("Collector: file event insert failed", "group_id", ev.GroupID, "error", err)
	}
}

// normalizeMessage converts an inbound message into the canonical log record.
// Content retention is decided here, once, at ingest time.
func normalizeMessage(msg *Message, cfg *config.Config) *store.MessageRecord {
	chatType := store.ChatTypeGroup
	if msg.Private {
		chatType = store.ChatTypePrivate
	}
	eventTime := eventTimeOrNow(msg.Time)

	messageID := msg.MessageID
	if messageID == "" {
		messageID = fmt.Sprintf("%s-%s-%d", chatType, msg.UserID, eventTime)
	}

	rec := &store.MessageRecord{
		MessageID:   messageID,
		GroupID:     msg.GroupID,
		UserID:      msg.UserID,
		ChatType:    chatType,
		MessageType: detectMessageType(msg),
		EventTime:   eventTime,
	}
	if cfg.Collector.MessageContent {
		rec.ContentText = msg.RawText
		if len(msg.Segments) > 0 {
			raw, err := json.Marshal(msg.Segments)
			if err == nil {
				rec.RawMessage = string(raw)
			}
		}
	}
	return rec
}

// detectMessageType inspects the first structured segment; a flat raw-text
// body falls back to text, and anything else is other.
func detectMessageType(msg *Message) string {
	if len(msg.Segments) > 0 {
		switch msg.Segments[0].Type {
		case "text":
			return store.MessageTypeText
		case "image":
			return store.MessageTypeImage
		case "record":
			return store.MessageTypeVoice
		case "video":
			return store.MessageTypeVideo
		case "file":
			return store.MessageTypeFile
		case "face":
			return store.MessageTypeFace
		default:
			return store.MessageTypeOther
		}
	}
	if msg.RawText != "" {
		return store.MessageTypeText
	}
	return store.MessageTypeOther
}

func eventTimeOrNow(t int64) int64 {
	if t > 0 {
		return t
	}
	return time.Now().Unix()
}
