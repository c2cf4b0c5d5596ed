package store

import "time"

// MessageRecord is one row of the append-only message log.
type MessageRecord struct {
	ID          int64  `json:"id"`
	MessageID   string `json:"message_id"` // Unique natural key
	GroupID     string `json:"group_id"`   // Empty for private chats
	UserID      string `json:"user_id"`
	ChatType    string `json:"chat_type"`    // group, private
	MessageType string `json:"message_type"` // text, image, voice, video, file, face, other
	EventTime   int64  `json:"event_time"`   // Seconds since epoch, source clock
	ContentText string `json:"content_text"`
	RawMessage  string `json:"raw_message"`
	IsRecall    bool   `json:"is_recall"`
	RecalledAt  *int64 `json:"recalled_at,omitempty"`
	CreatedAt   int64  `json:"created_at"` // Ingestion clock
}

// Chat types.
const (
	ChatTypeGroup   = "group"
	ChatTypePrivate = "private"
)

// Message types, derived from the first structured segment.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVoice = "voice"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"
	MessageTypeFace  = "face"
	MessageTypeOther = "other"
)

// MemberEvent is an append-only group membership change.
type MemberEvent struct {
	ID        int64  `json:"id"`
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"` // join, leave
	EventTime int64  `json:"event_time"`
}

// FileEvent is an append-only group file upload.
type FileEvent struct {
	ID        int64  `json:"id"`
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id"`
	FileID    string `json:"file_id"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	EventTime int64  `json:"event_time"`
}

// GroupSchedule is a persisted per-group report job.
type GroupSchedule struct {
	ID        int64  `json:"id"`
	GroupID   string `json:"group_id"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	Feature   string `json:"feature"`
	Enabled   bool   `json:"enabled"`
	LastRunAt *int64 `json:"last_run_at,omitempty"`
}

// Summary holds storage-wide totals for the status surface.
type Summary struct {
	TotalGroups      int `json:"total_groups"`
	TotalMessages    int `json:"total_messages"`
	RecalledMessages int `json:"recalled_messages"`
}

// Counter names persisted in the counters table.
const (
	CounterCollected    = "collected"
	CounterRecalled     = "recalled"
	CounterCommandCalls = "command_calls"
)

// Setting keys seeded on startup.
const (
	SettingStatPeriodDays        = "stat_period_days"
	SettingTimezoneOffsetMinutes = "timezone_offset_minutes"
)

func nowUnix() int64 { return time.Now().Unix() }

const Schema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL UNIQUE,
	group_id TEXT,
	user_id TEXT,
	chat_type TEXT NOT NULL,
	message_type TEXT NOT NULL,
	event_time INTEGER NOT NULL,
	content_text TEXT DEFAULT '',
	raw_message TEXT DEFAULT '',
	is_recall INTEGER NOT NULL DEFAULT 0,
	recalled_at INTEGER,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_group_time ON messages(group_id, event_time);
CREATE INDEX IF NOT EXISTS idx_messages_group_user_time ON messages(group_id, user_id, event_time);
CREATE INDEX IF NOT EXISTS idx_messages_group_recall_time ON messages(group_id, is_recall, event_time);
CREATE INDEX IF NOT EXISTS idx_messages_type_time ON messages(message_type, event_time);

CREATE TABLE IF NOT EXISTS group_member_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	event_time INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_file_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	file_id TEXT,
	file_name TEXT,
	file_size INTEGER DEFAULT 0,
	event_time INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS feature_flags (
	name TEXT PRIMARY KEY,
	enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS stat_settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS group_schedules (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id TEXT NOT NULL,
	hour INTEGER NOT NULL,
	minute INTEGER NOT NULL,
	feature TEXT NOT NULL,
	enabled INTEGER NOT NULL DEFAULT 1,
	last_run_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_group_schedules_group_enabled ON group_schedules(group_id, enabled);
`
