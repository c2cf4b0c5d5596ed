// Package store owns all persisted state: the append-only message log, the
// membership and file side tables, the schedule table, and the key-value
// settings mirrors.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite event log. Writes are serialized through a single
// logical writer; reads may proceed concurrently under WAL.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the event log at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open stats db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	// Seed settings mirrors (no-op when already present).
	_, _ = db.Exec(`INSERT OR IGNORE INTO stat_settings(key, value) VALUES (?, '30')`, SettingStatPeriodDays)
	_, _ = db.Exec(`INSERT OR IGNORE INTO stat_settings(key, value) VALUES (?, '480')`, SettingTimezoneOffsetMinutes)

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for shared read access.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	return s.db.Close()
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// ---------------------------------------------------------------------------
// Write path
// ---------------------------------------------------------------------------

// InsertMessage appends a message record. Duplicate message ids are a silent
// no-op; the return value reports whether a row was actually written.
func (s *Store) InsertMessage(rec *MessageRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt == 0 {
		rec.CreatedAt = nowUnix()
	}
	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO messages (message_id, group_id, user_id, chat_type, message_type, event_time, content_text, raw_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MessageID,
		nullIfEmpty(rec.GroupID),
		nullIfEmpty(rec.UserID),
		rec.ChatType,
		rec.MessageType,
		rec.EventTime,
		rec.ContentText,
		rec.RawMessage,
		rec.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkRecalled flags an existing message as recalled. Returns false when no
// row matches the message id; no row is ever created for an unmatched recall.
func (s *Store) MarkRecalled(messageID string, recalledAt int64) (bool, error) {
	if messageID == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE messages SET is_recall=1, recalled_at=? WHERE message_id=?`, recalledAt, messageID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendMemberEvent records a membership change. Pure append, no dedup key.
func (s *Store) AppendMemberEvent(ev *MemberEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO group_member_events (group_id, user_id, event_type, event_time)
		VALUES (?, ?, ?, ?)`,
		ev.GroupID, ev.UserID, ev.EventType, ev.EventTime)
	return err
}

// AppendFileEvent records a group file upload. Pure append, no dedup key.
func (s *Store) AppendFileEvent(ev *FileEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO group_file_events (group_id, user_id, file_id, file_name, file_size, event_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.GroupID, ev.UserID, ev.FileID, ev.FileName, ev.FileSize, ev.EventTime)
	return err
}

// CleanBefore removes rows older than threshold from the message log and both
// side tables. Each table is independently prunable by the same threshold, so
// this is a best-effort batch, not a cross-table transaction. Returns the
// number of messages removed.
func (s *Store) CleanBefore(threshold int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM messages WHERE event_time < ?`, threshold)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()
	if _, err := s.db.Exec(`DELETE FROM group_member_events WHERE event_time < ?`, threshold); err != nil {
		return removed, err
	}
	if _, err := s.db.Exec(`DELETE FROM group_file_events WHERE event_time < ?`, threshold); err != nil {
		return removed, err
	}
	return removed, nil
}

// ---------------------------------------------------------------------------
// Settings, feature flags, counters
// ---------------------------------------------------------------------------

// SetSetting upserts a persisted setting.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO stat_settings(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// GetSetting returns a persisted setting value, if present.
func (s *Store) GetSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM stat_settings WHERE key=?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// GetSettingInt reads a setting as an integer, returning fallback when the
// setting is missing or unparseable.
func (s *Store) GetSettingInt(key string, fallback int) int {
	raw, ok, err := s.GetSetting(key)
	if err != nil || !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// SetFeatureFlag upserts a persisted feature flag mirror.
func (s *Store) SetFeatureFlag(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := 0
	if enabled {
		v = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO feature_flags(name, enabled) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET enabled=excluded.enabled`, name, v)
	return err
}

// FeatureFlags returns all persisted feature flag mirrors.
func (s *Store) FeatureFlags() (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT name, enabled FROM feature_flags`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var name string
		var enabled int
		if err := rows.Scan(&name, &enabled); err != nil {
			return nil, err
		}
		out[name] = enabled != 0
	}
	return out, rows.Err()
}

// BumpCounter increments a named ingest counter (best-effort bookkeeping).
func (s *Store) BumpCounter(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.db.Exec(`
		INSERT INTO counters(name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value=value+1`, name)
}

// Counters returns all persisted counters.
func (s *Store) Counters() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT name, value FROM counters`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

// Summary returns storage-wide totals.
func (s *Store) Summary() (Summary, error) {
	var sum Summary
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT group_id) FROM messages WHERE group_id IS NOT NULL`).Scan(&sum.TotalGroups); err != nil {
		return sum, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM messages`).Scan(&sum.TotalMessages); err != nil {
		return sum, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM messages WHERE is_recall=1`).Scan(&sum.RecalledMessages); err != nil {
		return sum, err
	}
	return sum, nil
}
