package store

// UserCount is a per-user message tally.
type UserCount struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// TypeCount is a per-message-type tally.
type TypeCount struct {
	MessageType string `json:"message_type"`
	Count       int    `json:"count"`
}

// DayCount is a per-calendar-day tally.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// HourCount is a per-hour-of-day tally.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Bucket is a fixed-width time window with its message count.
type Bucket struct {
	Start int64 `json:"window_start"`
	Count int   `json:"count"`
}

func recallFilter(includeRecall bool) string {
	if includeRecall {
		return ""
	}
	return " AND is_recall = 0"
}

// CountMessages counts log rows for a group in [start,end]. An empty userID
// counts the whole group; otherwise only that user's rows.
func (s *Store) CountMessages(groupID, userID string, includeRecall bool, start, end int64) (int, error) {
	query := `SELECT COUNT(1) FROM messages WHERE group_id = ? AND event_time BETWEEN ? AND ?`
	args := []any{groupID, start, end}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += recallFilter(includeRecall)

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TopUsers ranks users by message count, descending, limited to limit.
func (s *Store) TopUsers(groupID string, includeRecall bool, start, end int64, limit int) ([]UserCount, error) {
	rows, err := s.db.Query(`
		SELECT COALESCE(user_id, ''), COUNT(1) AS count
		FROM messages
		WHERE group_id = ? AND event_time BETWEEN ? AND ?`+recallFilter(includeRecall)+`
		GROUP BY user_id
		ORDER BY count DESC
		LIMIT ?`, groupID, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserCount
	for rows.Next() {
		var uc UserCount
		if err := rows.Scan(&uc.UserID, &uc.Count); err != nil {
			return nil, err
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

// EventTimes returns the raw event timestamps in range, for bucketing in Go.
func (s *Store) EventTimes(groupID string, includeRecall bool, start, end int64) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT event_time FROM messages
		WHERE group_id = ? AND event_time BETWEEN ? AND ?`+recallFilter(includeRecall),
		groupID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var t int64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MessageTypes tallies rows per message type, descending.
func (s *Store) MessageTypes(groupID, userID string, includeRecall bool, start, end int64) ([]TypeCount, error) {
	query := `SELECT message_type, COUNT(1) AS count FROM messages WHERE group_id = ? AND event_time BETWEEN ? AND ?`
	args := []any{groupID, start, end}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += recallFilter(includeRecall) + ` GROUP BY message_type ORDER BY count DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.MessageType, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// TextContents returns content_text of text-type messages in range, for
// keyword extraction.
func (s *Store) TextContents(groupID, userID string, includeRecall bool, start, end int64) ([]string, error) {
	query := `SELECT content_text FROM messages WHERE group_id = ? AND event_time BETWEEN ? AND ?`
	args := []any{groupID, start, end}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += recallFilter(includeRecall) + ` AND message_type = 'text'`

	return s.stringColumn(query, args...)
}

// Contents returns content_text of every message in range regardless of type
// or recall state, for mention scanning.
func (s *Store) Contents(groupID, userID string, start, end int64) ([]string, error) {
	query := `SELECT content_text FROM messages WHERE group_id = ? AND event_time BETWEEN ? AND ?`
	args := []any{groupID, start, end}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	return s.stringColumn(query, args...)
}

// DailyCounts tallies rows per calendar day after shifting event times by
// offsetSec. Days come back ascending as YYYY-MM-DD.
func (s *Store) DailyCounts(groupID string, includeRecall bool, start, end, offsetSec int64) ([]DayCount, error) {
	rows, err := s.db.Query(`
		SELECT strftime('%Y-%m-%d', datetime(event_time + ?, 'unixepoch')) AS day, COUNT(1) AS count
		FROM messages
		WHERE group_id = ? AND event_time BETWEEN ? AND ?`+recallFilter(includeRecall)+`
		GROUP BY day
		ORDER BY day ASC`, offsetSec, groupID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// HourlyCounts tallies rows per hour-of-day after shifting event times by
// offsetSec. An empty userID covers the whole group.
func (s *Store) HourlyCounts(groupID, userID string, includeRecall bool, start, end, offsetSec int64) ([]HourCount, error) {
	query := `
		SELECT CAST(strftime('%H', datetime(event_time + ?, 'unixepoch')) AS INTEGER) AS hour, COUNT(1) AS count
		FROM messages
		WHERE group_id = ? AND event_time BETWEEN ? AND ?`
	args := []any{offsetSec, groupID, start, end}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += recallFilter(includeRecall) + ` GROUP BY hour ORDER BY hour ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HourCount
	for rows.Next() {
		var hc HourCount
		if err := rows.Scan(&hc.Hour, &hc.Count); err != nil {
			return nil, err
		}
		out = append(out, hc)
	}
	return out, rows.Err()
}

// ActiveDayCount counts distinct calendar days a user posted on, after
// shifting event times by offsetSec.
func (s *Store) ActiveDayCount(groupID, userID string, start, end, offsetSec int64) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT strftime('%Y-%m-%d', datetime(event_time + ?, 'unixepoch')))
		FROM messages
		WHERE group_id = ? AND user_id = ? AND event_time BETWEEN ? AND ?`,
		offsetSec, groupID, userID, start, end).Scan(&n)
	return n, err
}

// BurstBuckets partitions non-recalled messages into epoch-aligned buckets of
// windowSec seconds and counts each bucket.
func (s *Store) BurstBuckets(groupID string, start, end, windowSec int64) ([]Bucket, error) {
	rows, err := s.db.Query(`
		SELECT (event_time / ?) * ? AS bucket, COUNT(1) AS count
		FROM messages
		WHERE group_id = ? AND event_time BETWEEN ? AND ? AND is_recall = 0
		GROUP BY bucket`, windowSec, windowSec, groupID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Start, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DistinctUsers returns the distinct user ids posting in [start,end],
// recall-inclusive.
func (s *Store) DistinctUsers(groupID string, start, end int64) ([]string, error) {
	return s.stringColumn(`
		SELECT DISTINCT COALESCE(user_id, '') FROM messages
		WHERE group_id = ? AND event_time BETWEEN ? AND ?`, groupID, start, end)
}

// UsersAbsentFrom returns users active in [activeStart,activeEnd] but with no
// messages in [absentStart,absentEnd].
func (s *Store) UsersAbsentFrom(groupID string, activeStart, activeEnd, absentStart, absentEnd int64) ([]string, error) {
	return s.stringColumn(`
		SELECT DISTINCT COALESCE(user_id, '') FROM messages
		WHERE group_id = ?
		  AND event_time BETWEEN ? AND ?
		  AND user_id NOT IN (
			SELECT DISTINCT user_id FROM messages
			WHERE group_id = ? AND event_time BETWEEN ? AND ?
		  )`, groupID, activeStart, activeEnd, groupID, absentStart, absentEnd)
}

// BaselineSlotCounts counts non-recalled messages per trailing slot of
// slotSec seconds, counting back from now over [baselineStart,now]. Only
// slots with at least one message produce a sample.
func (s *Store) BaselineSlotCounts(groupID string, baselineStart, now, slotSec int64) ([]int, error) {
	rows, err := s.db.Query(`
		SELECT COUNT(1) AS count
		FROM messages
		WHERE group_id = ?
		  AND event_time BETWEEN ? AND ?
		  AND is_recall = 0
		GROUP BY ((? - event_time) / ?)`, groupID, baselineStart, now, now, slotSec)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
