package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "stats.db")
	st, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertMessage(t *testing.T, st *Store, messageID, groupID, userID string, eventTime int64) {
	t.Helper()
	inserted, err := st.InsertMessage(&MessageRecord{
		MessageID:   messageID,
		GroupID:     groupID,
		UserID:      userID,
		ChatType:    ChatTypeGroup,
		MessageType: MessageTypeText,
		EventTime:   eventTime,
	})
	if err != nil {
		t.Fatalf("insert message %s: %v", messageID, err)
	}
	if !inserted {
		t.Fatalf("expected message %s to be inserted", messageID)
	}
}

func TestInsertMessageIdempotent(t *testing.T) {
	st := newTestStore(t)

	rec := &MessageRecord{
		MessageID:   "m1",
		GroupID:     "g1",
		UserID:      "u1",
		ChatType:    ChatTypeGroup,
		MessageType: MessageTypeText,
		EventTime:   1000,
	}
	inserted, err := st.InsertMessage(rec)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Fatalf("expected first insert to write a row")
	}

	inserted, err = st.InsertMessage(rec)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatalf("expected duplicate insert to be a no-op")
	}

	n, err := st.CountMessages("g1", "", true, 0, 2000)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 message, got %d", n)
	}
}

func TestMarkRecalled(t *testing.T) {
	st := newTestStore(t)
	insertMessage(t, st, "m1", "g1", "u1", 1000)
	insertMessage(t, st, "m2", "g1", "u1", 1001)

	matched, err := st.MarkRecalled("m1", 1500)
	if err != nil {
		t.Fatalf("mark recalled: %v", err)
	}
	if !matched {
		t.Fatalf("expected recall to match m1")
	}

	matched, err = st.MarkRecalled("missing", 1500)
	if err != nil {
		t.Fatalf("mark recalled missing: %v", err)
	}
	if matched {
		t.Fatalf("expected recall of unknown id to match nothing")
	}

	total, err := st.CountMessages("g1", "", true, 0, 2000)
	if err != nil {
		t.Fatalf("count all: %v", err)
	}
	live, err := st.CountMessages("g1", "", false, 0, 2000)
	if err != nil {
		t.Fatalf("count live: %v", err)
	}
	if total != 2 || live != 1 {
		t.Fatalf("expected total=2 live=1, got total=%d live=%d", total, live)
	}
}

func TestCleanBefore(t *testing.T) {
	st := newTestStore(t)
	insertMessage(t, st, "old1", "g1", "u1", 100)
	insertMessage(t, st, "old2", "g1", "u2", 200)
	insertMessage(t, st, "new1", "g1", "u1", 5000)

	if err := st.AppendMemberEvent(&MemberEvent{GroupID: "g1", UserID: "u1", EventType: "join", EventTime: 100}); err != nil {
		t.Fatalf("append member event: %v", err)
	}
	if err := st.AppendFileEvent(&FileEvent{GroupID: "g1", UserID: "u1", FileID: "f1", FileName: "a.txt", EventTime: 100}); err != nil {
		t.Fatalf("append file event: %v", err)
	}

	removed, err := st.CleanBefore(1000)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 messages removed, got %d", removed)
	}

	n, err := st.CountMessages("g1", "", true, 0, 10000)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 surviving message, got %d", n)
	}

	var members, files int
	if err := st.DB().QueryRow(`SELECT COUNT(1) FROM group_member_events`).Scan(&members); err != nil {
		t.Fatalf("count member events: %v", err)
	}
	if err := st.DB().QueryRow(`SELECT COUNT(1) FROM group_file_events`).Scan(&files); err != nil {
		t.Fatalf("count file events: %v", err)
	}
	if members != 0 || files != 0 {
		t.Fatalf("expected side tables pruned, got members=%d files=%d", members, files)
	}
}

func TestSettingsSeededAndUpdatable(t *testing.T) {
	st := newTestStore(t)

	if got := st.GetSettingInt(SettingStatPeriodDays, 0); got != 30 {
		t.Fatalf("expected seeded stat period 30, got %d", got)
	}
	if got := st.GetSettingInt(SettingTimezoneOffsetMinutes, 0); got != 480 {
		t.Fatalf("expected seeded timezone offset 480, got %d", got)
	}

	if err := st.SetSetting(SettingStatPeriodDays, "14"); err != nil {
		t.Fatalf("set setting: %v", err)
	}
	if got := st.GetSettingInt(SettingStatPeriodDays, 0); got != 14 {
		t.Fatalf("expected updated stat period 14, got %d", got)
	}

	if got := st.GetSettingInt("missing", 7); got != 7 {
		t.Fatalf("expected fallback 7 for missing setting, got %d", got)
	}
}

func TestFeatureFlagsAndCounters(t *testing.T) {
	st := newTestStore(t)

	if err := st.SetFeatureFlag("keyword", false); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := st.SetFeatureFlag("burst", true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	flags, err := st.FeatureFlags()
	if err != nil {
		t.Fatalf("read flags: %v", err)
	}
	if flags["keyword"] || !flags["burst"] {
		t.Fatalf("unexpected flags: %v", flags)
	}

	st.BumpCounter(CounterCollected)
	st.BumpCounter(CounterCollected)
	st.BumpCounter(CounterRecalled)
	counters, err := st.Counters()
	if err != nil {
		t.Fatalf("read counters: %v", err)
	}
	if counters[CounterCollected] != 2 || counters[CounterRecalled] != 1 {
		t.Fatalf("unexpected counters: %v", counters)
	}
}

func TestSummary(t *testing.T) {
	st := newTestStore(t)
	insertMessage(t, st, "m1", "g1", "u1", 100)
	insertMessage(t, st, "m2", "g2", "u1", 200)
	insertMessage(t, st, "m3", "g2", "u2", 300)
	if _, err := st.MarkRecalled("m3", 400); err != nil {
		t.Fatalf("recall: %v", err)
	}

	sum, err := st.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalGroups != 2 || sum.TotalMessages != 3 || sum.RecalledMessages != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
