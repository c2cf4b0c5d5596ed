package stats

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/store"
)

const testNow = int64(1_700_000_000)

func newTestService(t *testing.T) (*Service, *store.Store, *config.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	cfg := config.NewStore(config.Default())
	svc := New(st, cfg)
	svc.now = func() int64 { return testNow }
	return svc, st, cfg
}

func addMessage(t *testing.T, st *store.Store, messageID, groupID, userID, msgType, content string, eventTime int64) {
	t.Helper()
	_, err := st.InsertMessage(&store.MessageRecord{
		MessageID:   messageID,
		GroupID:     groupID,
		UserID:      userID,
		ChatType:    store.ChatTypeGroup,
		MessageType: msgType,
		ContentText: content,
		EventTime:   eventTime,
	})
	if err != nil {
		t.Fatalf("insert %s: %v", messageID, err)
	}
}

func recallMessage(t *testing.T, st *store.Store, messageID string) {
	t.Helper()
	matched, err := st.MarkRecalled(messageID, testNow)
	if err != nil || !matched {
		t.Fatalf("recall %s: matched=%v err=%v", messageID, matched, err)
	}
}

func TestTotalsWithAndWithoutRecall(t *testing.T) {
	svc, st, _ := newTestService(t)
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "a", testNow-100)
	addMessage(t, st, "m2", "g1", "u1", store.MessageTypeText, "b", testNow-90)
	addMessage(t, st, "m3", "g1", "u2", store.MessageTypeText, "c", testNow-80)
	recallMessage(t, st, "m2")

	total, err := svc.GroupTotalMessages("g1", Range{})
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	live, err := svc.GroupTotalMessagesWithoutRecall("g1", Range{})
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if total != 3 || live != 2 {
		t.Fatalf("expected total=3 live=2, got total=%d live=%d", total, live)
	}
	if live > total {
		t.Fatalf("recall-excluded count exceeds inclusive count")
	}

	userTotal, err := svc.UserTotalMessages("g1", "u1", Range{})
	if err != nil {
		t.Fatalf("user total: %v", err)
	}
	userLive, err := svc.UserTotalMessagesWithoutRecall("g1", "u1", Range{})
	if err != nil {
		t.Fatalf("user live: %v", err)
	}
	if userTotal != 2 || userLive != 1 {
		t.Fatalf("expected user total=2 live=1, got %d/%d", userTotal, userLive)
	}
}

func TestRangeLimitsQueries(t *testing.T) {
	svc, st, _ := newTestService(t)
	addMessage(t, st, "recent", "g1", "u1", store.MessageTypeText, "", testNow-100)
	addMessage(t, st, "ancient", "g1", "u1", store.MessageTypeText, "", testNow-40*daySeconds)

	n, err := svc.GroupTotalMessages("g1", Range{})
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected default 30-day window to exclude old message, got %d", n)
	}

	n, err = svc.GroupTotalMessages("g1", Range{Days: 60})
	if err != nil {
		t.Fatalf("total 60d: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 60-day window to include both, got %d", n)
	}
}

func TestGroupHeatmap(t *testing.T) {
	svc, st, _ := newTestService(t)

	// Monday 2024-01-01 00:30 UTC shifts to 08:30 at +480 minutes.
	monday := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC).Unix()
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "", monday)
	svc.now = func() int64 { return monday + 3600 }

	hm, err := svc.GroupHeatmap("g1", Range{})
	if err != nil {
		t.Fatalf("heatmap: %v", err)
	}
	if len(hm.Hourly) != 24 || len(hm.Weekly) != 7 {
		t.Fatalf("expected 24/7 buckets, got %d/%d", len(hm.Hourly), len(hm.Weekly))
	}
	if hm.Hourly[8] != 1 {
		t.Fatalf("expected hour bucket 8 to hold the message, got %v", hm.Hourly)
	}
	if hm.Weekly[0] != 1 {
		t.Fatalf("expected Monday bucket to hold the message, got %v", hm.Weekly)
	}
}

func TestKeywordStats(t *testing.T) {
	svc, st, _ := newTestService(t)
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "golang rocks", testNow-100)
	addMessage(t, st, "m2", "g1", "u2", store.MessageTypeText, "golang forever", testNow-90)

	counts, err := svc.GroupKeywordStats("g1", 0, Range{})
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("expected 3 keywords, got %v", counts)
	}
	if counts[0].Keyword != "golang" || counts[0].Count != 2 {
		t.Fatalf("expected golang first with 2, got %+v", counts[0])
	}
	// Ties break alphabetically.
	if counts[1].Keyword != "forever" || counts[2].Keyword != "rocks" {
		t.Fatalf("expected alphabetical tie break, got %+v", counts[1:])
	}

	counts, err = svc.GroupKeywordStats("g1", 1, Range{})
	if err != nil {
		t.Fatalf("keywords limit: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("expected limit 1 respected, got %d", len(counts))
	}
}

func TestKeywordStatsFeatureDisabled(t *testing.T) {
	svc, st, cfg := newTestService(t)
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "golang", testNow-100)
	cfg.Update(func(c *config.Config) { c.Features.Keyword = false })

	counts, err := svc.GroupKeywordStats("g1", 0, Range{})
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	if counts != nil {
		t.Fatalf("expected nil with feature disabled, got %v", counts)
	}
}

func TestUserMentionStats(t *testing.T) {
	svc, st, _ := newTestService(t)
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "hi @11111 and @22222", testNow-100)
	addMessage(t, st, "m2", "g1", "u1", store.MessageTypeText, "again @11111", testNow-90)
	addMessage(t, st, "m3", "g1", "u2", store.MessageTypeText, "@33333", testNow-80)

	mentions, err := svc.UserMentionStats("g1", "u1", Range{})
	if err != nil {
		t.Fatalf("mentions: %v", err)
	}
	if len(mentions) != 2 {
		t.Fatalf("expected 2 targets for u1, got %v", mentions)
	}
	if mentions[0].TargetUserID != "11111" || mentions[0].Count != 2 {
		t.Fatalf("expected 11111 first with 2, got %+v", mentions[0])
	}
}

func TestMessageTypeBreakdown(t *testing.T) {
	svc, st, _ := newTestService(t)
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "", testNow-100)
	addMessage(t, st, "m2", "g1", "u1", store.MessageTypeText, "", testNow-90)
	addMessage(t, st, "m3", "g1", "u1", store.MessageTypeImage, "", testNow-80)

	types, err := svc.GroupMessageTypes("g1", Range{})
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %v", types)
	}
	if types[0].MessageType != store.MessageTypeText || types[0].Count != 2 {
		t.Fatalf("expected text first with 2, got %+v", types[0])
	}
}

func TestUserActiveDays(t *testing.T) {
	svc, st, _ := newTestService(t)
	day := int64(daySeconds)
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "", testNow-2*day)
	addMessage(t, st, "m2", "g1", "u1", store.MessageTypeText, "", testNow-2*day+60)
	addMessage(t, st, "m3", "g1", "u1", store.MessageTypeText, "", testNow-100)

	days, err := svc.UserActiveDays("g1", "u1", Range{})
	if err != nil {
		t.Fatalf("active days: %v", err)
	}
	if days != 2 {
		t.Fatalf("expected 2 distinct active days, got %d", days)
	}
}

func TestGroupInactiveUsers(t *testing.T) {
	svc, st, _ := newTestService(t)
	// u1 posted 10 days ago and stayed quiet; u2 posted yesterday.
	addMessage(t, st, "m1", "g1", "u1", store.MessageTypeText, "", testNow-10*daySeconds)
	addMessage(t, st, "m2", "g1", "u2", store.MessageTypeText, "", testNow-10*daySeconds)
	addMessage(t, st, "m3", "g1", "u2", store.MessageTypeText, "", testNow-daySeconds/2)

	inactive, err := svc.GroupInactiveUsers("g1", 7)
	if err != nil {
		t.Fatalf("inactive: %v", err)
	}
	if len(inactive) != 1 || inactive[0] != "u1" {
		t.Fatalf("expected [u1], got %v", inactive)
	}
}

func TestCleanData(t *testing.T) {
	svc, st, _ := newTestService(t)
	addMessage(t, st, "old", "g1", "u1", store.MessageTypeText, "", testNow-10*daySeconds)
	addMessage(t, st, "new", "g1", "u1", store.MessageTypeText, "", testNow-100)

	removed, err := svc.CleanData(7)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 message removed, got %d", removed)
	}
}

func TestSetStatPeriodPersists(t *testing.T) {
	svc, st, cfg := newTestService(t)

	if err := svc.SetStatPeriod(14); err != nil {
		t.Fatalf("set period: %v", err)
	}
	if got := cfg.Snapshot().StatPeriodDays; got != 14 {
		t.Fatalf("expected live config period 14, got %d", got)
	}
	if got := st.GetSettingInt(store.SettingStatPeriodDays, 0); got != 14 {
		t.Fatalf("expected persisted period 14, got %d", got)
	}
}

func TestEnableDisableFeature(t *testing.T) {
	svc, st, cfg := newTestService(t)

	if err := svc.DisableFeature("burst"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if cfg.Snapshot().Features.Burst {
		t.Fatalf("expected burst disabled in live config")
	}
	flags, err := st.FeatureFlags()
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if flags["burst"] {
		t.Fatalf("expected burst disabled in persisted mirror")
	}

	if err := svc.EnableFeature("burst"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !cfg.Snapshot().Features.Burst {
		t.Fatalf("expected burst re-enabled")
	}
}
