package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/store"
)

// Service answers analytical queries over the event log. It holds no state
// beyond the store handle and the live config snapshot.
type Service struct {
	store *store.Store
	cfg   *config.Store
	now   func() int64
}

// New creates a stats Service.
func New(st *store.Store, cfg *config.Store) *Service {
	return &Service{
		store: st,
		cfg:   cfg,
		now:   func() int64 { return time.Now().Unix() },
	}
}

// Heatmap holds 24 hourly buckets and 7 weekday buckets (Mon=0..Sun=6).
type Heatmap struct {
	Hourly []int `json:"hourly"`
	Weekly []int `json:"weekly"`
}

// KeywordCount is a keyword frequency entry.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// MentionCount tallies how often one user was mentioned.
type MentionCount struct {
	TargetUserID string `json:"target_user_id"`
	Count        int    `json:"count"`
}

func (s *Service) resolve(r Range) (int64, int64) {
	return r.Resolve(s.cfg.Snapshot().StatPeriodDays, s.now())
}

func (s *Service) offsetSeconds() int64 {
	return int64(s.cfg.Snapshot().TimezoneOffsetMinutes) * 60
}

// ---------------------------------------------------------------------------
// Counts and rankings
// ---------------------------------------------------------------------------

// GroupTotalMessages counts all log rows for a group in range.
func (s *Service) GroupTotalMessages(groupID string, r Range) (int, error) {
	start, end := s.resolve(r)
	return s.store.CountMessages(groupID, "", true, start, end)
}

// GroupTotalMessagesWithoutRecall counts non-recalled rows only.
func (s *Service) GroupTotalMessagesWithoutRecall(groupID string, r Range) (int, error) {
	start, end := s.resolve(r)
	return s.store.CountMessages(groupID, "", false, start, end)
}

// UserTotalMessages counts one user's rows in range.
func (s *Service) UserTotalMessages(groupID, userID string, r Range) (int, error) {
	start, end := s.resolve(r)
	return s.store.CountMessages(groupID, userID, true, start, end)
}

// UserTotalMessagesWithoutRecall counts one user's non-recalled rows.
func (s *Service) UserTotalMessagesWithoutRecall(groupID, userID string, r Range) (int, error) {
	start, end := s.resolve(r)
	return s.store.CountMessages(groupID, userID, false, start, end)
}

// GroupTopUsers ranks users by message count, descending.
func (s *Service) GroupTopUsers(groupID string, limit int, r Range) ([]store.UserCount, error) {
	start, end := s.resolve(r)
	return s.store.TopUsers(groupID, true, start, end, limitOrDefault(limit, 10))
}

// GroupTopUsersWithoutRecall ranks users excluding recalled messages.
func (s *Service) GroupTopUsersWithoutRecall(groupID string, limit int, r Range) ([]store.UserCount, error) {
	start, end := s.resolve(r)
	return s.store.TopUsers(groupID, false, start, end, limitOrDefault(limit, 10))
}

// ---------------------------------------------------------------------------
// Temporal distributions
// ---------------------------------------------------------------------------

// GroupHeatmap buckets all messages into hour-of-day and weekday histograms.
func (s *Service) GroupHeatmap(groupID string, r Range) (Heatmap, error) {
	return s.buildHeatmap(groupID, true, r)
}

// GroupHeatmapWithoutRecall excludes recalled messages from the histograms.
func (s *Service) GroupHeatmapWithoutRecall(groupID string, r Range) (Heatmap, error) {
	return s.buildHeatmap(groupID, false, r)
}

func (s *Service) buildHeatmap(groupID string, includeRecall bool, r Range) (Heatmap, error) {
	hm := Heatmap{Hourly: make([]int, 24), Weekly: make([]int, 7)}
	start, end := s.resolve(r)
	times, err := s.store.EventTimes(groupID, includeRecall, start, end)
	if err != nil {
		return hm, err
	}
	// The offset is applied arithmetically and the shifted instant read as
	// UTC; no calendar timezone database is involved.
	offset := s.offsetSeconds()
	for _, t := range times {
		shifted := time.Unix(t+offset, 0).UTC()
		hm.Hourly[shifted.Hour()]++
		hm.Weekly[(int(shifted.Weekday())+6)%7]++
	}
	return hm, nil
}

// GroupDailyMessages tallies messages per calendar day in the configured
// timezone, ascending.
func (s *Service) GroupDailyMessages(groupID string, r Range) ([]store.DayCount, error) {
	start, end := s.resolve(r)
	return s.store.DailyCounts(groupID, true, start, end, s.offsetSeconds())
}

// GroupDailyMessagesWithoutRecall excludes recalled messages.
func (s *Service) GroupDailyMessagesWithoutRecall(groupID string, r Range) ([]store.DayCount, error) {
	start, end := s.resolve(r)
	return s.store.DailyCounts(groupID, false, start, end, s.offsetSeconds())
}

// GroupHourlyMessages tallies messages per hour of day, ascending.
func (s *Service) GroupHourlyMessages(groupID string, r Range) ([]store.HourCount, error) {
	start, end := s.resolve(r)
	return s.store.HourlyCounts(groupID, "", true, start, end, s.offsetSeconds())
}

// GroupHourlyMessagesWithoutRecall excludes recalled messages.
func (s *Service) GroupHourlyMessagesWithoutRecall(groupID string, r Range) ([]store.HourCount, error) {
	start, end := s.resolve(r)
	return s.store.HourlyCounts(groupID, "", false, start, end, s.offsetSeconds())
}

// UserHourlyActivity tallies one user's messages per hour of day.
func (s *Service) UserHourlyActivity(groupID, userID string, r Range) ([]store.HourCount, error) {
	start, end := s.resolve(r)
	return s.store.HourlyCounts(groupID, userID, true, start, end, s.offsetSeconds())
}

// UserHourlyActivityWithoutRecall excludes recalled messages.
func (s *Service) UserHourlyActivityWithoutRecall(groupID, userID string, r Range) ([]store.HourCount, error) {
	start, end := s.resolve(r)
	return s.store.HourlyCounts(groupID, userID, false, start, end, s.offsetSeconds())
}

// UserActiveDays counts distinct calendar days a user posted on.
func (s *Service) UserActiveDays(groupID, userID string, r Range) (int, error) {
	start, end := s.resolve(r)
	return s.store.ActiveDayCount(groupID, userID, start, end, s.offsetSeconds())
}

// ---------------------------------------------------------------------------
// Content statistics
// ---------------------------------------------------------------------------

// GroupKeywordStats extracts keyword frequencies from the group's text
// messages. Returns empty when the keyword feature flag is off.
func (s *Service) GroupKeywordStats(groupID string, limit int, r Range) ([]KeywordCount, error) {
	return s.keywordStats(groupID, "", true, limit, r)
}

// GroupKeywordStatsWithoutRecall excludes recalled messages.
func (s *Service) GroupKeywordStatsWithoutRecall(groupID string, limit int, r Range) ([]KeywordCount, error) {
	return s.keywordStats(groupID, "", false, limit, r)
}

// UserKeywordStats extracts keyword frequencies for a single user.
func (s *Service) UserKeywordStats(groupID, userID string, limit int, r Range) ([]KeywordCount, error) {
	return s.keywordStats(groupID, userID, true, limit, r)
}

func (s *Service) keywordStats(groupID, userID string, includeRecall bool, limit int, r Range) ([]KeywordCount, error) {
	cfg := s.cfg.Snapshot()
	if !cfg.Features.Keyword {
		return nil, nil
	}
	if limit <= 0 {
		limit = cfg.Keyword.DefaultLimit
	}
	start, end := s.resolve(r)
	contents, err := s.store.TextContents(groupID, userID, includeRecall, start, end)
	if err != nil {
		return nil, err
	}
	tally := map[string]int{}
	for _, text := range contents {
		for _, word := range Tokenize(text, cfg.Keyword) {
			tally[word]++
		}
	}
	out := make([]KeywordCount, 0, len(tally))
	for word, count := range tally {
		out = append(out, KeywordCount{Keyword: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UserMentionStats tallies @-mentions found in one user's messages,
// descending by count.
func (s *Service) UserMentionStats(groupID, userID string, r Range) ([]MentionCount, error) {
	start, end := s.resolve(r)
	contents, err := s.store.Contents(groupID, userID, start, end)
	if err != nil {
		return nil, err
	}
	tally := map[string]int{}
	for _, text := range contents {
		for _, target := range ExtractMentions(text) {
			tally[target]++
		}
	}
	out := make([]MentionCount, 0, len(tally))
	for target, count := range tally {
		out = append(out, MentionCount{TargetUserID: target, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].TargetUserID < out[j].TargetUserID
	})
	return out, nil
}

// GroupMessageTypes breaks the group's messages down by type.
func (s *Service) GroupMessageTypes(groupID string, r Range) ([]store.TypeCount, error) {
	start, end := s.resolve(r)
	return s.store.MessageTypes(groupID, "", true, start, end)
}

// GroupMessageTypesWithoutRecall excludes recalled messages.
func (s *Service) GroupMessageTypesWithoutRecall(groupID string, r Range) ([]store.TypeCount, error) {
	start, end := s.resolve(r)
	return s.store.MessageTypes(groupID, "", false, start, end)
}

// UserMessageTypes breaks one user's messages down by type.
func (s *Service) UserMessageTypes(groupID, userID string, r Range) ([]store.TypeCount, error) {
	start, end := s.resolve(r)
	return s.store.MessageTypes(groupID, userID, true, start, end)
}

// UserMessageTypesWithoutRecall excludes recalled messages.
func (s *Service) UserMessageTypesWithoutRecall(groupID, userID string, r Range) ([]store.TypeCount, error) {
	start, end := s.resolve(r)
	return s.store.MessageTypes(groupID, userID, false, start, end)
}

// ---------------------------------------------------------------------------
// Activity classification
// ---------------------------------------------------------------------------

// GroupActiveUsers lists users appearing in the top rankings (recall
// excluded) within the last days.
func (s *Service) GroupActiveUsers(groupID string, days int) ([]store.UserCount, error) {
	return s.GroupTopUsersWithoutRecall(groupID, 200, Range{Days: days})
}

// GroupInactiveUsers lists users seen in the prior 30-day window but absent
// in the most recent days-day window.
func (s *Service) GroupInactiveUsers(groupID string, days int) ([]string, error) {
	if days < 1 {
		days = 1
	}
	now := s.now()
	start := now - int64(days)*daySeconds
	return s.store.UsersAbsentFrom(groupID, start-30*daySeconds, start, start, now)
}

// ---------------------------------------------------------------------------
// Maintenance and persisted settings
// ---------------------------------------------------------------------------

// CleanData removes log rows older than days from the message log and both
// side tables. Returns the number of messages removed.
func (s *Service) CleanData(days int) (int64, error) {
	if days < 1 {
		days = 1
	}
	threshold := s.now() - int64(days)*daySeconds
	return s.store.CleanBefore(threshold)
}

// SetStatPeriod updates the default stat period, persisting the mirror so it
// survives independently of the config file.
func (s *Service) SetStatPeriod(days int) error {
	if days < 1 {
		days = 1
	}
	s.cfg.Update(func(c *config.Config) {
		c.StatPeriodDays = days
	})
	return s.store.SetSetting(store.SettingStatPeriodDays, strconv.Itoa(days))
}

// EnableFeature persists a feature flag and mirrors it into the live config.
func (s *Service) EnableFeature(name string) error {
	return s.setFeature(name, true)
}

// DisableFeature persists a feature flag and mirrors it into the live config.
func (s *Service) DisableFeature(name string) error {
	return s.setFeature(name, false)
}

func (s *Service) setFeature(name string, enabled bool) error {
	if err := s.store.SetFeatureFlag(name, enabled); err != nil {
		return err
	}
	s.cfg.Update(func(c *config.Config) {
		switch name {
		case "keyword":
			c.Features.Keyword = enabled
		case "heatmap":
			c.Features.Heatmap = enabled
		case "burst":
			c.Features.Burst = enabled
		case "silent":
			c.Features.Silent = enabled
		case "typeStats":
			c.Features.TypeStats = enabled
		case "userContent":
			c.Features.UserContent = enabled
		}
	})
	return nil
}

// ---------------------------------------------------------------------------
// Schedule passthrough
// ---------------------------------------------------------------------------

// ListGroupSchedules lists a group's report jobs.
func (s *Service) ListGroupSchedules(groupID string) ([]store.GroupSchedule, error) {
	return s.store.ListSchedules(groupID)
}

// UpsertGroupSchedule creates or re-enables a report job.
func (s *Service) UpsertGroupSchedule(groupID string, hour, minute int, feature string) (store.GroupSchedule, error) {
	return s.store.UpsertSchedule(groupID, hour, minute, feature)
}

// RemoveGroupSchedule deletes a report job scoped to its owning group.
func (s *Service) RemoveGroupSchedule(groupID string, id int64) (bool, error) {
	return s.store.RemoveSchedule(groupID, id)
}

func limitOrDefault(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
