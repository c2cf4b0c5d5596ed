package stats

import "sort"

// SilenceEvent is one detected inactivity window.
type SilenceEvent struct {
	Start        int64    `json:"start"`
	End          int64    `json:"end"`
	MessageCount int      `json:"message_count"`
	ColdUsers    []string `json:"cold_users"`
}

// GroupSilentEvents checks whether the group has gone anomalously quiet. It
// is always evaluated against now: the non-recalled count of the most recent
// recentHours is compared to a nearest-rank quantile of per-slot counts over
// the preceding baselineDays. An empty baseline yields threshold 0, so any
// nonzero current activity suppresses the event.
func (s *Service) GroupSilentEvents(groupID string) ([]SilenceEvent, error) {
	cfg := s.cfg.Snapshot().Silent
	now := s.now()
	slotSec := int64(cfg.RecentHours) * 3600
	recentStart := now - slotSec
	baselineStart := now - int64(cfg.BaselineDays)*daySeconds

	currentCount, err := s.store.CountMessages(groupID, "", false, recentStart, now)
	if err != nil {
		return nil, err
	}
	samples, err := s.store.BaselineSlotCounts(groupID, baselineStart, now, slotSec)
	if err != nil {
		return nil, err
	}

	if currentCount > nearestRank(samples, cfg.Quantile) {
		return nil, nil
	}

	coldUsers, err := s.store.UsersAbsentFrom(groupID, now-30*daySeconds, now, recentStart, now)
	if err != nil {
		return nil, err
	}
	return []SilenceEvent{{
		Start:        recentStart,
		End:          now,
		MessageCount: currentCount,
		ColdUsers:    coldUsers,
	}}, nil
}

// nearestRank returns sorted[floor((n-1)*q)], the non-interpolated order
// statistic; 0 for an empty sample.
func nearestRank(values []int, q float64) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	idx := int(float64(len(sorted)-1) * q)
	return sorted[idx]
}
