package stats

import "math"

// BurstEvent is one detected activity spike.
type BurstEvent struct {
	WindowStart  int64    `json:"window_start"`
	Count        int      `json:"count"`
	Participants []string `json:"participants"`
}

// GroupBurstEvents detects short-window activity spikes. Non-recalled
// messages in range are partitioned into epoch-aligned buckets of
// windowMinutes; a bucket is a burst when its count reaches
// max(minMessages, mean + sigma*stddev), with mean and population variance
// computed over the whole queried range. Using the range's own statistics
// keeps the detector parameter-free across activity levels; minMessages
// floors the threshold so near-zero-variance quiet groups don't false
// positive.
func (s *Service) GroupBurstEvents(groupID string, r Range) ([]BurstEvent, error) {
	cfg := s.cfg.Snapshot().Burst
	windowSec := int64(cfg.WindowMinutes) * 60
	start, end := s.resolve(r)

	buckets, err := s.store.BurstBuckets(groupID, start, end, windowSec)
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, nil
	}

	var sum float64
	for _, b := range buckets {
		sum += float64(b.Count)
	}
	mean := sum / float64(len(buckets))
	var variance float64
	for _, b := range buckets {
		d := float64(b.Count) - mean
		variance += d * d
	}
	variance /= float64(len(buckets))

	threshold := math.Max(float64(cfg.MinMessages), mean+cfg.Sigma*math.Sqrt(variance))

	var events []BurstEvent
	for _, b := range buckets {
		if float64(b.Count) < threshold {
			continue
		}
		// Participant lookup is deliberately recall-inclusive: a recalled
		// message still evidences presence in the window.
		users, err := s.store.DistinctUsers(groupID, b.Start, b.Start+windowSec-1)
		if err != nil {
			return nil, err
		}
		events = append(events, BurstEvent{
			WindowStart:  b.Start,
			Count:        b.Count,
			Participants: users,
		})
	}
	return events, nil
}
