package stats

import (
	"fmt"
	"testing"

	"github.com/ChatPulse/ChatPulse/internal/store"
)

func TestBurstDetectsSpikeWindow(t *testing.T) {
	svc, st, _ := newTestService(t)

	// 25 messages inside one 5-minute bucket. With a single bucket the mean
	// equals the count and variance is zero, so the threshold is
	// max(minMessages, 25) = 25 and the bucket qualifies.
	base := (testNow/300)*300 - 600
	for i := 0; i < 25; i++ {
		addMessage(t, st, fmt.Sprintf("m%d", i), "g1", "u1", store.MessageTypeText, "", base+int64(i))
	}

	events, err := svc.GroupBurstEvents("g1", Range{})
	if err != nil {
		t.Fatalf("burst: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 burst event, got %v", events)
	}
	ev := events[0]
	if ev.WindowStart != base {
		t.Fatalf("expected window start %d, got %d", base, ev.WindowStart)
	}
	if ev.Count != 25 {
		t.Fatalf("expected count 25, got %d", ev.Count)
	}
	if len(ev.Participants) != 1 || ev.Participants[0] != "u1" {
		t.Fatalf("expected participants [u1], got %v", ev.Participants)
	}
}

func TestBurstBelowAdaptiveThreshold(t *testing.T) {
	svc, st, _ := newTestService(t)

	// Bucket counts 2,3,2,3,50: mean 12, stddev ~19, so the adaptive
	// threshold (~69) exceeds the outlier and nothing is flagged even
	// though 50 clears the static floor.
	counts := []int{2, 3, 2, 3, 50}
	base := (testNow/300)*300 - 300*int64(len(counts))
	msg := 0
	for w, n := range counts {
		for i := 0; i < n; i++ {
			addMessage(t, st, fmt.Sprintf("m%d", msg), "g1", "u1", store.MessageTypeText, "",
				base+300*int64(w)+int64(i))
			msg++
		}
	}

	events, err := svc.GroupBurstEvents("g1", Range{})
	if err != nil {
		t.Fatalf("burst: %v", err)
	}
	if events != nil {
		t.Fatalf("expected no burst events, got %v", events)
	}
}

func TestBurstParticipantsIncludeRecalled(t *testing.T) {
	svc, st, _ := newTestService(t)

	base := (testNow/300)*300 - 600
	for i := 0; i < 25; i++ {
		addMessage(t, st, fmt.Sprintf("m%d", i), "g1", "u1", store.MessageTypeText, "", base+int64(i))
	}
	addMessage(t, st, "gone", "g1", "u2", store.MessageTypeText, "", base+30)
	recallMessage(t, st, "gone")

	events, err := svc.GroupBurstEvents("g1", Range{})
	if err != nil {
		t.Fatalf("burst: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 burst event, got %v", events)
	}
	ev := events[0]
	if ev.Count != 25 {
		t.Fatalf("expected recalled message excluded from count, got %d", ev.Count)
	}
	seen := map[string]bool{}
	for _, u := range ev.Participants {
		seen[u] = true
	}
	if !seen["u1"] || !seen["u2"] {
		t.Fatalf("expected recalled author u2 among participants, got %v", ev.Participants)
	}
}

func TestBurstEmptyLog(t *testing.T) {
	svc, _, _ := newTestService(t)

	events, err := svc.GroupBurstEvents("g1", Range{})
	if err != nil {
		t.Fatalf("burst: %v", err)
	}
	if events != nil {
		t.Fatalf("expected nil for empty log, got %v", events)
	}
}
