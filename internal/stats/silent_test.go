package stats

import (
	"fmt"
	"testing"

	"github.com/ChatPulse/ChatPulse/internal/store"
)

func TestSilentEmptyLog(t *testing.T) {
	svc, _, _ := newTestService(t)

	events, err := svc.GroupSilentEvents("g1")
	if err != nil {
		t.Fatalf("silent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 silence event for an empty log, got %v", events)
	}
	ev := events[0]
	if ev.MessageCount != 0 {
		t.Fatalf("expected count 0, got %d", ev.MessageCount)
	}
	if ev.End != testNow || ev.Start != testNow-24*3600 {
		t.Fatalf("unexpected window [%d,%d]", ev.Start, ev.End)
	}
	if len(ev.ColdUsers) != 0 {
		t.Fatalf("expected no cold users, got %v", ev.ColdUsers)
	}
}

func TestSilentSuppressedWhenActive(t *testing.T) {
	svc, st, _ := newTestService(t)

	// Baseline days with 5 messages each, recent day with 10: the current
	// window clears the quantile threshold, no event.
	for day := 2; day <= 3; day++ {
		for i := 0; i < 5; i++ {
			addMessage(t, st, fmt.Sprintf("b%d-%d", day, i), "g1", "u1", store.MessageTypeText, "",
				testNow-int64(day)*daySeconds+int64(i)*60)
		}
	}
	for i := 0; i < 10; i++ {
		addMessage(t, st, fmt.Sprintf("r%d", i), "g1", "u1", store.MessageTypeText, "",
			testNow-3600+int64(i)*60)
	}

	events, err := svc.GroupSilentEvents("g1")
	if err != nil {
		t.Fatalf("silent: %v", err)
	}
	if events != nil {
		t.Fatalf("expected no silence event for an active group, got %v", events)
	}
}

func TestSilentQuietWindowFlagged(t *testing.T) {
	svc, st, _ := newTestService(t)

	// Historic activity from u1, nothing in the last 24 hours.
	for day := 2; day <= 3; day++ {
		for i := 0; i < 5; i++ {
			addMessage(t, st, fmt.Sprintf("b%d-%d", day, i), "g1", "u1", store.MessageTypeText, "",
				testNow-int64(day)*daySeconds+int64(i)*60)
		}
	}

	events, err := svc.GroupSilentEvents("g1")
	if err != nil {
		t.Fatalf("silent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 silence event, got %v", events)
	}
	ev := events[0]
	if ev.MessageCount != 0 {
		t.Fatalf("expected empty recent window, got %d", ev.MessageCount)
	}
	if len(ev.ColdUsers) != 1 || ev.ColdUsers[0] != "u1" {
		t.Fatalf("expected cold users [u1], got %v", ev.ColdUsers)
	}
}

func TestSilentRecalledMessagesDoNotCount(t *testing.T) {
	svc, st, _ := newTestService(t)

	for day := 2; day <= 3; day++ {
		for i := 0; i < 5; i++ {
			addMessage(t, st, fmt.Sprintf("b%d-%d", day, i), "g1", "u1", store.MessageTypeText, "",
				testNow-int64(day)*daySeconds+int64(i)*60)
		}
	}
	addMessage(t, st, "ghost", "g1", "u2", store.MessageTypeText, "", testNow-3600)
	recallMessage(t, st, "ghost")

	events, err := svc.GroupSilentEvents("g1")
	if err != nil {
		t.Fatalf("silent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected recalled-only window to stay silent, got %v", events)
	}
	if events[0].MessageCount != 0 {
		t.Fatalf("expected count 0 with only a recalled message, got %d", events[0].MessageCount)
	}
}

func TestNearestRank(t *testing.T) {
	cases := []struct {
		values []int
		q      float64
		want   int
	}{
		{nil, 0.2, 0},
		{[]int{7}, 0.2, 7},
		{[]int{5, 1, 9}, 0.0, 1},
		{[]int{5, 1, 9}, 0.5, 5},
		{[]int{5, 1, 9}, 1.0, 9},
		{[]int{1, 2, 3, 4, 5}, 0.2, 1},
		{[]int{1, 2, 3, 4, 5}, 0.25, 2},
	}
	for _, tc := range cases {
		if got := nearestRank(tc.values, tc.q); got != tc.want {
			t.Errorf("nearestRank(%v, %v): expected %d, got %d", tc.values, tc.q, tc.want, got)
		}
	}
}
