package command

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/stats"
	"github.com/ChatPulse/ChatPulse/internal/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return NewHandler(stats.New(st, config.NewStore(config.Default())))
}

func TestHandleEmptyShowsHelp(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "")
	if !strings.Contains(reply, "#stats clean 7d") {
		t.Fatalf("expected help text, got %q", reply)
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "frobnicate")
	if !strings.Contains(reply, "unknown command") {
		t.Fatalf("expected unknown command reply, got %q", reply)
	}
}

func TestHandleClean(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "clean 7d")
	if reply != "removed 0 messages older than 7 days" {
		t.Fatalf("unexpected clean reply: %q", reply)
	}

	for _, bad := range []string{"clean 7", "clean d", "clean 0d", "clean -3d"} {
		reply := h.Handle("g1", bad)
		if !strings.Contains(reply, "bad argument") {
			t.Fatalf("expected bad argument for %q, got %q", bad, reply)
		}
	}
}

func TestHandleScheduleLifecycle(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "schedule list")
	if reply != "no schedules for this group" {
		t.Fatalf("expected empty list reply, got %q", reply)
	}

	reply = h.Handle("g1", "9 30 group_total")
	if reply != "schedule set: #1 09:30 group_total" {
		t.Fatalf("unexpected set reply: %q", reply)
	}

	reply = h.Handle("g1", "schedule list")
	if reply != "#1 09:30 group_total" {
		t.Fatalf("unexpected list reply: %q", reply)
	}

	reply = h.Handle("g1", "schedule remove 99")
	if reply != "job 99 not found" {
		t.Fatalf("unexpected remove-missing reply: %q", reply)
	}

	reply = h.Handle("g1", "schedule remove 1")
	if reply != "job 1 removed" {
		t.Fatalf("unexpected remove reply: %q", reply)
	}
}

func TestHandleScheduleTimeValidation(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "25 30 group_total")
	if !strings.Contains(reply, "time out of range") {
		t.Fatalf("expected range error for hour 25, got %q", reply)
	}
	reply = h.Handle("g1", "9 61 group_total")
	if !strings.Contains(reply, "time out of range") {
		t.Fatalf("expected range error for minute 61, got %q", reply)
	}
	// Three-digit tokens are not clock fields at all.
	reply = h.Handle("g1", "123 30 group_total")
	if !strings.Contains(reply, "unknown command") {
		t.Fatalf("expected unknown command for 123, got %q", reply)
	}
}

func TestHandleRunFeature(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "run group_total")
	if reply != "group total messages: 0" {
		t.Fatalf("unexpected run reply: %q", reply)
	}

	reply = h.Handle("g1", "run nope")
	if !strings.Contains(reply, "unsupported feature") {
		t.Fatalf("expected unsupported feature reply, got %q", reply)
	}
}

func TestHandleScheduleRemoveBadID(t *testing.T) {
	h := newTestHandler(t)

	reply := h.Handle("g1", "schedule remove abc")
	if !strings.Contains(reply, "bad job id") {
		t.Fatalf("expected bad job id reply, got %q", reply)
	}
}
