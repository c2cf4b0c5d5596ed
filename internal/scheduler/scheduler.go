// Package scheduler fires stored per-group report jobs once their
// (hour, minute) comes due in the configured timezone.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ChatPulse/ChatPulse/internal/channels"
	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/stats"
	"github.com/ChatPulse/ChatPulse/internal/store"
)

// Scheduler scans the schedule store on a fixed interval and delivers due
// reports. Ticks never overlap: the loop runs each tick to completion before
// selecting again, which bounds delivery load and keeps last_run_at ordering
// deterministic.
type Scheduler struct {
	cfg     *config.Store
	store   *store.Store
	stats   *stats.Service
	deliver channels.Deliverer
}

// New creates a Scheduler.
func New(cfg *config.Store, st *store.Store, sv *stats.Service, deliver channels.Deliverer) *Scheduler {
	return &Scheduler{cfg: cfg, store: st, stats: sv, deliver: deliver}
}

// Run starts the tick loop. Blocks until the context is cancelled; stopping
// cancels the pending timer but does not wait for in-flight deliveries.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.scanInterval()
	slog.Info("Scheduler started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return ctx.Err()
		case t := <-ticker.C:
			s.tick(ctx, t)
			// Interval follows live config changes on the next tick.
			if next := s.scanInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func (s *Scheduler) scanInterval() time.Duration {
	secs := s.cfg.Snapshot().Scheduler.ScanIntervalSeconds
	if secs < 10 {
		secs = 10
	}
	return time.Duration(secs) * time.Second
}

// tick fires all jobs due at now. Exposed to tests so a synthetic clock can
// drive the scheduler without real timers.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	cfg := s.cfg.Snapshot()
	if !cfg.Scheduler.Enabled {
		return
	}

	// Shift by the arithmetic offset and read the instant as UTC.
	offset := time.Duration(cfg.TimezoneOffsetMinutes) * time.Minute
	local := now.UTC().Add(offset)
	jobs, err := s.store.DueSchedules(local.Hour(), local.Minute())
	if err != nil {
		slog.Error("Scheduler: due-job query failed", "error", err)
		return
	}

	for _, job := range jobs {
		if !cfg.GroupEnabled(job.GroupID) {
			continue
		}
		s.fire(ctx, cfg, job)
	}
}

// fire renders and delivers one due job, retrying once on failure when
// configured. last_run_at advances after the attempt regardless of outcome,
// so persistent failures never turn into retry storms on later ticks.
func (s *Scheduler) fire(ctx context.Context, cfg *config.Config, job store.GroupSchedule) {
	payload := s.stats.RenderFeature(job.GroupID, job.Feature)

	ok := s.deliver.Deliver(ctx, job.GroupID, payload)
	if !ok && cfg.Scheduler.RetryOnce {
		ok = s.deliver.Deliver(ctx, job.GroupID, payload)
	}
	if !ok {
		slog.Warn("Scheduler: delivery failed", "job", job.ID, "group_id", job.GroupID, "feature", job.Feature)
	}

	if err := s.store.TouchScheduleRun(job.ID, time.Now().Unix()); err != nil {
		slog.Error("Scheduler: last_run_at update failed", "job", job.ID, "error", err)
	}
}
