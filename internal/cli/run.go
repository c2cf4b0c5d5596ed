package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ChatPulse/ChatPulse/internal/bus"
	"github.com/ChatPulse/ChatPulse/internal/channels"
	"github.com/ChatPulse/ChatPulse/internal/command"
	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/ingest"
	"github.com/ChatPulse/ChatPulse/internal/scheduler"
	"github.com/ChatPulse/ChatPulse/internal/source"
	"github.com/ChatPulse/ChatPulse/internal/stats"
	"github.com/ChatPulse/ChatPulse/internal/store"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the collector, command handler, and report scheduler",
	Run:   runRun,
}

var runSignalNotify = signal.Notify
var runSignalStop = signal.Stop

func runRun(cmd *cobra.Command, args []string) {
	printHeader("🫀 ChatPulse Run")
	fmt.Println("Starting ChatPulse...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		fmt.Printf("Failed to open event log: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	cfgStore := config.NewStore(cfg)
	hydrateFromStore(cfgStore, st)

	collector := ingest.NewCollector(st, cfgStore)
	svc := stats.New(st, cfgStore)
	handler := command.NewHandler(svc)

	var deliverer channels.Deliverer = channels.LogDeliverer{}
	if cfg.Delivery.Slack.Enabled {
		deliverer = channels.NewSlackDeliverer(cfgStore)
	}
	slog.Info("delivery channel ready", "channel", deliverer.Name())

	eventBus := bus.NewEventBus()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	runSignalNotify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer runSignalStop(sigChan)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(cfgStore, st, svc, deliverer)
		go func() {
			if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("scheduler stopped", "error", err)
			}
		}()
	}

	if cfg.Source.Kafka.Enabled {
		src := source.NewKafkaSource(cfg.Source.Kafka, eventBus)
		go func() {
			if err := src.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("kafka source stopped", "error", err)
			}
		}()
	} else {
		slog.Warn("no event source enabled, nothing will be collected")
	}

	fmt.Println("ChatPulse is running. Press Ctrl+C to stop.")
	for {
		ev, err := eventBus.ConsumeInbound(ctx)
		if err != nil {
			return
		}
		if !cfgStore.Snapshot().Enabled {
			continue
		}
		collector.Ingest(ev.Event)
		handleCommandMessage(ctx, ev, cfgStore, st, handler, deliverer)
	}
}

// hydrateFromStore folds durable mirrors (stat period, feature flags) back
// into the live config so settings changed at runtime survive restarts.
func hydrateFromStore(cfg *config.Store, st *store.Store) {
	snap := cfg.Snapshot()
	if days := st.GetSettingInt(store.SettingStatPeriodDays, snap.StatPeriodDays); days != snap.StatPeriodDays {
		cfg.Update(func(c *config.Config) { c.StatPeriodDays = days })
	}
	flags, err := st.FeatureFlags()
	if err != nil {
		slog.Warn("feature flag hydration failed", "error", err)
		return
	}
	if len(flags) == 0 {
		return
	}
	cfg.Update(func(c *config.Config) {
		for name, enabled := range flags {
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
			default:
				slog.Warn("unknown persisted feature flag ignored", "name", name)
			}
		}
	})
}

// handleCommandMessage answers group messages starting with the command
// prefix. Replies go through the same deliverer as scheduled reports.
func handleCommandMessage(ctx context.Context, ev *bus.InboundEvent, cfg *config.Store, st *store.Store, handler *command.Handler, deliverer channels.Deliverer) {
	msg, ok := ev.Event.(*ingest.Message)
	if !ok || msg.Private || msg.GroupID == "" {
		return
	}
	snap := cfg.Snapshot()
	if !snap.GroupEnabled(msg.GroupID) {
		return
	}
	text := strings.TrimSpace(msg.RawText)
	if !strings.HasPrefix(text, snap.CommandPrefix) {
		return
	}
	st.BumpCounter(store.CounterCommandCalls)
	reply := handler.Handle(msg.GroupID, strings.TrimSpace(strings.TrimPrefix(text, snap.CommandPrefix)))
	if reply == "" {
		return
	}
	if !deliverer.Deliver(ctx, msg.GroupID, reply) {
		slog.Warn("command reply delivery failed",
			"group", msg.GroupID, "channel", deliverer.Name(), "trace", ev.TraceID)
	}
}
