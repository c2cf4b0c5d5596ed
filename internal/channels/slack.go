package channels

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/ChatPulse/ChatPulse/internal/config"
)

// SlackDeliverer posts report payloads to Slack channels. Group ids resolve
// to Slack channel ids through the configured mapping, falling back to the
// default channel.
type SlackDeliverer struct {
	cfg *config.Store
	api *slack.Client
}

// NewSlackDeliverer creates a Slack delivery channel from the live config.
func NewSlackDeliverer(cfg *config.Store) *SlackDeliverer {
	sc := cfg.Snapshot().Delivery.Slack
	opts := []slack.Option{}
	if sc.APIBase != "" {
		opts = append(opts, slack.OptionAPIURL(sc.APIBase))
	}
	return &SlackDeliverer{
		cfg: cfg,
		api: slack.New(sc.BotToken, opts...),
	}
}

func (d *SlackDeliverer) Name() string { return "slack" }

// Deliver posts payload to the Slack channel mapped to groupID. Failures are
// logged here and surfaced only as the boolean; the scheduler owns retries.
func (d *SlackDeliverer) Deliver(ctx context.Context, groupID, payload string) bool {
	sc := d.cfg.Snapshot().Delivery.Slack
	channel := sc.GroupChannels[groupID]
	if channel == "" {
		channel = sc.DefaultChannel
	}
	if channel == "" {
		slog.Warn("Slack delivery skipped: no channel mapping", "group_id", groupID)
		return false
	}
	_, _, err := d.api.PostMessageContext(ctx, channel, slack.MsgOptionText(payload, false))
	if err != nil {
		slog.Error("Slack delivery failed", "group_id", groupID, "channel", channel, "error", err)
		return false
	}
	return true
}
