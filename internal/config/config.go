// Package config provides configuration types and loading for chatpulse.
package config

// Config is the root configuration struct.
// Top-level groups: Collector, Features, Keyword, Scheduler, Burst, Silent,
// Source, Delivery, Paths.
type Config struct {
	Enabled               bool                   `json:"enabled" envconfig:"ENABLED"`
	Debug                 bool                   `json:"debug" envconfig:"DEBUG"`
	CommandPrefix         string                 `json:"commandPrefix" envconfig:"COMMAND_PREFIX"`
	TimezoneOffsetMinutes int                    `json:"timezoneOffsetMinutes" envconfig:"TIMEZONE_OFFSET_MINUTES"`
	StatPeriodDays        int                    `json:"statPeriodDays" envconfig:"STAT_PERIOD_DAYS"`
	Collector             CollectorConfig        `json:"collector"`
	Features              FeatureFlags           `json:"features"`
	Keyword               KeywordConfig          `json:"keyword"`
	Scheduler             SchedulerConfig        `json:"scheduler"`
	Burst                 BurstConfig            `json:"burst"`
	Silent                SilentConfig           `json:"silent"`
	Source                SourceConfig           `json:"source"`
	Delivery              DeliveryConfig         `json:"delivery"`
	Paths                 PathsConfig            `json:"paths"`
	Groups                map[string]GroupConfig `json:"groups,omitempty"`
}

// ---------------------------------------------------------------------------
// Collector – what gets written to the event log
// ---------------------------------------------------------------------------

// CollectorConfig gates which inbound events are persisted.
type CollectorConfig struct {
	PrivateMessages bool `json:"privateMessages" envconfig:"COLLECT_PRIVATE_MESSAGES"`
	GroupFiles      bool `json:"groupFiles" envconfig:"COLLECT_GROUP_FILES"`
	MessageContent  bool `json:"messageContent" envconfig:"STORE_MESSAGE_CONTENT"`
}

// FeatureFlags toggles individual query features.
type FeatureFlags struct {
	Keyword     bool `json:"keyword"`
	Heatmap     bool `json:"heatmap"`
	Burst       bool `json:"burst"`
	Silent      bool `json:"silent"`
	TypeStats   bool `json:"typeStats"`
	UserContent bool `json:"userContent"`
}

// KeywordConfig controls tokenization for keyword stats.
type KeywordConfig struct {
	MinWordLength int      `json:"minWordLength"`
	DefaultLimit  int      `json:"defaultLimit"`
	StopWords     []string `json:"stopWords"`
}

// ---------------------------------------------------------------------------
// Scheduler – periodic report delivery
// ---------------------------------------------------------------------------

// SchedulerConfig holds scheduler settings.
type SchedulerConfig struct {
	Enabled             bool `json:"enabled" envconfig:"SCHEDULER_ENABLED"`
	RetryOnce           bool `json:"retryOnce" envconfig:"SCHEDULER_RETRY_ONCE"`
	ScanIntervalSeconds int  `json:"scanIntervalSeconds" envconfig:"SCHEDULER_SCAN_INTERVAL_SECONDS"`
}

// BurstConfig parameterizes the burst detector.
type BurstConfig struct {
	WindowMinutes int     `json:"windowMinutes"`
	LookbackDays  int     `json:"lookbackDays"`
	Sigma         float64 `json:"sigma"`
	MinMessages   int     `json:"minMessages"`
}

// SilentConfig parameterizes the silent detector.
type SilentConfig struct {
	RecentHours  int     `json:"recentHours"`
	BaselineDays int     `json:"baselineDays"`
	Quantile     float64 `json:"quantile"`
}

// ---------------------------------------------------------------------------
// Source / Delivery – external collaborators
// ---------------------------------------------------------------------------

// SourceConfig configures inbound event sources.
type SourceConfig struct {
	Kafka KafkaSourceConfig `json:"kafka"`
}

// KafkaSourceConfig configures the Kafka event source.
type KafkaSourceConfig struct {
	Enabled       bool   `json:"enabled" envconfig:"KAFKA_ENABLED"`
	Brokers       string `json:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic         string `json:"topic" envconfig:"KAFKA_TOPIC"`
	ConsumerGroup string `json:"consumerGroup" envconfig:"KAFKA_CONSUMER_GROUP"`
}

// DeliveryConfig configures outbound report delivery.
type DeliveryConfig struct {
	Slack SlackDeliveryConfig `json:"slack"`
}

// SlackDeliveryConfig configures the Slack delivery channel.
// GroupChannels maps a group id to a Slack channel id; groups without a
// mapping fall back to DefaultChannel.
type SlackDeliveryConfig struct {
	Enabled        bool              `json:"enabled" envconfig:"SLACK_ENABLED"`
	BotToken       string            `json:"botToken" envconfig:"SLACK_BOT_TOKEN"`
	APIBase        string            `json:"apiBase,omitempty" envconfig:"SLACK_API_BASE"`
	DefaultChannel string            `json:"defaultChannel" envconfig:"SLACK_DEFAULT_CHANNEL"`
	GroupChannels  map[string]string `json:"groupChannels,omitempty"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
}

// GroupConfig holds per-group overrides. A nil Enabled means "enabled".
type GroupConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Enabled:               true,
		CommandPrefix:         "#stats",
		TimezoneOffsetMinutes: 480,
		StatPeriodDays:        30,
		Collector: CollectorConfig{
			MessageContent: true,
		},
		Features: FeatureFlags{
			Keyword:     true,
			Heatmap:     true,
			Burst:       true,
			Silent:      true,
			TypeStats:   true,
			UserContent: true,
		},
		Keyword: KeywordConfig{
			MinWordLength: 2,
			DefaultLimit:  50,
			StopWords:     []string{"的", "了", "和", "是", "就", "都", "而", "及", "与", "着", "在"},
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			RetryOnce:           true,
			ScanIntervalSeconds: 60,
		},
		Burst: BurstConfig{
			WindowMinutes: 5,
			LookbackDays:  7,
			Sigma:         3,
			MinMessages:   20,
		},
		Silent: SilentConfig{
			RecentHours:  24,
			BaselineDays: 7,
			Quantile:     0.2,
		},
		Groups: map[string]GroupConfig{},
	}
}

// Normalize clamps out-of-range values back into their valid domain.
func (c *Config) Normalize() {
	if c.CommandPrefix == "" {
		c.CommandPrefix = "#stats"
	}
	if c.StatPeriodDays < 1 {
		c.StatPeriodDays = 1
	}
	if c.Keyword.MinWordLength < 1 {
		c.Keyword.MinWordLength = 1
	}
	if c.Keyword.DefaultLimit < 1 {
		c.Keyword.DefaultLimit = 50
	}
	if c.Scheduler.ScanIntervalSeconds < 10 {
		c.Scheduler.ScanIntervalSeconds = 10
	}
	if c.Burst.WindowMinutes < 1 {
		c.Burst.WindowMinutes = 1
	}
	if c.Burst.LookbackDays < 1 {
		c.Burst.LookbackDays = 1
	}
	if c.Burst.Sigma <= 0 {
		c.Burst.Sigma = 3
	}
	if c.Burst.MinMessages < 1 {
		c.Burst.MinMessages = 1
	}
	if c.Silent.RecentHours < 1 {
		c.Silent.RecentHours = 1
	}
	if c.Silent.BaselineDays < 1 {
		c.Silent.BaselineDays = 1
	}
	if c.Silent.Quantile < 0 {
		c.Silent.Quantile = 0
	}
	if c.Silent.Quantile > 1 {
		c.Silent.Quantile = 1
	}
	if c.Groups == nil {
		c.Groups = map[string]GroupConfig{}
	}
}

// GroupEnabled reports whether collection is enabled for a group.
// Groups are enabled unless explicitly disabled.
func (c *Config) GroupEnabled(groupID string) bool {
	gc, ok := c.Groups[groupID]
	if !ok || gc.Enabled == nil {
		return true
	}
	return *gc.Enabled
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() Config {
	out := *c
	out.Keyword.StopWords = append([]string(nil), c.Keyword.StopWords...)
	out.Groups = make(map[string]GroupConfig, len(c.Groups))
	for id, gc := range c.Groups {
		cp := gc
		if gc.Enabled != nil {
			v := *gc.Enabled
			cp.Enabled = &v
		}
		out.Groups[id] = cp
	}
	if c.Delivery.Slack.GroupChannels != nil {
		out.Delivery.Slack.GroupChannels = make(map[string]string, len(c.Delivery.Slack.GroupChannels))
		for id, ch := range c.Delivery.Slack.GroupChannels {
			out.Delivery.Slack.GroupChannels[id] = ch
		}
	}
	return out
}
