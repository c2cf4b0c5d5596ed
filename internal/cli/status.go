package cli

import (
	"fmt"
	"os"

	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/store"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ ChatPulse Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 ChatPulse Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		configPath, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults will be used)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config:  ? Unable to load: %v\n", err)
			return
		}
		if cfg.Enabled {
			fmt.Println("Enabled: ✓")
		} else {
			fmt.Println("Enabled: ✗ (collection and commands are off)")
		}
		if cfg.Source.Kafka.Enabled {
			fmt.Println("Kafka:   ✓ Enabled (" + cfg.Source.Kafka.Brokers + ")")
		} else {
			fmt.Println("Kafka:   ✗ Disabled")
		}
		if cfg.Delivery.Slack.Enabled {
			fmt.Println("Slack:   ✓ Enabled")
		} else {
			fmt.Println("Slack:   ✗ Disabled (reports go to the log)")
		}

		st, err := store.New(cfg.DatabasePath())
		if err != nil {
			fmt.Printf("Event log: ✗ %v\n", err)
			return
		}
		defer st.Close()

		sum, err := st.Summary()
		if err != nil {
			fmt.Printf("Event log: ✗ %v\n", err)
			return
		}
		fmt.Println("Event log: ✓ " + cfg.DatabasePath())
		fmt.Printf("Groups:    %d\n", sum.TotalGroups)
		fmt.Printf("Messages:  %d (%d recalled)\n", sum.TotalMessages, sum.RecalledMessages)

		if counters, err := st.Counters(); err == nil {
			fmt.Printf("Counters:  collected=%d recalled=%d command_calls=%d\n",
				counters[store.CounterCollected],
				counters[store.CounterRecalled],
				counters[store.CounterCommandCalls])
		}
	},
}
