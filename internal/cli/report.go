package cli

import (
	"fmt"
	"os"

	"github.com/ChatPulse/ChatPulse/internal/config"
	"github.com/ChatPulse/ChatPulse/internal/stats"
	"github.com/ChatPulse/ChatPulse/internal/store"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <group_id> <feature>",
	Short: "Render a report feature for a group",
	Long:  "Renders a named report (group_total, group_total_delre, top_users) to stdout.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, st := mustOpenService()
		defer st.Close()
		fmt.Println(svc.RenderFeature(args[0], args[1]))
	},
}

// mustOpenService wires a stats service against the configured event log,
// exiting on failure. One-shot commands share it.
func mustOpenService() (*stats.Service, *store.Store) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		fmt.Printf("Failed to open event log: %v\n", err)
		os.Exit(1)
	}
	return stats.New(st, config.NewStore(cfg)), st
}
