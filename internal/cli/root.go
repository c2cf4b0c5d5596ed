package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/ChatPulse/ChatPulse/internal/cli.version=1.2.3"
	version = "0.4.1"
	logo    = "\n" +
		"   ____ _           _   ____        _\n" +
		"  / ___| |__   __ _| |_|  _ \\ _   _| |___  ___\n" +
		" | |   | '_ \\ / _` | __| |_) | | | | / __|/ _ \\\n" +
		" | |___| | | | (_| | |_|  __/| |_| | \\__ \\  __/\n" +
		"  \\____|_| |_|\\__,_|\\__|_|    \\__,_|_|___/\\___|\n"
)

var rootCmd = &cobra.Command{
	Use:   "chatpulse",
	Short: "ChatPulse - chat activity analytics",
	Long:  color.CyanString(logo) + "\nIngests chat events into an append-only log and answers analytical queries over it.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(scheduleCmd)
}
