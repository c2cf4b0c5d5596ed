package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanDays int

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete events older than a retention window",
	Run: func(cmd *cobra.Command, args []string) {
		svc, st := mustOpenService()
		defer st.Close()
		removed, err := svc.CleanData(cleanDays)
		if err != nil {
			fmt.Printf("Clean failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %d messages older than %d days\n", removed, cleanDays)
	},
}

func init() {
	cleanCmd.Flags().IntVar(&cleanDays, "days", 90, "Delete events older than this many days")
}
