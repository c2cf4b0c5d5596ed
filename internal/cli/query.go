package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ChatPulse/ChatPulse/internal/stats"
	"github.com/spf13/cobra"
)

var (
	queryUser  string
	queryLimit int
	queryDays  int
	queryStart int64
	queryEnd   int64
)

var queryCmd = &cobra.Command{
	Use:   "query <group_id> <name>",
	Short: "Run a named aggregation query and print the JSON result",
	Long: "Runs one aggregation query (group_total, top_users, heatmap, daily, hourly,\n" +
		"keywords, mentions, types, active_users, inactive_users, burst, silent, and\n" +
		"their _delre variants) and prints a {code, message, data} envelope.",
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, st := mustOpenService()
		defer st.Close()

		env := svc.Query(stats.QueryRequest{
			Name:    args[1],
			GroupID: args[0],
			UserID:  queryUser,
			Limit:   queryLimit,
			Range:   stats.Range{Start: queryStart, End: queryEnd, Days: queryDays},
		})
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			fmt.Printf("Encode failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		if env.Code != 0 {
			os.Exit(1)
		}
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryUser, "user", "", "User id for user-scoped queries")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Result limit for ranked queries")
	queryCmd.Flags().IntVar(&queryDays, "days", 0, "Window size in days (default: configured stat period)")
	queryCmd.Flags().Int64Var(&queryStart, "start", 0, "Window start (unix seconds, overrides --days)")
	queryCmd.Flags().Int64Var(&queryEnd, "end", 0, "Window end (unix seconds, default now)")
}
