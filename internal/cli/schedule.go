package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled group reports",
}

var scheduleListCmd = &cobra.Command{
	Use:   "list <group_id>",
	Short: "List report jobs for a group",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, st := mustOpenService()
		defer st.Close()
		jobs, err := svc.ListGroupSchedules(args[0])
		if err != nil {
			fmt.Printf("List failed: %v\n", err)
			os.Exit(1)
		}
		if len(jobs) == 0 {
			fmt.Println("No schedules for this group")
			return
		}
		for _, job := range jobs {
			state := "enabled"
			if !job.Enabled {
				state = "disabled"
			}
			fmt.Printf("#%d %02d:%02d %s (%s)\n", job.ID, job.Hour, job.Minute, job.Feature, state)
		}
	},
}

var scheduleSetCmd = &cobra.Command{
	Use:   "set <group_id> <hour> <minute> <feature>",
	Short: "Create or re-enable a daily report job",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		hour, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Invalid hour: %s\n", args[1])
			os.Exit(1)
		}
		minute, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Printf("Invalid minute: %s\n", args[2])
			os.Exit(1)
		}
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			fmt.Println("Time out of range: hour 0-23, minute 0-59")
			os.Exit(1)
		}
		svc, st := mustOpenService()
		defer st.Close()
		job, err := svc.UpsertGroupSchedule(args[0], hour, minute, args[3])
		if err != nil {
			fmt.Printf("Set failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Schedule set: #%d %02d:%02d %s\n", job.ID, job.Hour, job.Minute, job.Feature)
	},
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <group_id> <job_id>",
	Short: "Remove a report job",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Printf("Invalid job id: %s\n", args[1])
			os.Exit(1)
		}
		svc, st := mustOpenService()
		defer st.Close()
		removed, err := svc.RemoveGroupSchedule(args[0], id)
		if err != nil {
			fmt.Printf("Remove failed: %v\n", err)
			os.Exit(1)
		}
		if removed {
			fmt.Printf("Job %d removed\n", id)
		} else {
			fmt.Printf("Job %d not found\n", id)
		}
	},
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleSetCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
}
