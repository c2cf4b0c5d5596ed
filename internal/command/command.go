// Package command implements the text command protocol for group chats.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChatPulse/ChatPulse/internal/stats"
)

var daysArgRe = regexp.MustCompile(`^(\d+)d$`)

var helpText = strings.Join([]string{
	"#stats clean 7d",
	"#stats <HH> <MM> <feature>",
	"#stats schedule list",
	"#stats schedule remove <job_id>",
	"#stats run <feature>",
}, "\n")

// Handler turns tokenized command strings into replies or mutations.
type Handler struct {
	stats *stats.Service
}

// NewHandler creates a command Handler.
func NewHandler(sv *stats.Service) *Handler {
	return &Handler{stats: sv}
}

// Handle executes one command for a group and returns the reply text.
// Command errors come back as reply lines, never as panics or raw errors.
func (h *Handler) Handle(groupID, commandText string) string {
	args := strings.Fields(commandText)
	if len(args) == 0 {
		return helpText
	}

	switch {
	case args[0] == "clean" && len(args) > 1:
		return h.clean(args[1])
	case args[0] == "schedule" && len(args) > 1 && args[1] == "list":
		return h.scheduleList(groupID)
	case args[0] == "schedule" && len(args) > 2 && args[1] == "remove":
		return h.scheduleRemove(groupID, args[2])
	case args[0] == "run" && len(args) > 1:
		return h.stats.RenderFeature(groupID, args[1])
	case len(args) >= 3 && isClockField(args[0]) && isClockField(args[1]):
		return h.scheduleSet(groupID, args[0], args[1], args[2])
	default:
		return "unknown command, send #stats for help"
	}
}

func (h *Handler) clean(arg string) string {
	m := daysArgRe.FindStringSubmatch(arg)
	if m == nil {
		return "bad argument, expected something like: #stats clean 7d"
	}
	days, _ := strconv.Atoi(m[1])
	if days < 1 {
		return "bad argument, expected something like: #stats clean 7d"
	}
	removed, err := h.stats.CleanData(days)
	if err != nil {
		return fmt.Sprintf("cleanup failed: %v", err)
	}
	return fmt.Sprintf("removed %d messages older than %d days", removed, days)
}

func (h *Handler) scheduleList(groupID string) string {
	jobs, err := h.stats.ListGroupSchedules(groupID)
	if err != nil {
		return fmt.Sprintf("query failed: %v", err)
	}
	if len(jobs) == 0 {
		return "no schedules for this group"
	}
	lines := make([]string, 0, len(jobs))
	for _, j := range jobs {
		lines = append(lines, fmt.Sprintf("#%d %02d:%02d %s", j.ID, j.Hour, j.Minute, j.Feature))
	}
	return strings.Join(lines, "\n")
}

func (h *Handler) scheduleRemove(groupID, idArg string) string {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Sprintf("bad job id: %s", idArg)
	}
	ok, err := h.stats.RemoveGroupSchedule(groupID, id)
	if err != nil {
		return fmt.Sprintf("remove failed: %v", err)
	}
	if !ok {
		return fmt.Sprintf("job %d not found", id)
	}
	return fmt.Sprintf("job %d removed", id)
}

func (h *Handler) scheduleSet(groupID, hourArg, minuteArg, feature string) string {
	hour, _ := strconv.Atoi(hourArg)
	minute, _ := strconv.Atoi(minuteArg)
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "time out of range: hour 0-23, minute 0-59"
	}
	job, err := h.stats.UpsertGroupSchedule(groupID, hour, minute, feature)
	if err != nil {
		return fmt.Sprintf("schedule failed: %v", err)
	}
	return fmt.Sprintf("schedule set: #%d %02d:%02d %s", job.ID, hour, minute, feature)
}

func isClockField(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
