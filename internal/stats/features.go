package stats

import (
	"fmt"
	"strings"
)

// Report features invocable by command, API, or scheduled job.
const (
	FeatureGroupTotal      = "group_total"
	FeatureGroupTotalDelRe = "group_total_delre"
	FeatureTopUsers        = "top_users"
)

// RenderFeature renders a named report as a delivery-ready text payload.
// Unknown feature names yield a literal "unsupported feature" line rather
// than an error, so schedules and commands degrade gracefully.
func (s *Service) RenderFeature(groupID, feature string) string {
	switch feature {
	case FeatureGroupTotal:
		n, err := s.GroupTotalMessages(groupID, Range{})
		if err != nil {
			return fmt.Sprintf("query failed: %v", err)
		}
		return fmt.Sprintf("group total messages: %d", n)
	case FeatureGroupTotalDelRe:
		n, err := s.GroupTotalMessagesWithoutRecall(groupID, Range{})
		if err != nil {
			return fmt.Sprintf("query failed: %v", err)
		}
		return fmt.Sprintf("group total messages (excluding recalled): %d", n)
	case FeatureTopUsers:
		top, err := s.GroupTopUsersWithoutRecall(groupID, 10, Range{})
		if err != nil {
			return fmt.Sprintf("query failed: %v", err)
		}
		lines := []string{"top 10 active users:"}
		for i, uc := range top {
			lines = append(lines, fmt.Sprintf("%d. %s: %d", i+1, uc.UserID, uc.Count))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("unsupported feature: %s", feature)
	}
}
