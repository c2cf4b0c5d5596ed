package stats

import "fmt"

// QueryRequest names one aggregation query over the event log. UserID is
// required only by the user-scoped queries; Limit applies to ranked queries.
type QueryRequest struct {
	Name    string `json:"name"`
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Range   Range  `json:"range,omitempty"`
}

// Query dispatches a named query and folds the result into an Envelope.
func (s *Service) Query(req QueryRequest) Envelope {
	if req.GroupID == "" {
		return Fail(fmt.Errorf("group_id is required"))
	}
	switch req.Name {
	case "group_total":
		return Wrap(s.GroupTotalMessages(req.GroupID, req.Range))
	case "group_total_delre":
		return Wrap(s.GroupTotalMessagesWithoutRecall(req.GroupID, req.Range))
	case "user_total":
		return s.userQuery(req, func() (any, error) {
			return s.UserTotalMessages(req.GroupID, req.UserID, req.Range)
		})
	case "user_total_delre":
		return s.userQuery(req, func() (any, error) {
			return s.UserTotalMessagesWithoutRecall(req.GroupID, req.UserID, req.Range)
		})
	case "top_users":
		return Wrap(s.GroupTopUsers(req.GroupID, req.Limit, req.Range))
	case "top_users_delre":
		return Wrap(s.GroupTopUsersWithoutRecall(req.GroupID, req.Limit, req.Range))
	case "heatmap":
		return Wrap(s.GroupHeatmap(req.GroupID, req.Range))
	case "heatmap_delre":
		return Wrap(s.GroupHeatmapWithoutRecall(req.GroupID, req.Range))
	case "daily":
		return Wrap(s.GroupDailyMessages(req.GroupID, req.Range))
	case "daily_delre":
		return Wrap(s.GroupDailyMessagesWithoutRecall(req.GroupID, req.Range))
	case "hourly":
		return Wrap(s.GroupHourlyMessages(req.GroupID, req.Range))
	case "hourly_delre":
		return Wrap(s.GroupHourlyMessagesWithoutRecall(req.GroupID, req.Range))
	case "user_hourly":
		return s.userQuery(req, func() (any, error) {
			return s.UserHourlyActivity(req.GroupID, req.UserID, req.Range)
		})
	case "user_active_days":
		return s.userQuery(req, func() (any, error) {
			return s.UserActiveDays(req.GroupID, req.UserID, req.Range)
		})
	case "keywords":
		return Wrap(s.GroupKeywordStats(req.GroupID, req.Limit, req.Range))
	case "keywords_delre":
		return Wrap(s.GroupKeywordStatsWithoutRecall(req.GroupID, req.Limit, req.Range))
	case "user_keywords":
		return s.userQuery(req, func() (any, error) {
			return s.UserKeywordStats(req.GroupID, req.UserID, req.Limit, req.Range)
		})
	case "mentions":
		return s.userQuery(req, func() (any, error) {
			return s.UserMentionStats(req.GroupID, req.UserID, req.Range)
		})
	case "types":
		return Wrap(s.GroupMessageTypes(req.GroupID, req.Range))
	case "types_delre":
		return Wrap(s.GroupMessageTypesWithoutRecall(req.GroupID, req.Range))
	case "user_types":
		return s.userQuery(req, func() (any, error) {
			return s.UserMessageTypes(req.GroupID, req.UserID, req.Range)
		})
	case "active_users":
		return Wrap(s.GroupActiveUsers(req.GroupID, req.Range.Days))
	case "inactive_users":
		return Wrap(s.GroupInactiveUsers(req.GroupID, req.Range.Days))
	case "burst":
		return Wrap(s.GroupBurstEvents(req.GroupID, req.Range))
	case "silent":
		return Wrap(s.GroupSilentEvents(req.GroupID))
	default:
		return Fail(fmt.Errorf("unknown query %q", req.Name))
	}
}

func (s *Service) userQuery(req QueryRequest, run func() (any, error)) Envelope {
	if req.UserID == "" {
		return Fail(fmt.Errorf("query %q requires user_id", req.Name))
	}
	return Wrap(run())
}
