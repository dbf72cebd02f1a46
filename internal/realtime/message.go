package realtime

type SSEEvent string

const (
	SSEEventAnalysisProgress    SSEEvent = "AnalysisProgress"
	SSEEventAnalysisComplete    SSEEvent = "AnalysisComplete"
	SSEEventAnalysisFailed      SSEEvent = "AnalysisFailed"
	SSEEventSkillsUpdated       SSEEvent = "SkillsUpdated"
	SSEEventNotificationCreated SSEEvent = "NotificationCreated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the per-user channel every client subscribes to on connect.
func UserChannel(userID string) string {
	return "user:" + userID
}
