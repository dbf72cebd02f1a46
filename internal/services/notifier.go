package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/realtime"
)

// AnalysisNotifier mirrors analysis lifecycle transitions onto the user's
// event channel so pages other than the one that started the run stay
// current.
type AnalysisNotifier interface {
	AnalysisProgress(userID uuid.UUID, event types.ProgressEvent)
	AnalysisComplete(userID uuid.UUID, result *types.AnalysisResult)
	AnalysisFailed(userID uuid.UUID, message string)
	SkillsUpdated(userID uuid.UUID, count int)
	NotificationCreated(userID uuid.UUID, notification *types.Notification)
}

type analysisNotifier struct {
	emit SSEEmitter
}

func NewAnalysisNotifier(emit SSEEmitter) AnalysisNotifier {
	return &analysisNotifier{emit: emit}
}

func (n *analysisNotifier) send(userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID.String()),
		Event:   event,
		Data:    data,
	})
}

func (n *analysisNotifier) AnalysisProgress(userID uuid.UUID, event types.ProgressEvent) {
	n.send(userID, realtime.SSEEventAnalysisProgress, map[string]any{
		"step":     event.Step,
		"progress": event.Progress,
	})
}

func (n *analysisNotifier) AnalysisComplete(userID uuid.UUID, result *types.AnalysisResult) {
	n.send(userID, realtime.SSEEventAnalysisComplete, map[string]any{
		"result": result,
	})
}

func (n *analysisNotifier) AnalysisFailed(userID uuid.UUID, message string) {
	n.send(userID, realtime.SSEEventAnalysisFailed, map[string]any{
		"error": message,
	})
}

func (n *analysisNotifier) SkillsUpdated(userID uuid.UUID, count int) {
	n.send(userID, realtime.SSEEventSkillsUpdated, map[string]any{
		"count": count,
	})
}

func (n *analysisNotifier) NotificationCreated(userID uuid.UUID, notification *types.Notification) {
	n.send(userID, realtime.SSEEventNotificationCreated, map[string]any{
		"notification": notification,
	})
}
