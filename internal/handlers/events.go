package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/realtime"
)

// EventsHandler attaches authenticated clients to the SSE hub.
type EventsHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewEventsHandler(log *logger.Logger, hub *realtime.SSEHub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// Stream handles GET /api/events. The client is subscribed to its own user
// channel and served until it disconnects.
func (eh *EventsHandler) Stream(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	client := eh.hub.NewSSEClient(userID)
	eh.hub.AddChannel(client, realtime.UserChannel(userID.String()))
	defer eh.hub.CloseClient(client)

	eh.hub.ServeHTTP(c.Writer, c.Request, client)
}
