package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

type NotificationHandler struct {
	log   *logger.Logger
	notes services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notes services.NotificationService) *NotificationHandler {
	return &NotificationHandler{log: log.With("handler", "NotificationHandler"), notes: notes}
}

// List handles GET /api/notifications?limit=&offset=.
func (nh *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, unread, err := nh.notes.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"notifications": notifications, "unread_count": unread})
}

type markReadRequest struct {
	ID uuid.UUID `json:"id"`
}

// MarkRead handles POST /api/notifications/read.
func (nh *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == uuid.Nil {
		respondValidation(c, "body must carry a notification id")
		return
	}
	if err := nh.notes.MarkRead(c.Request.Context(), userID, req.ID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"id": req.ID, "read": true})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (nh *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	if err := nh.notes.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"read": "all"})
}
