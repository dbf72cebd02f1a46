package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

const (
	defaultNotificationPage = 20
	maxNotificationPage     = 100
)

type NotificationService interface {
	// ListForUser returns one page of notifications plus the unread count.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	log   *logger.Logger
	notes repos.NotificationRepo
}

func NewNotificationService(log *logger.Logger, notes repos.NotificationRepo) NotificationService {
	return &notificationService{
		log:   log.With("service", "NotificationService"),
		notes: notes,
	}
}

func (ns *notificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.Notification, int64, error) {
	if limit <= 0 {
		limit = defaultNotificationPage
	}
	if limit > maxNotificationPage {
		limit = maxNotificationPage
	}
	if offset < 0 {
		offset = 0
	}

	notes, err := ns.notes.ListByUser(ctx, nil, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := ns.notes.CountUnread(ctx, nil, userID)
	if err != nil {
		return nil, 0, err
	}
	return notes, unread, nil
}

func (ns *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return ns.notes.MarkRead(ctx, nil, notificationID, userID)
}

func (ns *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return ns.notes.MarkAllRead(ctx, nil, userID)
}
