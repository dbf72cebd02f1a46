package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notification, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.Notification, error)
	ListUnreadSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) ([]*types.Notification, error)
	CountUnread(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	repoLog := baseLog.With("repo", "NotificationRepo")
	return &notificationRepo{db: db, log: repoLog}
}

func (nr *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	if err := transaction.WithContext(ctx).Create(notification).Error; err != nil {
		return MapError("NotificationRepo.Create", err)
	}
	return nil
}

func (nr *notificationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var notification types.Notification
	if err := transaction.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, MapError("NotificationRepo.GetByID", err)
	}
	return &notification, nil
}

func (nr *notificationRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var results []*types.Notification
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, MapError("NotificationRepo.ListByUser", err)
	}
	return results, nil
}

func (nr *notificationRepo) ListUnreadSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, cutoff time.Time) ([]*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var results []*types.Notification
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND is_read = ? AND created_at > ?", userID, false, cutoff).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, MapError("NotificationRepo.ListUnreadSince", err)
	}
	return results, nil
}

func (nr *notificationRepo) CountUnread(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, MapError("NotificationRepo.CountUnread", err)
	}
	return count, nil
}

func (nr *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return MapError("NotificationRepo.MarkRead", result.Error)
	}
	if result.RowsAffected == 0 {
		return MapError("NotificationRepo.MarkRead", gorm.ErrRecordNotFound)
	}
	return nil
}

func (nr *notificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		return MapError("NotificationRepo.MarkAllRead", err)
	}
	return nil
}
