package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type ShowcaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *types.ShowcasedItem) (*types.ShowcasedItem, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.ShowcasedItem) ([]*types.ShowcasedItem, error)
	GetByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.ShowcasedItem, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ShowcasedItem, error)
	ListByUserAndProvider(ctx context.Context, tx *gorm.DB, userID uuid.UUID, provider types.ShowcaseProvider) ([]*types.ShowcasedItem, error)
	Update(ctx context.Context, tx *gorm.DB, item *types.ShowcasedItem) error
	Delete(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	SetPinned(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, pinned bool) error
	URLExistsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, url string) (bool, error)
}

type showcaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShowcaseRepo(db *gorm.DB, baseLog *logger.Logger) ShowcaseRepo {
	repoLog := baseLog.With("repo", "ShowcaseRepo")
	return &showcaseRepo{db: db, log: repoLog}
}

func (sr *showcaseRepo) Create(ctx context.Context, tx *gorm.DB, item *types.ShowcasedItem) (*types.ShowcasedItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(item).Error; err != nil {
		return nil, MapError("ShowcaseRepo.Create", err)
	}
	return item, nil
}

func (sr *showcaseRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.ShowcasedItem) ([]*types.ShowcasedItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(items) == 0 {
		return []*types.ShowcasedItem{}, nil
	}
	if err := transaction.WithContext(ctx).CreateInBatches(&items, 50).Error; err != nil {
		return nil, MapError("ShowcaseRepo.CreateBatch", err)
	}
	return items, nil
}

func (sr *showcaseRepo) GetByID(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*types.ShowcasedItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var item types.ShowcasedItem
	if err := transaction.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error; err != nil {
		return nil, MapError("ShowcaseRepo.GetByID", err)
	}
	return &item, nil
}

func (sr *showcaseRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ShowcasedItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.ShowcasedItem
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_pinned DESC, created_at DESC").
		Find(&results).Error; err != nil {
		return nil, MapError("ShowcaseRepo.ListByUser", err)
	}
	return results, nil
}

func (sr *showcaseRepo) ListByUserAndProvider(ctx context.Context, tx *gorm.DB, userID uuid.UUID, provider types.ShowcaseProvider) ([]*types.ShowcasedItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.ShowcasedItem
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, MapError("ShowcaseRepo.ListByUserAndProvider", err)
	}
	return results, nil
}

func (sr *showcaseRepo) Update(ctx context.Context, tx *gorm.DB, item *types.ShowcasedItem) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Save(item).Error; err != nil {
		return MapError("ShowcaseRepo.Update", err)
	}
	return nil
}

func (sr *showcaseRepo) Delete(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&types.ShowcasedItem{}).Error; err != nil {
		return MapError("ShowcaseRepo.Delete", err)
	}
	return nil
}

func (sr *showcaseRepo) SetPinned(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, pinned bool) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.ShowcasedItem{}).
		Where("id = ?", itemID).
		Update("is_pinned", pinned).Error; err != nil {
		return MapError("ShowcaseRepo.SetPinned", err)
	}
	return nil
}

func (sr *showcaseRepo) URLExistsForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, url string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ShowcasedItem{}).
		Where("user_id = ? AND external_url = ?", userID, url).
		Count(&count).Error; err != nil {
		return false, MapError("ShowcaseRepo.URLExistsForUser", err)
	}
	return count > 0, nil
}
