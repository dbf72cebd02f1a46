package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type SkillRepo interface {
	// ReplaceForUser swaps the user's whole verified-skill set in one
	// transaction. Concurrent replacements for the same user serialize on a
	// per-user advisory lock, so two runs can never interleave their
	// delete/insert sequences.
	ReplaceForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skills []*types.AIVerifiedSkill) error
	GetByID(ctx context.Context, tx *gorm.DB, skillID uuid.UUID) (*types.AIVerifiedSkill, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AIVerifiedSkill, error)
	ListVisibleByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AIVerifiedSkill, error)
	SetVisibility(ctx context.Context, tx *gorm.DB, skillID uuid.UUID, visible bool) error
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type skillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	repoLog := baseLog.With("repo", "SkillRepo")
	return &skillRepo{db: db, log: repoLog}
}

func (sk *skillRepo) ReplaceForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skills []*types.AIVerifiedSkill) error {
	transaction := tx
	if transaction == nil {
		transaction = sk.db
	}

	err := transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		// Advisory lock is Postgres-only; the sqlite test dialect serializes
		// writes on its own.
		if txn.Dialector.Name() == "postgres" {
			if err := txn.Exec(`SELECT pg_advisory_xact_lock(hashtext(?))`, "skills:"+userID.String()).Error; err != nil {
				return err
			}
		}
		if err := txn.Where("user_id = ?", userID).Delete(&types.AIVerifiedSkill{}).Error; err != nil {
			return err
		}
		if len(skills) == 0 {
			return nil
		}
		return txn.CreateInBatches(&skills, 50).Error
	})
	if err != nil {
		return MapError("SkillRepo.ReplaceForUser", err)
	}
	return nil
}

func (sk *skillRepo) GetByID(ctx context.Context, tx *gorm.DB, skillID uuid.UUID) (*types.AIVerifiedSkill, error) {
	transaction := tx
	if transaction == nil {
		transaction = sk.db
	}

	var skill types.AIVerifiedSkill
	if err := transaction.WithContext(ctx).
		Where("id = ?", skillID).
		First(&skill).Error; err != nil {
		return nil, MapError("SkillRepo.GetByID", err)
	}
	return &skill, nil
}

func (sk *skillRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AIVerifiedSkill, error) {
	transaction := tx
	if transaction == nil {
		transaction = sk.db
	}

	var results []*types.AIVerifiedSkill
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("confidence_score DESC, repository_count DESC").
		Find(&results).Error; err != nil {
		return nil, MapError("SkillRepo.ListByUser", err)
	}
	return results, nil
}

func (sk *skillRepo) ListVisibleByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AIVerifiedSkill, error) {
	transaction := tx
	if transaction == nil {
		transaction = sk.db
	}

	var results []*types.AIVerifiedSkill
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND is_visible = ?", userID, true).
		Order("confidence_score DESC, repository_count DESC").
		Find(&results).Error; err != nil {
		return nil, MapError("SkillRepo.ListVisibleByUser", err)
	}
	return results, nil
}

func (sk *skillRepo) SetVisibility(ctx context.Context, tx *gorm.DB, skillID uuid.UUID, visible bool) error {
	transaction := tx
	if transaction == nil {
		transaction = sk.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.AIVerifiedSkill{}).
		Where("id = ?", skillID).
		Update("is_visible", visible).Error; err != nil {
		return MapError("SkillRepo.SetVisibility", err)
	}
	return nil
}

func (sk *skillRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sk.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AIVerifiedSkill{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, MapError("SkillRepo.CountByUser", err)
	}
	return count, nil
}
