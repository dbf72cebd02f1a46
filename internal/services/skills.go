package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/0unveiled/backend/internal/apperr"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

// SkillService exposes the verified-skill set: public reads show visible
// skills only, owners see everything and control visibility.
type SkillService interface {
	VisibleForUsername(ctx context.Context, username string) ([]*types.AIVerifiedSkill, error)
	ListForOwner(ctx context.Context, userID uuid.UUID) ([]*types.AIVerifiedSkill, error)
	SetVisibility(ctx context.Context, userID, skillID uuid.UUID, visible bool) error
}

type skillService struct {
	log    *logger.Logger
	users  repos.UserRepo
	skills repos.SkillRepo
}

func NewSkillService(log *logger.Logger, users repos.UserRepo, skills repos.SkillRepo) SkillService {
	return &skillService{
		log:    log.With("service", "SkillService"),
		users:  users,
		skills: skills,
	}
}

func (s *skillService) VisibleForUsername(ctx context.Context, username string) ([]*types.AIVerifiedSkill, error) {
	user, err := s.users.GetByUsername(ctx, nil, username)
	if err != nil {
		return nil, err
	}
	return s.skills.ListVisibleByUser(ctx, nil, user.ID)
}

func (s *skillService) ListForOwner(ctx context.Context, userID uuid.UUID) ([]*types.AIVerifiedSkill, error) {
	return s.skills.ListByUser(ctx, nil, userID)
}

func (s *skillService) SetVisibility(ctx context.Context, userID, skillID uuid.UUID, visible bool) error {
	skill, err := s.skills.GetByID(ctx, nil, skillID)
	if err != nil {
		return err
	}
	if skill.UserID != userID {
		return apperr.New(apperr.CodeForbidden, "SkillService.SetVisibility", "skill belongs to another user", nil)
	}
	return s.skills.SetVisibility(ctx, nil, skillID, visible)
}
