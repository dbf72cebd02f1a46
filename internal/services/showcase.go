package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/clients/github"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

type ShowcaseInput struct {
	Provider    types.ShowcaseProvider `json:"provider"`
	ExternalURL string                 `json:"external_url"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Metadata    datatypes.JSON         `json:"metadata"`
	IsPinned    bool                   `json:"is_pinned"`
}

// ShowcaseUpdate applies only its non-nil fields.
type ShowcaseUpdate struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	ExternalURL *string        `json:"external_url"`
	Metadata    datatypes.JSON `json:"metadata"`
}

// ShowcaseService manages portfolio entries. GITHUB items must point at a
// github.com repository; those are the ones the analysis pipeline fetches.
type ShowcaseService interface {
	Create(ctx context.Context, userID uuid.UUID, input ShowcaseInput) (*types.ShowcasedItem, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, input ShowcaseUpdate) (*types.ShowcasedItem, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.ShowcasedItem, error)
	SetPinned(ctx context.Context, userID, itemID uuid.UUID, pinned bool) error
	// ImportFromGitHub creates GITHUB items for every public repository of the
	// user's connected GitHub account that is not already showcased.
	ImportFromGitHub(ctx context.Context, userID uuid.UUID) ([]*types.ShowcasedItem, error)
}

type showcaseService struct {
	log      *logger.Logger
	users    repos.UserRepo
	showcase repos.ShowcaseRepo
	gh       github.Client
}

func NewShowcaseService(log *logger.Logger, users repos.UserRepo, showcase repos.ShowcaseRepo, gh github.Client) ShowcaseService {
	return &showcaseService{
		log:      log.With("service", "ShowcaseService"),
		users:    users,
		showcase: showcase,
		gh:       gh,
	}
}

func (s *showcaseService) Create(ctx context.Context, userID uuid.UUID, input ShowcaseInput) (*types.ShowcasedItem, error) {
	input.ExternalURL = strings.TrimSpace(input.ExternalURL)
	input.Title = strings.TrimSpace(input.Title)

	if !input.Provider.Valid() {
		return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Create", "unknown provider", nil)
	}
	if input.ExternalURL == "" {
		return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Create", "external URL is required", nil)
	}
	if input.Provider == types.ProviderGitHub {
		_, repo, ok := github.ParseRepoURL(input.ExternalURL)
		if !ok {
			return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Create",
				"GITHUB items need a github.com repository URL", nil)
		}
		if input.Title == "" {
			input.Title = repo
		}
	}
	if input.Title == "" {
		return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Create", "title is required", nil)
	}

	exists, err := s.showcase.URLExistsForUser(ctx, nil, userID, input.ExternalURL)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.New(apperr.CodeConflict, "ShowcaseService.Create", "item with this URL already exists", nil)
	}

	item := &types.ShowcasedItem{
		UserID:      userID,
		Provider:    input.Provider,
		ExternalURL: input.ExternalURL,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Metadata:    input.Metadata,
		IsPinned:    input.IsPinned,
	}
	return s.showcase.Create(ctx, nil, item)
}

func (s *showcaseService) Update(ctx context.Context, userID, itemID uuid.UUID, input ShowcaseUpdate) (*types.ShowcasedItem, error) {
	item, err := s.ownedItem(ctx, userID, itemID, "ShowcaseService.Update")
	if err != nil {
		return nil, err
	}

	if input.ExternalURL != nil {
		next := strings.TrimSpace(*input.ExternalURL)
		if item.Provider == types.ProviderGitHub {
			if _, _, ok := github.ParseRepoURL(next); !ok {
				return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Update",
					"GITHUB items need a github.com repository URL", nil)
			}
		}
		if next == "" {
			return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Update", "external URL is required", nil)
		}
		item.ExternalURL = next
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperr.New(apperr.CodeValidation, "ShowcaseService.Update", "title is required", nil)
		}
		item.Title = title
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Metadata != nil {
		item.Metadata = input.Metadata
	}

	if err := s.showcase.Update(ctx, nil, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *showcaseService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, userID, itemID, "ShowcaseService.Delete"); err != nil {
		return err
	}
	return s.showcase.Delete(ctx, nil, itemID)
}

func (s *showcaseService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.ShowcasedItem, error) {
	return s.showcase.ListByUser(ctx, nil, userID)
}

func (s *showcaseService) SetPinned(ctx context.Context, userID, itemID uuid.UUID, pinned bool) error {
	if _, err := s.ownedItem(ctx, userID, itemID, "ShowcaseService.SetPinned"); err != nil {
		return err
	}
	return s.showcase.SetPinned(ctx, nil, itemID, pinned)
}

func (s *showcaseService) ImportFromGitHub(ctx context.Context, userID uuid.UUID) ([]*types.ShowcasedItem, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.GithubUsername) == "" {
		return nil, apperr.New(apperr.CodePreconditionFailed, "ShowcaseService.ImportFromGitHub",
			"connect a GitHub account before importing", nil)
	}

	repositories, err := s.gh.ListUserRepos(ctx, user.GithubUsername)
	if err != nil {
		return nil, err
	}

	var items []*types.ShowcasedItem
	for _, repo := range repositories {
		if strings.TrimSpace(repo.URL) == "" {
			continue
		}
		exists, err := s.showcase.URLExistsForUser(ctx, nil, userID, repo.URL)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		meta, _ := json.Marshal(map[string]any{
			"language": repo.Language,
			"stars":    repo.Stars,
			"forks":    repo.Forks,
		})
		items = append(items, &types.ShowcasedItem{
			UserID:      userID,
			Provider:    types.ProviderGitHub,
			ExternalURL: repo.URL,
			Title:       repo.Name,
			Description: repo.Description,
			Metadata:    datatypes.JSON(meta),
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	created, err := s.showcase.CreateBatch(ctx, nil, items)
	if err != nil {
		return nil, err
	}
	s.log.Info("imported GitHub repositories", "user_id", userID, "count", len(created))
	return created, nil
}

func (s *showcaseService) ownedItem(ctx context.Context, userID, itemID uuid.UUID, op string) (*types.ShowcasedItem, error) {
	item, err := s.showcase.GetByID(ctx, nil, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, apperr.New(apperr.CodeForbidden, op, "item belongs to another user", nil)
	}
	return item, nil
}
