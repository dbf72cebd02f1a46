package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/cache"
	"github.com/0unveiled/backend/internal/clients/github"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

const (
	githubUserCacheTTL = 10 * time.Minute
	maxProfileYears    = 80
)

// ProfileUpdate applies only its non-nil fields.
type ProfileUpdate struct {
	FirstName       *string               `json:"first_name"`
	LastName        *string               `json:"last_name"`
	Headline        *string               `json:"headline"`
	Bio             *string               `json:"bio"`
	ExperienceYears *int                  `json:"experience_years"`
	EducationYears  *int                  `json:"education_years"`
	EmailFrequency  *types.EmailFrequency `json:"email_frequency"`

	NotificationPrefs datatypes.JSON `json:"notification_prefs"`
	Experience        datatypes.JSON `json:"experience"`
	Education         datatypes.JSON `json:"education"`
	ProfileSkills     datatypes.JSON `json:"profile_skills"`
}

type UserService interface {
	// PublicProfile assembles the visitor view of a user: sanitized account
	// fields, visible skills, showcased items and, when the user has a
	// connected GitHub account, a cached GitHub profile summary.
	PublicProfile(ctx context.Context, username string) (*types.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileUpdate) (*types.User, error)
	// Avatar returns the stored initials PNG, generating it on first access.
	Avatar(ctx context.Context, username string) ([]byte, error)
}

type userService struct {
	log      *logger.Logger
	users    repos.UserRepo
	skills   repos.SkillRepo
	showcase repos.ShowcaseRepo
	gh       github.Client
	avatars  AvatarService
	cache    *cache.Cache
}

func NewUserService(log *logger.Logger, users repos.UserRepo, skills repos.SkillRepo, showcase repos.ShowcaseRepo, gh github.Client, avatars AvatarService, cacheSvc *cache.Cache) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		users:    users,
		skills:   skills,
		showcase: showcase,
		gh:       gh,
		avatars:  avatars,
		cache:    cacheSvc,
	}
}

func (us *userService) PublicProfile(ctx context.Context, username string) (*types.PublicProfile, error) {
	user, err := us.users.GetByUsername(ctx, nil, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	skills, err := us.skills.ListVisibleByUser(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}
	items, err := us.showcase.ListByUser(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	// Copy so the public view can drop private fields without touching the row.
	public := *user
	public.Email = ""
	public.NotificationPrefs = nil

	profile := &types.PublicProfile{
		User:     &public,
		Skills:   skills,
		Showcase: items,
	}
	if user.GithubUsername != "" {
		profile.GitHub = us.githubProfile(ctx, user.GithubUsername)
	}
	return profile, nil
}

// githubProfile enriches a public profile from the GitHub API. Lookups are
// cached and failures degrade to a profile without the GitHub block.
func (us *userService) githubProfile(ctx context.Context, login string) *types.GitHubProfile {
	if us.gh == nil {
		return nil
	}

	key := "github:user:" + strings.ToLower(login)
	if cached, ok := us.cache.Get(key); ok {
		if p, ok := cached.(*types.GitHubProfile); ok {
			return p
		}
	}

	ghUser, err := us.gh.GetUser(ctx, login)
	if err != nil {
		us.log.Warn("GitHub profile lookup failed", "login", login, "error", err)
		return nil
	}
	p := &types.GitHubProfile{
		Login:       ghUser.Login,
		Name:        ghUser.Name,
		AvatarURL:   ghUser.AvatarURL,
		Bio:         ghUser.Bio,
		Followers:   ghUser.Followers,
		PublicRepos: ghUser.PublicRepos,
	}
	us.cache.Set(key, p, githubUserCacheTTL)
	return p
}

func (us *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileUpdate) (*types.User, error) {
	user, err := us.users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Headline != nil {
		fields["headline"] = strings.TrimSpace(*input.Headline)
	}
	if input.Bio != nil {
		fields["bio"] = strings.TrimSpace(*input.Bio)
	}
	if input.ExperienceYears != nil {
		if *input.ExperienceYears < 0 || *input.ExperienceYears > maxProfileYears {
			return nil, apperr.New(apperr.CodeValidation, "UserService.UpdateProfile", "experience_years out of range", nil)
		}
		fields["experience_years"] = *input.ExperienceYears
	}
	if input.EducationYears != nil {
		if *input.EducationYears < 0 || *input.EducationYears > maxProfileYears {
			return nil, apperr.New(apperr.CodeValidation, "UserService.UpdateProfile", "education_years out of range", nil)
		}
		fields["education_years"] = *input.EducationYears
	}
	if input.EmailFrequency != nil {
		if !input.EmailFrequency.Valid() {
			return nil, apperr.New(apperr.CodeValidation, "UserService.UpdateProfile", "invalid email_frequency", nil)
		}
		fields["email_frequency"] = *input.EmailFrequency
	}
	if input.NotificationPrefs != nil {
		fields["notification_prefs"] = input.NotificationPrefs
	}
	if input.Experience != nil {
		fields["experience"] = input.Experience
	}
	if input.Education != nil {
		fields["education"] = input.Education
	}
	if input.ProfileSkills != nil {
		fields["profile_skills"] = input.ProfileSkills
	}

	if len(fields) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "UserService.UpdateProfile", "no profile updates provided", nil)
	}

	// Name changes re-render the initials avatar unless GitHub supplies one.
	if (input.FirstName != nil || input.LastName != nil) && user.GithubUsername == "" {
		first, last := user.FirstName, user.LastName
		if input.FirstName != nil {
			first = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			last = strings.TrimSpace(*input.LastName)
		}
		png, err := us.avatars.GeneratePNG(first, last, user.Username)
		if err != nil {
			return nil, err
		}
		fields["avatar_png"] = png
	}

	if err := us.users.UpdateFields(ctx, nil, userID, fields); err != nil {
		return nil, err
	}
	return us.users.GetByID(ctx, nil, userID)
}

func (us *userService) Avatar(ctx context.Context, username string) ([]byte, error) {
	user, err := us.users.GetByUsername(ctx, nil, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if len(user.AvatarPNG) == 0 {
		if err := us.avatars.EnsureUserAvatar(ctx, user); err != nil {
			return nil, err
		}
	}
	return user.AvatarPNG, nil
}
