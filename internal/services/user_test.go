package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/cache"
	"github.com/0unveiled/backend/internal/clients/github"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type userEnv struct {
	users  *fakeUserRepo
	skills *fakeSkillRepo
	items  *fakeShowcaseRepo
	gh     *fakeGitHubClient
	svc    UserService
	user   *types.User
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()

	env := &userEnv{
		users:  &fakeUserRepo{},
		skills: &fakeSkillRepo{},
		items:  &fakeShowcaseRepo{},
		gh:     &fakeGitHubClient{users: map[string]*github.User{}},
	}
	env.user = &types.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	env.users.add(env.user)

	avatars, err := NewAvatarService(logger.NewNop(), env.users)
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	env.svc = NewUserService(logger.NewNop(), env.users, env.skills, env.items, env.gh, avatars, cache.New(nil))
	return env
}

func TestPublicProfileAssemblesView(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()

	env.user.GithubUsername = "octo"
	env.gh.users["octo"] = &github.User{
		Login:       "octo",
		Name:        "Octo Cat",
		AvatarURL:   "https://avatars.githubusercontent.com/u/1",
		Followers:   10,
		PublicRepos: 5,
	}
	env.skills.replaced = []*types.AIVerifiedSkill{
		{ID: uuid.New(), UserID: env.user.ID, SkillName: "Go", IsVisible: true},
		{ID: uuid.New(), UserID: env.user.ID, SkillName: "Fortran", IsVisible: false},
	}
	env.items.items = []*types.ShowcasedItem{
		{ID: uuid.New(), UserID: env.user.ID, Provider: types.ProviderGitHub, ExternalURL: "https://github.com/octo/x", Title: "x"},
	}

	profile, err := env.svc.PublicProfile(ctx, "ada")
	if err != nil {
		t.Fatalf("PublicProfile: %v", err)
	}
	if profile.User.Email != "" {
		t.Fatalf("email leaked on public profile: %q", profile.User.Email)
	}
	if env.user.Email != "ada@example.com" {
		t.Fatal("stored user mutated by public view")
	}
	if len(profile.Skills) != 1 || profile.Skills[0].SkillName != "Go" {
		t.Fatalf("skills = %+v, want only visible Go", profile.Skills)
	}
	if len(profile.Showcase) != 1 {
		t.Fatalf("showcase length = %d, want 1", len(profile.Showcase))
	}
	if profile.GitHub == nil || profile.GitHub.Login != "octo" || profile.GitHub.Followers != 10 {
		t.Fatalf("github block = %+v", profile.GitHub)
	}

	// Second lookup is served from cache.
	if _, err := env.svc.PublicProfile(ctx, "ada"); err != nil {
		t.Fatalf("second PublicProfile: %v", err)
	}
	if env.gh.userCalls != 1 {
		t.Fatalf("GetUser calls = %d, want 1", env.gh.userCalls)
	}
}

func TestPublicProfileSkipsGitHubWhenNotConnected(t *testing.T) {
	env := newUserEnv(t)

	profile, err := env.svc.PublicProfile(context.Background(), "ada")
	if err != nil {
		t.Fatalf("PublicProfile: %v", err)
	}
	if profile.GitHub != nil {
		t.Fatalf("github block = %+v, want nil", profile.GitHub)
	}
	if env.gh.userCalls != 0 {
		t.Fatalf("GetUser calls = %d, want 0", env.gh.userCalls)
	}
}

func TestPublicProfileSurvivesGitHubOutage(t *testing.T) {
	env := newUserEnv(t)

	env.user.GithubUsername = "gone"
	profile, err := env.svc.PublicProfile(context.Background(), "ada")
	if err != nil {
		t.Fatalf("PublicProfile: %v", err)
	}
	if profile.GitHub != nil {
		t.Fatalf("github block = %+v, want nil on lookup failure", profile.GitHub)
	}
}

func TestUpdateProfileAppliesFields(t *testing.T) {
	env := newUserEnv(t)

	headline := "  Engine builder  "
	years := 12
	freq := types.EmailFrequencyDaily
	updated, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileUpdate{
		Headline:        &headline,
		ExperienceYears: &years,
		EmailFrequency:  &freq,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Headline != "Engine builder" {
		t.Fatalf("headline = %q", updated.Headline)
	}
	if updated.ExperienceYears != 12 {
		t.Fatalf("experience_years = %d", updated.ExperienceYears)
	}
	if updated.EmailFrequency != types.EmailFrequencyDaily {
		t.Fatalf("email_frequency = %q", updated.EmailFrequency)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()

	if _, err := env.svc.UpdateProfile(ctx, env.user.ID, ProfileUpdate{}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("empty update err = %v, want validation", err)
	}

	bad := types.EmailFrequency("HOURLY")
	if _, err := env.svc.UpdateProfile(ctx, env.user.ID, ProfileUpdate{EmailFrequency: &bad}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("bad frequency err = %v, want validation", err)
	}

	years := 200
	if _, err := env.svc.UpdateProfile(ctx, env.user.ID, ProfileUpdate{ExperienceYears: &years}); !apperr.IsCode(err, apperr.CodeValidation) {
		t.Fatalf("out-of-range years err = %v, want validation", err)
	}
}

func TestUpdateProfileRegeneratesInitialsAvatar(t *testing.T) {
	env := newUserEnv(t)

	last := "Byron"
	if _, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileUpdate{LastName: &last}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if _, ok := env.users.fields["avatar_png"]; !ok {
		t.Fatal("name change did not regenerate the avatar")
	}
	if len(env.user.AvatarPNG) == 0 {
		t.Fatal("avatar not persisted")
	}
}

func TestUpdateProfileKeepsGitHubAvatar(t *testing.T) {
	env := newUserEnv(t)

	env.user.GithubUsername = "octo"
	last := "Byron"
	if _, err := env.svc.UpdateProfile(context.Background(), env.user.ID, ProfileUpdate{LastName: &last}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if _, ok := env.users.fields["avatar_png"]; ok {
		t.Fatal("GitHub-connected user got an initials avatar")
	}
}

func TestAvatarGeneratedOnFirstAccess(t *testing.T) {
	env := newUserEnv(t)
	ctx := context.Background()

	first, err := env.svc.Avatar(ctx, "ada")
	if err != nil {
		t.Fatalf("Avatar: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("empty avatar")
	}
	if env.users.updateCalls != 1 {
		t.Fatalf("updateCalls = %d, want 1", env.users.updateCalls)
	}

	second, err := env.svc.Avatar(ctx, "ada")
	if err != nil {
		t.Fatalf("second Avatar: %v", err)
	}
	if env.users.updateCalls != 1 {
		t.Fatalf("updateCalls = %d after cached read, want 1", env.users.updateCalls)
	}
	if len(second) != len(first) {
		t.Fatalf("avatar changed between reads: %d vs %d bytes", len(first), len(second))
	}
}

func TestAvatarUnknownUser(t *testing.T) {
	env := newUserEnv(t)

	if _, err := env.svc.Avatar(context.Background(), "nobody"); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}
