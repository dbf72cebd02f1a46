package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/0unveiled/backend/internal/analysis"
	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/clients/github"
	types "github.com/0unveiled/backend/internal/domain"
)

// Shared fakes for service tests. Each records just enough calls for the
// assertions that use it.

type fakeUserRepo struct {
	mu          sync.Mutex
	users       []*types.User
	fields      map[string]any
	updateCalls int
}

func (f *fakeUserRepo) add(u *types.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, u)
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *types.User) (*types.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.add(user)
	return user, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "UserRepo.GetByID", "user not found", nil)
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "UserRepo.GetByUsername", "user not found", nil)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "UserRepo.GetByEmail", "user not found", nil)
}

func (f *fakeUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (f *fakeUserRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	_, err := f.GetByUsername(ctx, tx, username)
	return err == nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *gorm.DB, _ *types.User) error { return nil }

func (f *fakeUserRepo) UpdateFields(_ context.Context, _ *gorm.DB, userID uuid.UUID, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != userID {
			continue
		}
		f.fields = fields
		f.updateCalls++
		if v, ok := fields["first_name"].(string); ok {
			u.FirstName = v
		}
		if v, ok := fields["last_name"].(string); ok {
			u.LastName = v
		}
		if v, ok := fields["headline"].(string); ok {
			u.Headline = v
		}
		if v, ok := fields["bio"].(string); ok {
			u.Bio = v
		}
		if v, ok := fields["experience_years"].(int); ok {
			u.ExperienceYears = v
		}
		if v, ok := fields["education_years"].(int); ok {
			u.EducationYears = v
		}
		if v, ok := fields["email_frequency"].(types.EmailFrequency); ok {
			u.EmailFrequency = v
		}
		if v, ok := fields["avatar_png"].([]byte); ok {
			u.AvatarPNG = v
		}
		if v, ok := fields["avatar_url"].(string); ok {
			u.AvatarURL = v
		}
		if v, ok := fields["github_username"].(string); ok {
			u.GithubUsername = v
		}
		if v, ok := fields["github_access_token"].(string); ok {
			u.GithubAccessToken = v
		}
		return nil
	}
	return apperr.New(apperr.CodeNotFound, "UserRepo.UpdateFields", "user not found", nil)
}

func (f *fakeUserRepo) ListByEmailFrequency(_ context.Context, _ *gorm.DB, freq types.EmailFrequency) ([]*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.User
	for _, u := range f.users {
		if u.EmailFrequency == freq {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeShowcaseRepo struct {
	mu    sync.Mutex
	items []*types.ShowcasedItem
	err   error
}

func (f *fakeShowcaseRepo) Create(_ context.Context, _ *gorm.DB, item *types.ShowcasedItem) (*types.ShowcasedItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeShowcaseRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.ShowcasedItem) ([]*types.ShowcasedItem, error) {
	for _, item := range items {
		if _, err := f.Create(ctx, tx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (f *fakeShowcaseRepo) GetByID(_ context.Context, _ *gorm.DB, itemID uuid.UUID) (*types.ShowcasedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "ShowcaseRepo.GetByID", "showcased item not found", nil)
}

func (f *fakeShowcaseRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.ShowcasedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.ShowcasedItem
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeShowcaseRepo) ListByUserAndProvider(_ context.Context, _ *gorm.DB, userID uuid.UUID, provider types.ShowcaseProvider) ([]*types.ShowcasedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ShowcasedItem
	for _, item := range f.items {
		if item.UserID == userID && item.Provider == provider {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeShowcaseRepo) Update(_ context.Context, _ *gorm.DB, _ *types.ShowcasedItem) error {
	return nil
}

func (f *fakeShowcaseRepo) Delete(_ context.Context, _ *gorm.DB, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.items {
		if item.ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "ShowcaseRepo.Delete", "showcased item not found", nil)
}

func (f *fakeShowcaseRepo) SetPinned(_ context.Context, _ *gorm.DB, itemID uuid.UUID, pinned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == itemID {
			item.IsPinned = pinned
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "ShowcaseRepo.SetPinned", "showcased item not found", nil)
}

func (f *fakeShowcaseRepo) URLExistsForUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.UserID == userID && item.ExternalURL == url {
			return true, nil
		}
	}
	return false, nil
}

type fakeSkillRepo struct {
	mu           sync.Mutex
	replaceCalls int
	replaced     []*types.AIVerifiedSkill
	replaceErr   error
	visCalls     int
	lastVisible  bool
}

func (f *fakeSkillRepo) ReplaceForUser(_ context.Context, _ *gorm.DB, _ uuid.UUID, skills []*types.AIVerifiedSkill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceCalls++
	f.replaced = skills
	return nil
}

func (f *fakeSkillRepo) GetByID(_ context.Context, _ *gorm.DB, skillID uuid.UUID) (*types.AIVerifiedSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.replaced {
		if s.ID == skillID {
			return s, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "SkillRepo.GetByID", "skill not found", nil)
}

func (f *fakeSkillRepo) ListByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.AIVerifiedSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.replaced, nil
}

func (f *fakeSkillRepo) ListVisibleByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.AIVerifiedSkill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.AIVerifiedSkill
	for _, s := range f.replaced {
		if s.IsVisible {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSkillRepo) SetVisibility(_ context.Context, _ *gorm.DB, skillID uuid.UUID, visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visCalls++
	f.lastVisible = visible
	for _, s := range f.replaced {
		if s.ID == skillID {
			s.IsVisible = visible
		}
	}
	return nil
}

func (f *fakeSkillRepo) CountByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.replaced)), nil
}

type fakeNotificationRepo struct {
	mu         sync.Mutex
	created    []*types.Notification
	lastLimit  int
	lastOffset int
}

func (f *fakeNotificationRepo) Create(_ context.Context, _ *gorm.DB, notification *types.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, apperr.New(apperr.CodeNotFound, "NotificationRepo.GetByID", "notification not found", nil)
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, limit, offset int) ([]*types.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	f.lastOffset = offset
	var out []*types.Notification
	for _, n := range f.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) ListUnreadSince(_ context.Context, _ *gorm.DB, userID uuid.UUID, cutoff time.Time) ([]*types.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Notification
	for _, n := range f.created {
		if n.UserID == userID && !n.IsRead && n.CreatedAt.After(cutoff) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, _ *gorm.DB, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _ *gorm.DB, id uuid.UUID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperr.New(apperr.CodeNotFound, "NotificationRepo.MarkRead", "notification not found", nil)
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, _ *gorm.DB, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.created {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type fakeGitHubClient struct {
	mu        sync.Mutex
	repos     map[string]*types.RepositoryData
	repoErrs  map[string]error
	users     map[string]*github.User
	listed    map[string][]types.RepositoryData
	userCalls int
}

func (f *fakeGitHubClient) IsConfigured() bool { return true }

func (f *fakeGitHubClient) GetUser(_ context.Context, username string) (*github.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, apperr.New(apperr.CodeNotFound, "GitHubClient.GetUser", "github resource not found", nil)
}

func (f *fakeGitHubClient) GetRepository(_ context.Context, owner, repo string) (*types.RepositoryData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := owner + "/" + repo
	if err, ok := f.repoErrs[key]; ok {
		return nil, err
	}
	if data, ok := f.repos[key]; ok {
		return data, nil
	}
	return nil, apperr.New(apperr.CodeNotFound, "GitHubClient.GetRepository", "github resource not found", nil)
}

func (f *fakeGitHubClient) ListUserRepos(_ context.Context, username string) ([]types.RepositoryData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed[username], nil
}

func (f *fakeGitHubClient) ListContents(_ context.Context, _, _, _ string) ([]github.ContentEntry, error) {
	return nil, nil
}

func (f *fakeGitHubClient) GetFileContent(_ context.Context, _, _, _ string) (string, error) {
	return "", nil
}

func (f *fakeGitHubClient) RateLimit(_ context.Context) (*github.RateLimitStatus, error) {
	return &github.RateLimitStatus{}, nil
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	files   map[string][]analysis.SourceFile
	errs    map[string]error
	block   chan struct{} // when set, FetchRepository waits until closed
	entered chan struct{} // closed on the first call
}

func (f *fakeFetcher) FetchRepository(_ context.Context, owner, repo string) ([]analysis.SourceFile, error) {
	f.mu.Lock()
	f.calls++
	entered := f.entered
	f.entered = nil
	block := f.block
	key := owner + "/" + repo
	files := f.files[key]
	err := f.errs[key]
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	return files, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recorderNotifier counts notifier calls instead of touching a hub.
type recorderNotifier struct {
	mu            sync.Mutex
	progressCalls int
	completeCalls int
	failedCalls   int
	failedMsg     string
	skillsUpdated []int
	notifCreated  int
}

func (r *recorderNotifier) AnalysisProgress(_ uuid.UUID, _ types.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progressCalls++
}

func (r *recorderNotifier) AnalysisComplete(_ uuid.UUID, _ *types.AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeCalls++
}

func (r *recorderNotifier) AnalysisFailed(_ uuid.UUID, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedCalls++
	r.failedMsg = message
}

func (r *recorderNotifier) SkillsUpdated(_ uuid.UUID, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skillsUpdated = append(r.skillsUpdated, count)
}

func (r *recorderNotifier) NotificationCreated(_ uuid.UUID, _ *types.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifCreated++
}

type fakeLeaderboard struct {
	mu        sync.Mutex
	calls     int
	username  string
	repoCount int
}

func (f *fakeLeaderboard) RecordAnalysis(_ context.Context, username string, _ []*types.AIVerifiedSkill, repoCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.username = username
	f.repoCount = repoCount
}
