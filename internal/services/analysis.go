package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/0unveiled/backend/internal/analysis"
	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/clients/github"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/observability"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

// ErrAnalysisInProgress is returned when a run is requested for a user whose
// previous run has not finished yet.
var ErrAnalysisInProgress = apperr.New(apperr.CodeConflict, "AnalysisService.Run",
	"analysis already in progress for this user", nil)

// AnalysisService runs the full profile analysis pipeline for one user:
// fetch showcased repositories, analyze each one, aggregate the tech stack,
// generate insights, and replace the user's verified skill set.
type AnalysisService interface {
	// Run streams progress events through emit until the run reaches a
	// terminal state. A non-nil return means the run was rejected before
	// anything was emitted (unknown user, duplicate run); once streaming has
	// started every failure is delivered as an {error} event and Run returns
	// nil.
	Run(ctx context.Context, username string, emit func(types.ProgressEvent)) error
}

// LeaderboardRecorder receives completed runs so rankings stay warm without
// the analysis pipeline depending on the leaderboard service directly.
type LeaderboardRecorder interface {
	RecordAnalysis(ctx context.Context, username string, skills []*types.AIVerifiedSkill, repoCount int)
}

type analysisService struct {
	log           *logger.Logger
	users         repos.UserRepo
	showcase      repos.ShowcaseRepo
	skills        repos.SkillRepo
	notifications repos.NotificationRepo
	gh            github.Client
	fetcher       RepoFetcher
	notifier      AnalysisNotifier
	leaderboard   LeaderboardRecorder
	inflight      *inflightTable
}

func NewAnalysisService(
	log *logger.Logger,
	users repos.UserRepo,
	showcase repos.ShowcaseRepo,
	skills repos.SkillRepo,
	notifications repos.NotificationRepo,
	gh github.Client,
	fetcher RepoFetcher,
	notifier AnalysisNotifier,
	leaderboard LeaderboardRecorder,
) AnalysisService {
	return &analysisService{
		log:           log.With("service", "AnalysisService"),
		users:         users,
		showcase:      showcase,
		skills:        skills,
		notifications: notifications,
		gh:            gh,
		fetcher:       fetcher,
		notifier:      notifier,
		leaderboard:   leaderboard,
		inflight:      newInflightTable(),
	}
}

type repoRef struct {
	owner string
	name  string
}

func (s *analysisService) Run(ctx context.Context, username string, emit func(types.ProgressEvent)) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperr.New(apperr.CodeValidation, "AnalysisService.Run", "username is required", nil)
	}

	user, err := s.users.GetByUsername(ctx, nil, username)
	if err != nil {
		return err
	}

	key := "analyze:" + user.ID.String()
	if !s.inflight.tryAcquire(key) {
		return ErrAnalysisInProgress
	}
	defer s.inflight.release(key)
	started := time.Now()

	s.progress(user.ID, emit, types.ProgressEvent{Step: "Starting analysis...", Progress: 0})

	s.progress(user.ID, emit, types.ProgressEvent{Step: "Fetching user profile data...", Progress: 10})
	fresh, err := s.users.GetByID(ctx, nil, user.ID)
	if err != nil {
		s.fail(user, emit, err)
		return nil
	}
	user = fresh

	s.progress(user.ID, emit, types.ProgressEvent{Step: "Fetching GitHub repositories...", Progress: 20})
	items, err := s.showcase.ListByUserAndProvider(ctx, nil, user.ID, types.ProviderGitHub)
	if err != nil {
		s.fail(user, emit, err)
		return nil
	}

	refs := make([]repoRef, 0, len(items))
	for _, item := range items {
		owner, name, ok := github.ParseRepoURL(item.ExternalURL)
		if !ok {
			s.log.Warn("skipping showcased item with unusable repository URL",
				"item_id", item.ID, "url", item.ExternalURL)
			continue
		}
		refs = append(refs, repoRef{owner: owner, name: name})
	}

	agg := analysis.NewAggregator()
	var (
		results       []types.RepoResult
		totalStars    int
		sumQuality    float64
		sumComplexity float64
		sumSecurity   float64
	)

	total := len(refs)
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			s.fail(user, emit, err)
			return nil
		}

		seq := i + 1
		s.progress(user.ID, emit, types.ProgressEvent{
			Step:     fmt.Sprintf("Analyzing repository %d/%d: %s...", seq, total, ref.name),
			Progress: 20 + (60*seq)/total,
		})

		payload, err := s.analyzeOne(ctx, ref)
		if err != nil {
			s.log.Warn("repository analysis failed",
				"repo", ref.owner+"/"+ref.name, "error", err.Error())
			continue
		}

		agg.AddAll(analysis.RepoSignals(payload))
		results = append(results, types.RepoResult{
			Repository:    payload.Repository.Name,
			TotalLines:    payload.Metrics.TotalLines,
			Complexity:    payload.Metrics.Complexity,
			QualityScore:  payload.Quality.OverallScore,
			SecurityScore: payload.Security.SecurityScore,
		})
		totalStars += payload.Repository.Stars
		sumQuality += payload.Quality.OverallScore
		sumComplexity += payload.Metrics.Complexity
		sumSecurity += payload.Security.SecurityScore
	}

	s.progress(user.ID, emit, types.ProgressEvent{Step: "Aggregating tech stack...", Progress: 85})
	tech := agg.Result()

	stats := types.ProfileStats{
		TotalRepos:      len(results),
		TotalStars:      totalStars,
		LanguageCount:   len(tech.Languages),
		TotalSkills:     tech.TotalSkillsFound,
		CloudSkillCount: len(tech.Cloud),
		ExperienceYears: user.ExperienceYears,
		EducationYears:  user.EducationYears,
	}
	if n := len(results); n > 0 {
		stats.AvgQuality = sumQuality / float64(n)
		stats.AvgComplexity = sumComplexity / float64(n)
		stats.AvgSecurity = sumSecurity / float64(n)
	}

	profileOnly := total == 0
	result := &types.AnalysisResult{
		Username:             user.Username,
		AnalyzedAt:           time.Now().UTC(),
		ProfileOnly:          profileOnly,
		RepositoriesAnalyzed: len(results),
		Repositories:         results,
		TechStackAnalysis:    tech,
		Insights:             analysis.GenerateInsights(stats),
		Stats:                stats,
	}

	if !profileOnly {
		s.progress(user.ID, emit, types.ProgressEvent{Step: "Saving verified skills...", Progress: 92})
		rows := skillRows(user.ID, tech, result.AnalyzedAt)
		if err := s.skills.ReplaceForUser(ctx, nil, user.ID, rows); err != nil {
			s.fail(user, emit, err)
			return nil
		}
		s.notifier.SkillsUpdated(user.ID, len(rows))

		if s.leaderboard != nil {
			s.leaderboard.RecordAnalysis(ctx, user.Username, rows, len(results))
		}
		s.notifyCompletion(ctx, user, tech.TotalSkillsFound)
	}

	s.safeEmit(emit, types.ProgressEvent{Step: "Analysis complete!", Progress: 100, Result: result})
	s.notifier.AnalysisComplete(user.ID, result)
	observability.AnalysisRuns.WithLabelValues("completed").Inc()
	observability.AnalysisDuration.Observe(time.Since(started).Seconds())
	return nil
}

func (s *analysisService) analyzeOne(ctx context.Context, ref repoRef) (*types.RepoAnalysisV1, error) {
	meta, err := s.gh.GetRepository(ctx, ref.owner, ref.name)
	if err != nil {
		return nil, err
	}
	files, err := s.fetcher.FetchRepository(ctx, ref.owner, ref.name)
	if err != nil {
		return nil, err
	}
	return analysis.AnalyzeRepository(*meta, files), nil
}

// progress mirrors each stream frame onto the user's event channel so
// dashboard widgets follow runs they did not start.
func (s *analysisService) progress(userID uuid.UUID, emit func(types.ProgressEvent), event types.ProgressEvent) {
	s.safeEmit(emit, event)
	s.notifier.AnalysisProgress(userID, event)
}

// safeEmit shields the run from emit panics; a client that disconnects
// mid-stream must not abort the analysis.
func (s *analysisService) safeEmit(emit func(types.ProgressEvent), event types.ProgressEvent) {
	if emit == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("progress emit panicked", "recover", r)
		}
	}()
	emit(event)
}

func (s *analysisService) fail(user *types.User, emit func(types.ProgressEvent), err error) {
	msg := errorMessage(err)
	s.log.Error("analysis run failed", "user_id", user.ID, "error", err.Error())
	observability.AnalysisRuns.WithLabelValues("failed").Inc()
	s.safeEmit(emit, types.ProgressEvent{Error: msg})
	s.notifier.AnalysisFailed(user.ID, msg)
}

func (s *analysisService) notifyCompletion(ctx context.Context, user *types.User, skillCount int) {
	notification := &types.Notification{
		UserID:  user.ID,
		Type:    types.NotificationAnalysis,
		Content: fmt.Sprintf("GitHub analysis complete: %d verified skills on your profile", skillCount),
		Link:    "/profile/" + user.Username,
	}
	if err := s.notifications.Create(ctx, nil, notification); err != nil {
		s.log.Warn("completion notification not saved", "user_id", user.ID, "error", err.Error())
		return
	}
	s.notifier.NotificationCreated(user.ID, notification)
}

// skillRows flattens the six aggregation buckets into persistence rows.
func skillRows(userID uuid.UUID, tech types.TechStackAnalysis, analyzedAt time.Time) []*types.AIVerifiedSkill {
	buckets := []struct {
		category string
		skills   []types.NamedSkill
	}{
		{"languages", tech.Languages},
		{"frameworks", tech.Frameworks},
		{"libraries", tech.Libraries},
		{"tools", tech.Tools},
		{"databases", tech.Databases},
		{"cloud", tech.Cloud},
	}

	rows := make([]*types.AIVerifiedSkill, 0, tech.TotalSkillsFound)
	for _, bucket := range buckets {
		for _, skill := range bucket.skills {
			source, _ := json.Marshal(types.SkillSource{
				Category:        bucket.category,
				DetectionMethod: detectionMethod(skill.Confidence),
				AnalyzedAt:      analyzedAt,
			})
			rows = append(rows, &types.AIVerifiedSkill{
				UserID:          userID,
				SkillName:       skill.Name,
				SkillType:       skill.Type,
				ConfidenceScore: skill.Confidence,
				RepositoryCount: skill.Count,
				LinesOfCode:     skill.LinesOfCode,
				SourceAnalysis:  datatypes.JSON(source),
				IsVisible:       true,
			})
		}
	}
	return rows
}

// detectionMethod names the strongest signal tier that can produce the given
// confidence. Tiers are fixed: 90 file classification, 85 dependency
// manifests, 80 config patterns, 75 keyword scans.
func detectionMethod(confidence int) string {
	switch {
	case confidence >= 90:
		return "file-classification"
	case confidence >= 85:
		return "dependency-manifest"
	case confidence >= 80:
		return "config-pattern"
	default:
		return "keyword-scan"
	}
}

func errorMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}

// inflightTable tracks running analyses so duplicate requests are rejected
// instead of coalesced; callers need the conflict surfaced.
type inflightTable struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightTable() *inflightTable {
	return &inflightTable{keys: make(map[string]struct{})}
}

func (t *inflightTable) tryAcquire(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.keys[key]; busy {
		return false
	}
	t.keys[key] = struct{}{}
	return true
}

func (t *inflightTable) release(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.keys, key)
}
