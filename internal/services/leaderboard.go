package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/cache"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

const (
	leaderboardKey     = "leaderboard:global"
	optionsCacheKey    = "leaderboard:options"
	optionsCacheTTL    = 60 * time.Second
	optionsBodyLimit   = 1 << 20
	defaultBoardLimit  = 10
	maxBoardLimit      = 100
	optionsHTTPTimeout = 5 * time.Second
)

// LeaderboardService ranks users by their verified-skill profiles and proxies
// the upstream leaderboard options endpoint.
type LeaderboardService interface {
	LeaderboardRecorder
	// Options returns the upstream options JSON verbatim, cached for a minute.
	Options(ctx context.Context) ([]byte, error)
	// Top returns the highest-scored users, ranked from 1.
	Top(ctx context.Context, limit int) ([]types.LeaderboardEntry, error)
	// Standings returns the full board scored from SQL aggregates.
	Standings(ctx context.Context) ([]types.LeaderboardEntry, error)
	// Rebuild replaces the Redis board with fresh standings.
	Rebuild(ctx context.Context) (int, error)
}

type leaderboardService struct {
	log        *logger.Logger
	rdb        *goredis.Client
	board      repos.LeaderboardRepo
	cache      *cache.Cache
	httpClient *http.Client
	baseURL    string
}

func NewLeaderboardService(log *logger.Logger, rdb *goredis.Client, board repos.LeaderboardRepo, cacheStore *cache.Cache) LeaderboardService {
	base := strings.TrimRight(strings.TrimSpace(envutil.Str("API_BASE_URL", "http://localhost:3001")), "/")
	return &leaderboardService{
		log:        log.With("service", "LeaderboardService"),
		rdb:        rdb,
		board:      board,
		cache:      cacheStore,
		httpClient: &http.Client{Timeout: optionsHTTPTimeout},
		baseURL:    base,
	}
}

// leaderboardScore mixes signal strength with breadth: confidence carries half
// the weight, skill count and repository count are capped before weighting.
func leaderboardScore(avgConfidence float64, skillCount, repoCount int) int {
	skillTerm := math.Min(100, float64(skillCount)*5)
	repoTerm := math.Min(100, float64(repoCount)*10)
	return int(math.Round(0.5*avgConfidence + 0.2*skillTerm + 0.3*repoTerm))
}

func (s *leaderboardService) RecordAnalysis(ctx context.Context, username string, skills []*types.AIVerifiedSkill, repoCount int) {
	if s.rdb == nil {
		return
	}
	var sum float64
	for _, skill := range skills {
		sum += float64(skill.ConfidenceScore)
	}
	avg := 0.0
	if len(skills) > 0 {
		avg = sum / float64(len(skills))
	}
	score := leaderboardScore(avg, len(skills), repoCount)

	if err := s.rdb.ZAdd(ctx, leaderboardKey, goredis.Z{
		Score:  float64(score),
		Member: username,
	}).Err(); err != nil {
		s.log.Warn("leaderboard update failed", "username", username, "error", err.Error())
	}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultBoardLimit
	}
	if limit > maxBoardLimit {
		limit = maxBoardLimit
	}

	if s.rdb != nil {
		zs, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
		if err == nil {
			entries := make([]types.LeaderboardEntry, 0, len(zs))
			for i, z := range zs {
				username, _ := z.Member.(string)
				entries = append(entries, types.LeaderboardEntry{
					Rank:     i + 1,
					Username: username,
					Score:    int(math.Round(z.Score)),
				})
			}
			return entries, nil
		}
		s.log.Warn("leaderboard redis read failed, using SQL fallback", "error", err.Error())
	}
	return s.topFromSQL(ctx, limit)
}

func (s *leaderboardService) topFromSQL(ctx context.Context, limit int) ([]types.LeaderboardEntry, error) {
	entries, err := s.Standings(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *leaderboardService) Standings(ctx context.Context) ([]types.LeaderboardEntry, error) {
	aggregates, err := s.board.AggregateByUser(ctx, nil)
	if err != nil {
		return nil, err
	}

	entries := make([]types.LeaderboardEntry, 0, len(aggregates))
	for _, agg := range aggregates {
		entries = append(entries, types.LeaderboardEntry{
			Username: agg.Username,
			Score:    leaderboardScore(agg.AvgConfidence, agg.SkillCount, agg.RepoCount),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Rebuild exists for the rebuild-leaderboard command. The ZSET only accretes
// through RecordAnalysis, so after a Redis flush or migration the board would
// stay empty until every user reran an analysis. Deleting the key inside the
// pipeline also drops members whose accounts are gone.
func (s *leaderboardService) Rebuild(ctx context.Context) (int, error) {
	if s.rdb == nil {
		return 0, apperr.New(apperr.CodePreconditionFailed, "LeaderboardService.Rebuild", "redis is not configured", nil)
	}
	entries, err := s.Standings(ctx)
	if err != nil {
		return 0, err
	}

	members := make([]goredis.Z, 0, len(entries))
	for _, entry := range entries {
		members = append(members, goredis.Z{
			Score:  float64(entry.Score),
			Member: entry.Username,
		})
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, leaderboardKey)
		if len(members) > 0 {
			pipe.ZAdd(ctx, leaderboardKey, members...)
		}
		return nil
	})
	if err != nil {
		return 0, apperr.New(apperr.CodeExternalService, "LeaderboardService.Rebuild", "rewriting leaderboard in redis", err)
	}
	return len(members), nil
}

func (s *leaderboardService) Options(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(optionsCacheKey); ok {
			if raw, ok := v.([]byte); ok {
				return raw, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/leaderboard/options", nil)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, "LeaderboardService.Options", "building proxy request", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "LeaderboardService.Options", "leaderboard upstream unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, optionsBodyLimit))
	if err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "LeaderboardService.Options", "reading upstream response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.New(apperr.CodeExternalService, "LeaderboardService.Options",
			fmt.Sprintf("leaderboard upstream returned %d", resp.StatusCode), nil)
	}

	if s.cache != nil {
		s.cache.Set(optionsCacheKey, raw, optionsCacheTTL)
	}
	return raw, nil
}
