package repos

import (
	"context"

	"gorm.io/gorm"

	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type LeaderboardRepo interface {
	// AggregateByUser returns ranking inputs for every user with at least one
	// verified skill. Scoring and ordering happen in the service.
	AggregateByUser(ctx context.Context, tx *gorm.DB) ([]types.LeaderboardAggregate, error)
}

type leaderboardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeaderboardRepo(db *gorm.DB, baseLog *logger.Logger) LeaderboardRepo {
	repoLog := baseLog.With("repo", "LeaderboardRepo")
	return &leaderboardRepo{db: db, log: repoLog}
}

const leaderboardAggregateQuery = `
SELECT u.username AS username,
       COALESCE((SELECT AVG(s.confidence_score) FROM ai_verified_skill s WHERE s.user_id = u.id), 0) AS avg_confidence,
       (SELECT COUNT(*) FROM ai_verified_skill s WHERE s.user_id = u.id) AS skill_count,
       (SELECT COUNT(*) FROM showcased_item i WHERE i.user_id = u.id AND i.provider = ?) AS repo_count
FROM "user" u
WHERE u.deleted_at IS NULL
  AND EXISTS (SELECT 1 FROM ai_verified_skill s WHERE s.user_id = u.id)
`

func (lr *leaderboardRepo) AggregateByUser(ctx context.Context, tx *gorm.DB) ([]types.LeaderboardAggregate, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}

	var rows []types.LeaderboardAggregate
	err := transaction.WithContext(ctx).
		Raw(leaderboardAggregateQuery, string(types.ProviderGitHub)).
		Scan(&rows).Error
	if err != nil {
		return nil, MapError("LeaderboardRepo.AggregateByUser", err)
	}
	return rows, nil
}
