package domain

// LeaderboardAggregate is one user's raw ranking inputs, read straight from
// SQL when Redis is unavailable.
type LeaderboardAggregate struct {
	Username      string  `json:"username"`
	AvgConfidence float64 `json:"avg_confidence"`
	SkillCount    int     `json:"skill_count"`
	RepoCount     int     `json:"repo_count"`
}

// LeaderboardEntry is one ranked row of the public leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}
