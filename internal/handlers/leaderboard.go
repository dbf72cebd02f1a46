package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

type LeaderboardHandler struct {
	log   *logger.Logger
	board services.LeaderboardService
}

func NewLeaderboardHandler(log *logger.Logger, board services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{log: log.With("handler", "LeaderboardHandler"), board: board}
}

// Options handles GET /api/leaderboard/options. The upstream payload is
// relayed byte for byte, so this skips the envelope.
func (lh *LeaderboardHandler) Options(c *gin.Context) {
	payload, err := lh.board.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(200, "application/json", payload)
}

// Top handles GET /api/leaderboard?limit=.
func (lh *LeaderboardHandler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := lh.board.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, entries)
}
