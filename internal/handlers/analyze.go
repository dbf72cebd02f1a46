package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/apperr"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

// AnalyzeHandler streams profile analysis runs over SSE.
type AnalyzeHandler struct {
	log      *logger.Logger
	analysis services.AnalysisService
}

func NewAnalyzeHandler(log *logger.Logger, analysis services.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{log: log.With("handler", "AnalyzeHandler"), analysis: analysis}
}

type analyzeRequest struct {
	Username string `json:"username"`
}

// AnalyzeProfile handles POST /api/analyze/profile. Rejections that happen
// before any work starts (unknown user, run already in progress) come back as
// plain JSON errors; once the pipeline emits its first event the response is
// an SSE stream and every later failure arrives as an {error} frame.
func (ah *AnalyzeHandler) AnalyzeProfile(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "request body must be JSON with a username field")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		respondError(c, apperr.New(apperr.CodeInternal, "AnalyzeHandler.AnalyzeProfile",
			"response writer does not support streaming", nil))
		return
	}

	var (
		mu      sync.Mutex
		started bool
	)
	emit := func(event types.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if !started {
			header := c.Writer.Header()
			header.Set("Content-Type", "text/event-stream")
			header.Set("Cache-Control", "no-cache")
			header.Set("Connection", "keep-alive")
			header.Set("X-Accel-Buffering", "no")
			c.Writer.WriteHeader(http.StatusOK)
			started = true
		}
		payload, err := json.Marshal(event)
		if err != nil {
			ah.log.Warn("progress event not serializable", "error", err.Error())
			return
		}
		if _, err := c.Writer.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
			// Disconnected client; the run keeps going and finishes server-side.
			return
		}
		flusher.Flush()
	}

	if err := ah.analysis.Run(c.Request.Context(), req.Username, emit); err != nil {
		respondError(c, err)
	}
}
