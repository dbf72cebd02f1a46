package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

type SkillHandler struct {
	log    *logger.Logger
	skills services.SkillService
}

func NewSkillHandler(log *logger.Logger, skills services.SkillService) *SkillHandler {
	return &SkillHandler{log: log.With("handler", "SkillHandler"), skills: skills}
}

// ListForUsername handles GET /api/skills/:username. Only skills the owner
// left visible are returned.
func (sh *SkillHandler) ListForUsername(c *gin.Context) {
	skills, err := sh.skills.VisibleForUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, skills)
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

// SetVisibility handles PATCH /api/skills/:id/visibility.
func (sh *SkillHandler) SetVisibility(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	skillID, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Visible == nil {
		respondValidation(c, "body must carry a boolean visible field")
		return
	}
	if err := sh.skills.SetVisibility(c.Request.Context(), userID, skillID, *req.Visible); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"id": skillID, "visible": *req.Visible})
}
