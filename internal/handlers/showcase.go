package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

type ShowcaseHandler struct {
	log      *logger.Logger
	showcase services.ShowcaseService
}

func NewShowcaseHandler(log *logger.Logger, showcase services.ShowcaseService) *ShowcaseHandler {
	return &ShowcaseHandler{log: log.With("handler", "ShowcaseHandler"), showcase: showcase}
}

type showcaseUpdateRequest struct {
	services.ShowcaseUpdate
	IsPinned *bool `json:"is_pinned"`
}

// List handles GET /api/showcase.
func (sh *ShowcaseHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	items, err := sh.showcase.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

// Create handles POST /api/showcase.
func (sh *ShowcaseHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	var input services.ShowcaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid showcase payload")
		return
	}
	item, err := sh.showcase.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item)
}

// Update handles PATCH /api/showcase/:id. A pinned flag in the body toggles
// pinning alongside any field edits.
func (sh *ShowcaseHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	itemID, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req showcaseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid showcase update payload")
		return
	}
	if req.IsPinned != nil {
		if err := sh.showcase.SetPinned(c.Request.Context(), userID, itemID, *req.IsPinned); err != nil {
			respondError(c, err)
			return
		}
	}
	item, err := sh.showcase.Update(c.Request.Context(), userID, itemID, req.ShowcaseUpdate)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

// Delete handles DELETE /api/showcase/:id.
func (sh *ShowcaseHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	itemID, err := parseIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := sh.showcase.Delete(c.Request.Context(), userID, itemID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": itemID})
}

// ImportGitHub handles POST /api/showcase/import/github.
func (sh *ShowcaseHandler) ImportGitHub(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	items, err := sh.showcase.ImportFromGitHub(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	sh.log.Info("GitHub import finished", "user_id", userID, "imported", len(items))
	respondCreated(c, gin.H{"imported": len(items), "items": items})
}

func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.CodeValidation, "handlers.parseIDParam",
			"id must be a valid UUID", err)
	}
	return id, nil
}
