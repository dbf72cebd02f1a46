package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

type UserHandler struct {
	log   *logger.Logger
	users services.UserService
}

func NewUserHandler(log *logger.Logger, users services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), users: users}
}

// GetProfile handles GET /api/users/:username.
func (uh *UserHandler) GetProfile(c *gin.Context) {
	profile, err := uh.users.PublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, profile)
}

// UpdateMe handles PATCH /api/users/me. Absent fields stay untouched, which
// is why the request binds straight into the pointer-field update struct.
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	var input services.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid profile update payload")
		return
	}
	user, err := uh.users.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// Avatar handles GET /api/users/:username/avatar.
func (uh *UserHandler) Avatar(c *gin.Context) {
	png, err := uh.users.Avatar(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(200, "image/png", png)
}
