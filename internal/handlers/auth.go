package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/middleware"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/services"
)

type AuthHandler struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthHandler(log *logger.Logger, auth services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), auth: auth}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid registration payload")
		return
	}
	user, err := ah.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, user)
}

// Login handles POST /api/auth/login.
func (ah *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "invalid login payload")
		return
	}
	token, user, err := ah.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"token": token, "user": user})
}

// GitHubConnect handles GET /api/auth/github/connect. It hands back the
// provider URL instead of redirecting so SPA clients can open it themselves.
func (ah *AuthHandler) GitHubConnect(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondUnauthorized(c)
		return
	}
	url, err := ah.auth.GitHubAuthURL(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"url": url})
}

// GitHubCallback handles GET /api/auth/github/callback.
func (ah *AuthHandler) GitHubCallback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	user, err := ah.auth.CompleteGitHubConnect(c.Request.Context(), state, code)
	if err != nil {
		respondError(c, err)
		return
	}
	ah.log.Info("GitHub account connected", "user_id", user.ID, "github_username", user.GithubUsername)
	respondOK(c, user)
}
