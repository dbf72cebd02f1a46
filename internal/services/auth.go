package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/cache"
	"github.com/0unveiled/backend/internal/clients/github"
	types "github.com/0unveiled/backend/internal/domain"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/logger"
	"github.com/0unveiled/backend/internal/repos"
)

const (
	oauthStateKeyPrefix = "oauth:state:"
	oauthStateTTL       = 10 * time.Minute
)

var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{2,38}$`)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string
	// GitHubAPIURL and GitHubEndpoint exist so tests can point the OAuth flow
	// at a local server. Zero values mean the real GitHub endpoints.
	GitHubAPIURL   string
	GitHubEndpoint oauth2.Endpoint
}

func AuthConfigFromEnv() AuthConfig {
	return AuthConfig{
		JWTSecret:          os.Getenv("AUTH_JWT_SECRET"),
		TokenTTL:           envutil.Dur("AUTH_TOKEN_TTL", 24*time.Hour),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubRedirectURL:  envutil.Str("GITHUB_REDIRECT_URL", ""),
	}
}

type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, error)
	// Login returns a signed JWT (HS256, sub = user ID) and the user.
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	// ParseToken validates a JWT and returns the user ID it was issued for.
	ParseToken(tokenString string) (uuid.UUID, error)
	// GitHubAuthURL starts the OAuth connect flow for an authenticated user.
	// The returned URL carries a one-time state bound to the user.
	GitHubAuthURL(userID uuid.UUID) (string, error)
	// CompleteGitHubConnect exchanges the OAuth callback code and stores the
	// GitHub login and access token on the user the state was issued for.
	CompleteGitHubConnect(ctx context.Context, state, code string) (*types.User, error)
}

type authService struct {
	log     *logger.Logger
	users   repos.UserRepo
	avatars AvatarService
	cache   *cache.Cache
	cfg     AuthConfig
	oauth   *oauth2.Config
}

func NewAuthService(log *logger.Logger, users repos.UserRepo, avatars AvatarService, cacheSvc *cache.Cache, cfg AuthConfig) (AuthService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if strings.TrimSpace(cfg.GitHubAPIURL) == "" {
		cfg.GitHubAPIURL = "https://api.github.com"
	}
	cfg.GitHubAPIURL = strings.TrimRight(cfg.GitHubAPIURL, "/")

	endpoint := cfg.GitHubEndpoint
	if endpoint == (oauth2.Endpoint{}) {
		endpoint = oauthgithub.Endpoint
	}

	return &authService{
		log:     log.With("service", "AuthService"),
		users:   users,
		avatars: avatars,
		cache:   cacheSvc,
		cfg:     cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.GitHubRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
		},
	}, nil
}

func (as *authService) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	const op = "AuthService.Register"

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.ToLower(strings.TrimSpace(input.Username))

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(apperr.CodeValidation, op, "invalid email address", nil)
	}
	if !usernameRe.MatchString(username) {
		return nil, apperr.New(apperr.CodeValidation, op,
			"username must be 3-39 chars: lowercase letters, digits, - or _", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperr.New(apperr.CodeValidation, op, "password must be at least 8 characters", nil)
	}
	if len(input.Password) > 72 {
		return nil, apperr.New(apperr.CodeValidation, op, "password must be at most 72 characters", nil)
	}

	if exists, err := as.users.EmailExists(ctx, nil, email); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.New(apperr.CodeConflict, op, "email already registered", nil)
	}
	if exists, err := as.users.UsernameExists(ctx, nil, username); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.New(apperr.CodeConflict, op, "username already taken", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.New(apperr.CodeInternal, op, "hashing password", err)
	}

	user := &types.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		AvatarURL:    "/api/users/" + username + "/avatar",
	}
	created, err := as.users.Create(ctx, nil, user)
	if err != nil {
		return nil, err
	}

	// Avatar render failure should not roll back a registration.
	if err := as.avatars.EnsureUserAvatar(ctx, created); err != nil {
		as.log.Warn("initials avatar generation failed", "user_id", created.ID, "error", err)
	}

	as.log.Info("user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	const op = "AuthService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := as.users.GetByEmail(ctx, nil, email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return "", nil, apperr.New(apperr.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.New(apperr.CodeUnauthorized, op, "invalid credentials", nil)
	}

	token, err := as.issueToken(user.ID)
	if err != nil {
		return "", nil, apperr.New(apperr.CodeInternal, op, "signing token", err)
	}
	return token, user, nil
}

func (as *authService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.cfg.JWTSecret))
}

func (as *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	const op = "AuthService.ParseToken"

	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, apperr.New(apperr.CodeUnauthorized, op, "invalid or expired token", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, apperr.New(apperr.CodeUnauthorized, op, "invalid or expired token", nil)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.CodeUnauthorized, op, "invalid subject in token", err)
	}
	return userID, nil
}

func (as *authService) GitHubAuthURL(userID uuid.UUID) (string, error) {
	const op = "AuthService.GitHubAuthURL"

	if as.oauth.ClientID == "" || as.oauth.ClientSecret == "" {
		return "", apperr.New(apperr.CodePreconditionFailed, op, "GitHub OAuth is not configured", nil)
	}
	state := uuid.NewString()
	as.cache.Set(oauthStateKeyPrefix+state, userID, oauthStateTTL)
	return as.oauth.AuthCodeURL(state), nil
}

func (as *authService) CompleteGitHubConnect(ctx context.Context, state, code string) (*types.User, error) {
	const op = "AuthService.CompleteGitHubConnect"

	if state == "" || code == "" {
		return nil, apperr.New(apperr.CodeValidation, op, "state and code are required", nil)
	}
	cached, ok := as.cache.Get(oauthStateKeyPrefix + state)
	if !ok {
		return nil, apperr.New(apperr.CodeUnauthorized, op, "unknown or expired OAuth state", nil)
	}
	// One-time use regardless of how the rest of the flow goes.
	as.cache.Delete(oauthStateKeyPrefix + state)
	userID, ok := cached.(uuid.UUID)
	if !ok {
		return nil, apperr.New(apperr.CodeUnauthorized, op, "unknown or expired OAuth state", nil)
	}

	tok, err := as.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.New(apperr.CodeExternalService, op, "exchanging OAuth code", err)
	}
	ghUser, err := as.fetchGitHubUser(ctx, tok)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"github_username":     ghUser.Login,
		"github_access_token": tok.AccessToken,
	}
	if ghUser.AvatarURL != "" {
		fields["avatar_url"] = ghUser.AvatarURL
	}
	if err := as.users.UpdateFields(ctx, nil, userID, fields); err != nil {
		return nil, err
	}

	as.log.Info("GitHub account connected", "user_id", userID, "github_login", ghUser.Login)
	return as.users.GetByID(ctx, nil, userID)
}

func (as *authService) fetchGitHubUser(ctx context.Context, tok *oauth2.Token) (*github.User, error) {
	const op = "AuthService.fetchGitHubUser"

	httpClient := as.oauth.Client(ctx, tok)
	httpClient.Timeout = 10 * time.Second

	resp, err := httpClient.Get(as.cfg.GitHubAPIURL + "/user")
	if err != nil {
		return nil, apperr.New(apperr.CodeExternalService, op, "fetching GitHub user", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.CodeExternalService, op,
			fmt.Sprintf("GitHub /user returned %d", resp.StatusCode), nil)
	}
	var ghUser github.User
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ghUser); err != nil {
		return nil, apperr.New(apperr.CodeExternalService, op, "decoding GitHub user", err)
	}
	return &ghUser, nil
}
