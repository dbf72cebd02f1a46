package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/0unveiled/backend/internal/apperr"
	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/httpx"
	"github.com/0unveiled/backend/internal/platform/logger"

	types "github.com/0unveiled/backend/internal/domain"
)

type Client interface {
	IsConfigured() bool
	GetUser(ctx context.Context, username string) (*User, error)
	GetRepository(ctx context.Context, owner, repo string) (*types.RepositoryData, error)
	ListUserRepos(ctx context.Context, username string) ([]types.RepositoryData, error)
	ListContents(ctx context.Context, owner, repo, path string) ([]ContentEntry, error)
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	RateLimit(ctx context.Context) (*RateLimitStatus, error)
}

type Config struct {
	APIURL     string
	Tokens     []string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	var tokens []string
	for _, t := range strings.Split(os.Getenv("GITHUB_TOKENS"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	if t := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); t != "" {
		tokens = append(tokens, t)
	}

	return Config{
		APIURL:     strings.TrimSpace(os.Getenv("GITHUB_API_URL")),
		Tokens:     tokens,
		Timeout:    time.Duration(envutil.Int("GITHUB_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries: envutil.Int("GITHUB_MAX_RETRIES", 3),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = "https://api.github.com"
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	clientLog := log.With("client", "GitHubClient")

	var rotator *TokenRotator
	if len(cfg.Tokens) > 0 {
		rotator = NewTokenRotator(log, cfg.Tokens)
		remaining, active := rotator.Capacity()
		clientLog.Info("GitHub client initialized", "tokens", active, "total_requests", remaining)
	} else {
		clientLog.Warn("GitHub client running unauthenticated - 60 requests/hour")
	}

	return &client{
		log:        clientLog,
		cfg:        cfg,
		rotator:    rotator,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	rotator    *TokenRotator
	httpClient *http.Client
	maxRetries int
}

// --- wire types ---

type User struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	AvatarURL   string    `json:"avatar_url"`
	HTMLURL     string    `json:"html_url"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContentEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

type RateLimitStatus struct {
	Rate struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"rate"`
	TokenRotation *TokenRotationStatus `json:"token_rotation,omitempty"`
}

type TokenRotationStatus struct {
	ActiveTokens   int           `json:"active_tokens"`
	TotalRemaining int           `json:"total_remaining"`
	TokenStatus    []TokenStatus `json:"token_status"`
}

func (c *client) IsConfigured() bool {
	return c != nil && len(c.cfg.Tokens) > 0
}

func (c *client) GetUser(ctx context.Context, username string) (*User, error) {
	raw, err := c.do(ctx, "GET", "/users/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, mapGitHubError("GitHubClient.GetUser", err)
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "GitHubClient.GetUser", "decoding user", err)
	}
	return &user, nil
}

func (c *client) GetRepository(ctx context.Context, owner, repo string) (*types.RepositoryData, error) {
	raw, err := c.do(ctx, "GET", fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo)), nil)
	if err != nil {
		return nil, mapGitHubError("GitHubClient.GetRepository", err)
	}
	var data types.RepositoryData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "GitHubClient.GetRepository", "decoding repository", err)
	}
	return &data, nil
}

func (c *client) ListUserRepos(ctx context.Context, username string) ([]types.RepositoryData, error) {
	params := url.Values{}
	params.Set("per_page", "100")
	params.Set("sort", "updated")

	raw, err := c.do(ctx, "GET", "/users/"+url.PathEscape(username)+"/repos", params)
	if err != nil {
		return nil, mapGitHubError("GitHubClient.ListUserRepos", err)
	}
	var repos []types.RepositoryData
	if err := json.Unmarshal(raw, &repos); err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "GitHubClient.ListUserRepos", "decoding repositories", err)
	}
	return repos, nil
}

func (c *client) ListContents(ctx context.Context, owner, repo, path string) ([]ContentEntry, error) {
	raw, err := c.do(ctx, "GET", contentsPath(owner, repo, path), nil)
	if err != nil {
		return nil, mapGitHubError("GitHubClient.ListContents", err)
	}

	// A directory decodes as a list; a file path decodes as a single object.
	var entries []ContentEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}
	var single ContentEntry
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "GitHubClient.ListContents", "decoding contents", err)
	}
	return []ContentEntry{single}, nil
}

func (c *client) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	raw, err := c.do(ctx, "GET", contentsPath(owner, repo, path), nil)
	if err != nil {
		return "", mapGitHubError("GitHubClient.GetFileContent", err)
	}

	var entry ContentEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", apperr.New(apperr.CodeExternalService, "GitHubClient.GetFileContent", "decoding file", err)
	}
	if entry.Encoding != "base64" {
		return "", apperr.New(apperr.CodeExternalService, "GitHubClient.GetFileContent",
			fmt.Sprintf("unsupported encoding %q for %s", entry.Encoding, path), nil)
	}

	// GitHub wraps base64 payloads with newlines.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(entry.Content, "\n", ""))
	if err != nil {
		return "", apperr.New(apperr.CodeExternalService, "GitHubClient.GetFileContent", "decoding base64 content", err)
	}
	return string(decoded), nil
}

func (c *client) RateLimit(ctx context.Context) (*RateLimitStatus, error) {
	raw, err := c.do(ctx, "GET", "/rate_limit", nil)
	if err != nil {
		return nil, mapGitHubError("GitHubClient.RateLimit", err)
	}

	var status RateLimitStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, apperr.New(apperr.CodeExternalService, "GitHubClient.RateLimit", "decoding rate limit", err)
	}
	if c.rotator != nil {
		remaining, active := c.rotator.Capacity()
		status.TokenRotation = &TokenRotationStatus{
			ActiveTokens:   active,
			TotalRemaining: remaining,
			TokenStatus:    c.rotator.Status(),
		}
	}
	return &status, nil
}

func contentsPath(owner, repo, path string) string {
	base := fmt.Sprintf("/repos/%s/%s/contents", url.PathEscape(owner), url.PathEscape(repo))
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return base
	}
	escaped := make([]string, 0, 8)
	for _, seg := range strings.Split(path, "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return base + "/" + strings.Join(escaped, "/")
}

// ---------- HTTP / retry helpers ----------

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "github: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("github http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func isRateLimitError(err error) bool {
	he, ok := err.(*HTTPError)
	if !ok {
		return false
	}
	if he.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return he.StatusCode == http.StatusForbidden && strings.Contains(strings.ToLower(he.Body), "rate limit")
}

func mapGitHubError(op string, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*apperr.Error); ok {
		ae.Op = op
		return ae
	}
	if he, ok := err.(*HTTPError); ok {
		switch he.StatusCode {
		case http.StatusNotFound:
			return apperr.New(apperr.CodeNotFound, op, "github resource not found", he)
		case http.StatusUnauthorized:
			return apperr.New(apperr.CodeUnauthorized, op, "github credentials rejected", he)
		case http.StatusForbidden, http.StatusTooManyRequests:
			return apperr.New(apperr.CodeRateLimited, op, "github rate limit exceeded", he)
		}
		return apperr.New(apperr.CodeExternalService, op, "github request failed", he)
	}
	return apperr.New(apperr.CodeExternalService, op, "github request failed", err)
}

func (c *client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var token string
		if c.rotator != nil {
			tok, ok := c.rotator.Next()
			if !ok {
				return nil, apperr.New(apperr.CodeRateLimited, "GitHubClient.do", "all GitHub tokens are rate limited", nil)
			}
			token = tok
		}

		raw, resp, err := c.doOnce(ctx, method, path, params, token)

		if resp != nil && c.rotator != nil && token != "" {
			remaining := -1
			if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
				if n, perr := strconv.Atoi(v); perr == nil {
					remaining = n
				}
			}
			var resetAt time.Time
			if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
				if ts, perr := strconv.ParseInt(v, 10, 64); perr == nil {
					resetAt = time.Unix(ts, 0)
				}
			}
			c.rotator.Update(token, remaining, resetAt, err == nil)
		}

		if err == nil {
			return raw, nil
		}
		lastErr = err

		if isRateLimitError(err) {
			c.log.Warn("GitHub rate limit hit", "token", maskToken(token), "attempt", attempt+1)
			if c.rotator != nil && token != "" {
				c.rotator.Update(token, 0, time.Time{}, false)
			}
			if attempt < c.maxRetries-1 {
				continue
			}
			return nil, apperr.New(apperr.CodeRateLimited, "GitHubClient.do", "github rate limit exceeded on all attempts", err)
		}

		// HTTP-level failures other than rate limits are not retried; transport
		// errors are.
		if _, isHTTP := err.(*HTTPError); isHTTP {
			return nil, err
		}
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries-1 {
			return nil, err
		}

		sleepFor := httpx.JitterSleep(time.Duration(attempt+1) * time.Second)
		c.log.Warn("GitHub request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
	}

	return nil, lastErr
}

func (c *client) doOnce(ctx context.Context, method, path string, params url.Values, token string) ([]byte, *http.Response, error) {
	reqURL := c.cfg.APIURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "0Unveiled-Analyzer/1.0")
	if token != "" {
		if strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_") {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			req.Header.Set("Authorization", "token "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp, nil
}
