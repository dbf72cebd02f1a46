package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/0unveiled/backend/internal/platform/envutil"
	"github.com/0unveiled/backend/internal/platform/httpx"
	"github.com/0unveiled/backend/internal/platform/logger"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	DefaultFrom string
	Timeout     time.Duration
	MaxRetries  int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("RESEND_TIMEOUT_SECONDS", 30)
	maxRetries := envutil.Int("RESEND_MAX_RETRIES", 4)

	return Config{
		APIKey:      strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		BaseURL:     strings.TrimSpace(os.Getenv("RESEND_BASE_URL")),
		DefaultFrom: strings.TrimSpace(os.Getenv("RESEND_FROM_EMAIL")),
		Timeout:     time.Duration(timeoutSec) * time.Second,
		MaxRetries:  maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing RESEND_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.resend.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 4
	}

	return &client{
		log:        log.With("client", "ResendClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

// --- public request/response types ---

type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SendEmailRequest struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
	Headers map[string]string
	Tags    []Tag
}

type SendEmailResult struct {
	ID         string
	StatusCode int
}

// --- Resend wire types ---

type sendRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Cc      []string          `json:"cc,omitempty"`
	Bcc     []string          `json:"bcc,omitempty"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Subject string            `json:"subject"`
	Text    string            `json:"text,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Tags    []Tag             `json:"tags,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("resend client unavailable")
	}

	if strings.TrimSpace(req.From) == "" {
		req.From = c.cfg.DefaultFrom
	}
	req.From = strings.TrimSpace(req.From)
	req.Subject = strings.TrimSpace(req.Subject)

	if req.From == "" {
		return nil, fmt.Errorf("resend: From required (or set RESEND_FROM_EMAIL)")
	}
	if len(req.To) == 0 {
		return nil, fmt.Errorf("resend: To required")
	}
	if req.Subject == "" {
		return nil, fmt.Errorf("resend: Subject required")
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.HTML) == "" {
		return nil, fmt.Errorf("resend: Text or HTML content required")
	}

	wire := sendRequest{
		From:    req.From,
		To:      req.To,
		Cc:      req.CC,
		Bcc:     req.BCC,
		ReplyTo: strings.TrimSpace(req.ReplyTo),
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
		Headers: req.Headers,
		Tags:    req.Tags,
	}

	resp, raw, err := c.do(ctx, "POST", "/emails", wire)
	if err != nil {
		return nil, err
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("resend: decoding response: %w", err)
	}

	return &SendEmailResult{
		ID:         out.ID,
		StatusCode: resp.StatusCode,
	}, nil
}

// ---------- HTTP / retry helpers ----------

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

type HTTPError struct {
	StatusCode int
	Name       string
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "resend: <nil error>"
	}
	if strings.TrimSpace(e.Message) != "" {
		return fmt.Sprintf("resend http %d: %s", e.StatusCode, e.Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "..."
	}
	return fmt.Sprintf("resend http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return resp, raw, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Resend request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, nil, errors.New("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}

		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && strings.TrimSpace(er.Message) != "" {
			he.Name = er.Name
			he.Message = er.Message
		}
		return resp, raw, he
	}

	return resp, raw, nil
}
