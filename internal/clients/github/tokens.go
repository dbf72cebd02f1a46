package github

import (
	"strings"
	"sync"
	"time"

	"github.com/0unveiled/backend/internal/platform/logger"
)

const tokenRateLimit = 5000

// blockThreshold keeps a small buffer so a token is parked before GitHub
// starts rejecting it outright.
const blockThreshold = 10

const maxConsecutiveFailures = 3

type tokenState struct {
	token               string
	remaining           int
	resetAt             time.Time
	lastUsed            time.Time
	blocked             bool
	consecutiveFailures int
}

// TokenRotator spreads requests across several GitHub tokens, parking the ones
// that are rate limited or repeatedly failing until their reset time passes.
type TokenRotator struct {
	mu     sync.Mutex
	tokens map[string]*tokenState
	log    *logger.Logger
	now    func() time.Time
}

func NewTokenRotator(log *logger.Logger, tokens []string) *TokenRotator {
	r := &TokenRotator{
		tokens: make(map[string]*tokenState),
		log:    log.With("component", "TokenRotator"),
		now:    time.Now,
	}
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		r.tokens[t] = &tokenState{token: t, remaining: tokenRateLimit}
	}
	if len(r.tokens) == 0 {
		r.log.Warn("No GitHub tokens provided - rate limiting will be severe")
	} else {
		r.log.Info("Token rotator initialized", "tokens", len(r.tokens))
	}
	return r
}

// Next returns the best available token: the one with the most remaining
// requests, with a bonus (capped at 100) for tokens idle the longest.
func (r *TokenRotator) Next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var best *tokenState
	var bestPriority float64

	for _, state := range r.tokens {
		if !state.resetAt.IsZero() && !now.Before(state.resetAt) {
			state.remaining = tokenRateLimit
			state.blocked = false
			state.consecutiveFailures = 0
			state.resetAt = time.Time{}
			r.log.Info("Rate limit reset for token", "token", maskToken(state.token))
		}
		if state.blocked {
			continue
		}

		priority := float64(state.remaining)
		if !state.lastUsed.IsZero() {
			idleMinutes := now.Sub(state.lastUsed).Minutes()
			if idleMinutes > 100 {
				idleMinutes = 100
			}
			priority += idleMinutes
		} else {
			priority += 100
		}

		if best == nil || priority > bestPriority {
			best = state
			bestPriority = priority
		}
	}

	if best == nil {
		r.log.Warn("No available tokens - all are rate limited")
		return "", false
	}

	best.lastUsed = now
	r.log.Debug("Selected token", "token", maskToken(best.token), "remaining", best.remaining)
	return best.token, true
}

// Update records the outcome of a request made with token. remaining < 0 means
// the response carried no rate-limit header; a zero resetAt means no reset
// header.
func (r *TokenRotator) Update(token string, remaining int, resetAt time.Time, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.tokens[token]
	if !ok {
		return
	}
	state.lastUsed = r.now()

	if success {
		state.consecutiveFailures = 0
	} else {
		state.consecutiveFailures++
		if state.consecutiveFailures >= maxConsecutiveFailures {
			state.blocked = true
			r.log.Warn("Token blocked due to repeated failures", "token", maskToken(token))
		}
	}

	if remaining >= 0 {
		state.remaining = remaining
		if remaining <= blockThreshold {
			state.blocked = true
			r.log.Info("Token rate limited", "token", maskToken(token), "remaining", remaining)
		}
	}

	if !resetAt.IsZero() {
		state.resetAt = resetAt
	}
}

// Capacity returns the summed remaining requests and the count of unblocked
// tokens.
func (r *TokenRotator) Capacity() (remaining int, active int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, state := range r.tokens {
		if state.blocked {
			continue
		}
		remaining += state.remaining
		active++
	}
	return remaining, active
}

type TokenStatus struct {
	Token               string     `json:"token"`
	RemainingRequests   int        `json:"remaining_requests"`
	ResetTime           *time.Time `json:"reset_time,omitempty"`
	LastUsed            *time.Time `json:"last_used,omitempty"`
	IsBlocked           bool       `json:"is_blocked"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}

// Status reports each token's state with the token itself masked.
func (r *TokenRotator) Status() []TokenStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TokenStatus, 0, len(r.tokens))
	for _, state := range r.tokens {
		s := TokenStatus{
			Token:               maskToken(state.token),
			RemainingRequests:   state.remaining,
			IsBlocked:           state.blocked,
			ConsecutiveFailures: state.consecutiveFailures,
		}
		if !state.resetAt.IsZero() {
			t := state.resetAt
			s.ResetTime = &t
		}
		if !state.lastUsed.IsZero() {
			t := state.lastUsed
			s.LastUsed = &t
		}
		out = append(out, s)
	}
	return out
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "...!"
	}
	return "..." + token[len(token)-4:]
}
