package github

import (
	"testing"
	"time"

	"github.com/0unveiled/backend/internal/platform/logger"
)

func newTestRotator(t *testing.T, tokens []string) *TokenRotator {
	t.Helper()
	return NewTokenRotator(logger.NewNop(), tokens)
}

func TestTokenRotatorSkipsBlankTokens(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234", "", "  ", "ghp_beta5678"})

	_, active := r.Capacity()
	if active != 2 {
		t.Fatalf("active tokens = %d, want 2", active)
	}
}

func TestTokenRotatorEmpty(t *testing.T) {
	r := newTestRotator(t, nil)

	if _, ok := r.Next(); ok {
		t.Fatal("Next() on empty rotator should report no token")
	}
}

func TestTokenRotatorPrefersMostRemaining(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234", "ghp_beta5678"})
	now := time.Now()

	// Both recently used so neither gets an idle bonus; beta has more headroom.
	r.Update("ghp_alpha1234", 100, time.Time{}, true)
	r.Update("ghp_beta5678", 4000, time.Time{}, true)
	r.now = func() time.Time { return now }

	got, ok := r.Next()
	if !ok {
		t.Fatal("Next() reported no token")
	}
	if got != "ghp_beta5678" {
		t.Errorf("Next() = %s, want ghp_beta5678", maskToken(got))
	}
}

func TestTokenRotatorIdleBonus(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234", "ghp_beta5678"})
	now := time.Now()

	// alpha: slightly more remaining but just used. beta: idle for two hours,
	// which earns the capped +100 bonus and wins.
	r.now = func() time.Time { return now.Add(-2 * time.Hour) }
	r.Update("ghp_beta5678", 3950, time.Time{}, true)
	r.now = func() time.Time { return now }
	r.Update("ghp_alpha1234", 4000, time.Time{}, true)

	got, ok := r.Next()
	if !ok {
		t.Fatal("Next() reported no token")
	}
	if got != "ghp_beta5678" {
		t.Errorf("Next() = %s, want idle ghp_beta5678", maskToken(got))
	}
}

func TestTokenRotatorBlocksOnLowRemaining(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234", "ghp_beta5678"})

	r.Update("ghp_alpha1234", 10, time.Time{}, true)

	remaining, active := r.Capacity()
	if active != 1 {
		t.Fatalf("active tokens = %d, want 1", active)
	}
	if remaining != tokenRateLimit {
		t.Fatalf("remaining = %d, want %d (only beta counted)", remaining, tokenRateLimit)
	}

	got, ok := r.Next()
	if !ok {
		t.Fatal("Next() reported no token")
	}
	if got != "ghp_beta5678" {
		t.Errorf("Next() = %s, want the unblocked token", maskToken(got))
	}
}

func TestTokenRotatorBlocksAfterConsecutiveFailures(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234"})

	r.Update("ghp_alpha1234", -1, time.Time{}, false)
	r.Update("ghp_alpha1234", -1, time.Time{}, false)
	if _, ok := r.Next(); !ok {
		t.Fatal("token should survive two failures")
	}

	r.Update("ghp_alpha1234", -1, time.Time{}, false)
	if _, ok := r.Next(); ok {
		t.Fatal("token should be blocked after three consecutive failures")
	}
}

func TestTokenRotatorSuccessResetsFailureCount(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234"})

	r.Update("ghp_alpha1234", -1, time.Time{}, false)
	r.Update("ghp_alpha1234", -1, time.Time{}, false)
	r.Update("ghp_alpha1234", 4500, time.Time{}, true)
	r.Update("ghp_alpha1234", -1, time.Time{}, false)
	r.Update("ghp_alpha1234", -1, time.Time{}, false)

	if _, ok := r.Next(); !ok {
		t.Fatal("failure count should have been reset by the success in between")
	}
}

func TestTokenRotatorUnblocksAfterReset(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234"})
	now := time.Now()

	r.now = func() time.Time { return now }
	r.Update("ghp_alpha1234", 0, now.Add(30*time.Minute), true)
	if _, ok := r.Next(); ok {
		t.Fatal("exhausted token should be blocked before its reset time")
	}

	r.now = func() time.Time { return now.Add(31 * time.Minute) }
	got, ok := r.Next()
	if !ok {
		t.Fatal("token should be usable again after its reset time")
	}
	if got != "ghp_alpha1234" {
		t.Errorf("Next() = %s, want the reset token", maskToken(got))
	}

	remaining, _ := r.Capacity()
	if remaining != tokenRateLimit {
		t.Errorf("remaining after reset = %d, want %d", remaining, tokenRateLimit)
	}
}

func TestTokenRotatorStatusMasksTokens(t *testing.T) {
	r := newTestRotator(t, []string{"ghp_alpha1234"})

	status := r.Status()
	if len(status) != 1 {
		t.Fatalf("Status() returned %d entries, want 1", len(status))
	}
	if status[0].Token != "...1234" {
		t.Errorf("masked token = %q, want %q", status[0].Token, "...1234")
	}
	if status[0].RemainingRequests != tokenRateLimit {
		t.Errorf("remaining = %d, want %d", status[0].RemainingRequests, tokenRateLimit)
	}
}
