package editor

import (
	"sync"
	"time"
)

// LimitPolicy guards against accidental rapid clicking. Both rules are
// optional hardening and can be switched off with Enabled=false.
type LimitPolicy struct {
	// ClickDelay rejects a stroke start that comes sooner than this after
	// the previous accepted start.
	ClickDelay time.Duration
	// EraserCooldown is how long after the latest eraser activation the
	// activation counter resets.
	EraserCooldown time.Duration
	// MaxEraserClicks is the number of eraser activations allowed within
	// one cooldown window.
	MaxEraserClicks int
	Enabled         bool
}

// DefaultLimitPolicy returns 500ms debounce and 3 eraser clicks per 2s.
func DefaultLimitPolicy() LimitPolicy {
	return LimitPolicy{
		ClickDelay:      500 * time.Millisecond,
		EraserCooldown:  2 * time.Second,
		MaxEraserClicks: 3,
		Enabled:         true,
	}
}

// Rejection explains why a stroke start was refused.
type Rejection string

const (
	// RejectNone means the start was accepted.
	RejectNone Rejection = ""
	// RejectDebounce means the start came within ClickDelay of the previous one.
	RejectDebounce Rejection = "debounce"
	// RejectEraserCooldown means too many eraser activations in a row.
	RejectEraserCooldown Rejection = "eraser_cooldown"
)

// Limiter applies a LimitPolicy to stroke starts.
type Limiter struct {
	lastStart    time.Time
	lastEraser   time.Time
	policy       LimitPolicy
	eraserClicks int
	mu           sync.Mutex
}

// NewLimiter creates a limiter for the given policy.
func NewLimiter(policy LimitPolicy) *Limiter {
	return &Limiter{policy: policy}
}

// Allow decides whether a stroke may start at now with the given tool.
func (l *Limiter) Allow(tool Tool, now time.Time) Rejection {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.policy.Enabled {
		return RejectNone
	}

	if tool == ToolEraser {
		if !l.lastEraser.IsZero() && now.Sub(l.lastEraser) >= l.policy.EraserCooldown {
			l.eraserClicks = 0
		}
		l.eraserClicks++
		l.lastEraser = now

		if l.eraserClicks > l.policy.MaxEraserClicks {
			return RejectEraserCooldown
		}
	}

	if !l.lastStart.IsZero() && now.Sub(l.lastStart) < l.policy.ClickDelay {
		return RejectDebounce
	}
	l.lastStart = now

	if tool != ToolEraser {
		l.eraserClicks = 0
	}
	return RejectNone
}

// ResetEraser clears the eraser activation counter, e.g. on tool change.
func (l *Limiter) ResetEraser() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.eraserClicks = 0
	l.lastEraser = time.Time{}
}
