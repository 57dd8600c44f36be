package monitor

import (
	"sync"
	"time"
)

// Reconnect timing. The first retry is nearly immediate; subsequent
// delays grow by the multiplier up to the configured maximum.
const (
	InitialReconnectDelay = 20 * time.Millisecond
	MaxReconnectDelay     = 60 * time.Second
	ReconnectMultiplier   = 10.0
)

// Backoff calculates growing reconnection delays.
type Backoff struct {
	mu sync.Mutex

	current    time.Duration
	initial    time.Duration
	max        time.Duration
	multiplier float64
	attempts   int
}

// NewBackoff creates a backoff calculator. max caps the delay; zero or
// negative selects MaxReconnectDelay.
func NewBackoff(max time.Duration) *Backoff {
	if max <= 0 {
		max = MaxReconnectDelay
	}
	initial := InitialReconnectDelay
	if initial > max {
		initial = max
	}
	return &Backoff{
		current:    initial,
		initial:    initial,
		max:        max,
		multiplier: ReconnectMultiplier,
	}
}

// Next returns the current delay and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.current
	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next
	return delay
}

// Attempts returns the number of delays handed out since the last
// reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Reset restores the initial delay. Call after a successful
// reconnection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}
