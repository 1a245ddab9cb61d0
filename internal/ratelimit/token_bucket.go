// Package ratelimit provides the per-connection message rate limiter.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a deterministic token bucket refilling at an integer rate
// (tokens/sec) read from a Clock.
//
// Bookkeeping is done in nanoseconds of credit rather than fractional tokens:
// one token costs time.Second/rate nanoseconds, so refill is plain duration
// arithmetic and no float rounding can drift the limiter.
type TokenBucket struct {
	mu sync.Mutex

	clock Clock

	rate     int64         // tokens/sec
	costNano time.Duration // credit cost of one token
	capNano  time.Duration // credit ceiling

	credit time.Duration
	last   time.Time
}

// NewTokenBucket returns a bucket holding at most capacity tokens, refilling
// at rate tokens per second. A nil clock uses the wall clock. A non-positive
// rate or capacity yields a bucket that never allows.
func NewTokenBucket(clock Clock, capacity, rate int64) *TokenBucket {
	if clock == nil {
		clock = RealClock{}
	}
	b := &TokenBucket{
		clock: clock,
		rate:  rate,
		last:  clock.Now(),
	}
	if rate > 0 && capacity > 0 {
		b.costNano = time.Second / time.Duration(rate)
		b.capNano = time.Duration(capacity) * b.costNano
		b.credit = b.capNano
	}
	return b
}

// Allow consumes one token if available.
func (b *TokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.costNano == 0 {
		return false
	}

	now := b.clock.Now()
	if now.After(b.last) {
		b.credit += now.Sub(b.last)
		if b.credit > b.capNano {
			b.credit = b.capNano
		}
	}
	// A backwards clock step only moves the reference point.
	b.last = now

	if b.credit < b.costNano {
		return false
	}
	b.credit -= b.costNano
	return true
}
