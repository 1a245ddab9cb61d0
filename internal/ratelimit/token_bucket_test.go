package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewTokenBucket(clk, 5, 5) // 5 tokens capacity, 5 tokens/sec.

	for i := 0; i < 5; i++ {
		if !b.Allow() {
			t.Fatalf("initial burst token %d denied", i)
		}
	}
	if b.Allow() {
		t.Fatalf("expected empty bucket to deny")
	}

	clk.Advance(200 * time.Millisecond) // exactly one token at 5 tokens/sec
	if !b.Allow() {
		t.Fatalf("expected refill after time advance")
	}
	if b.Allow() {
		t.Fatalf("expected only one refilled token")
	}
}

func TestTokenBucket_CapacityClamp(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewTokenBucket(clk, 1, 1)

	if !b.Allow() {
		t.Fatalf("expected initial token")
	}

	clk.Advance(10 * time.Second)
	if !b.Allow() {
		t.Fatalf("expected refill up to capacity")
	}
	if b.Allow() {
		t.Fatalf("expected capacity clamp at 1 token")
	}
}

func TestTokenBucket_BackwardsClock(t *testing.T) {
	clk := &fakeClock{now: time.Unix(100, 0)}
	b := NewTokenBucket(clk, 2, 1)

	if !b.Allow() {
		t.Fatalf("expected initial token")
	}

	clk.Advance(-50 * time.Second)
	if !b.Allow() {
		t.Fatalf("remaining token should survive a backwards step")
	}
	if b.Allow() {
		t.Fatalf("backwards step must not refill")
	}
}

func TestTokenBucket_ZeroRateNeverAllows(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	b := NewTokenBucket(clk, 0, 0)

	if b.Allow() {
		t.Fatalf("zero-rate bucket should deny")
	}
	clk.Advance(time.Hour)
	if b.Allow() {
		t.Fatalf("zero-rate bucket should deny after time passes")
	}
}
