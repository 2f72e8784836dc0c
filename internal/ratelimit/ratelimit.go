package ratelimit

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	mu         sync.Mutex
	clock      clock.Clock
	tokens     int
	capacity   int
	rate       int // tokens per second
	lastRefill int64
	// suppressed counts denials since the last allowed event
	suppressed int
}

// NewTokenBucket creates a new token bucket with the given rate and capacity
func NewTokenBucket(clk clock.Clock, rate, capacity int) *TokenBucket {
	if clk == nil {
		clk = clock.New()
	}
	return &TokenBucket{
		clock:      clk,
		tokens:     capacity,
		capacity:   capacity,
		rate:       rate,
		lastRefill: clk.Now().UnixNano(),
	}
}

// Allow consumes a token if one is available. The second result is the number
// of calls denied since the previous allowed one, so callers can report how
// many events were skipped.
func (tb *TokenBucket) Allow() (bool, int) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.clock.Now().UnixNano()
	elapsed := now - tb.lastRefill

	tokensToAdd := int(elapsed * int64(tb.rate) / 1e9)
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		skipped := tb.suppressed
		tb.suppressed = 0
		return true, skipped
	}
	tb.suppressed++
	return false, 0
}

// Sampler throttles repeated diagnostic events with one bucket per key.
// A zero rate disables throttling.
type Sampler struct {
	mu      sync.Mutex
	clock   clock.Clock
	buckets map[string]*TokenBucket
	rate    int
	burst   int
}

func NewSampler(clk clock.Clock, rate, burst int) *Sampler {
	if clk == nil {
		clk = clock.New()
	}
	return &Sampler{clock: clk, buckets: make(map[string]*TokenBucket), rate: rate, burst: burst}
}

// Allow reports whether an event under key may be emitted now, and how many
// were suppressed before it.
func (s *Sampler) Allow(key string) (bool, int) {
	if s == nil || s.rate <= 0 {
		return true, 0
	}
	s.mu.Lock()
	bucket, exists := s.buckets[key]
	if !exists {
		bucket = NewTokenBucket(s.clock, s.rate, s.burst)
		s.buckets[key] = bucket
	}
	s.mu.Unlock()
	return bucket.Allow()
}

// Reset drops the bucket for key, e.g. once the condition it throttled has cleared.
func (s *Sampler) Reset(key string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.buckets, key)
	s.mu.Unlock()
}
