package ratelimit

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucket(t *testing.T) {
	clk := clock.NewMock()
	bucket := NewTokenBucket(clk, 2, 5) // 2 tokens per second, capacity of 5

	for i := 0; i < 5; i++ {
		ok, _ := bucket.Allow()
		assert.True(t, ok, "initial event %d", i)
	}

	ok, _ := bucket.Allow()
	assert.False(t, ok, "bucket should be empty")
	ok, _ = bucket.Allow()
	assert.False(t, ok)

	clk.Add(1100 * time.Millisecond)

	ok, skipped := bucket.Allow()
	assert.True(t, ok, "refilled after a second")
	assert.Equal(t, 2, skipped)
	ok, skipped = bucket.Allow()
	assert.True(t, ok)
	assert.Zero(t, skipped)

	ok, _ = bucket.Allow()
	assert.False(t, ok)
}

func TestTokenBucketCapsAtCapacity(t *testing.T) {
	clk := clock.NewMock()
	bucket := NewTokenBucket(clk, 10, 3)
	clk.Add(time.Hour)

	allowed := 0
	for i := 0; i < 10; i++ {
		if ok, _ := bucket.Allow(); ok {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestSamplerKeysAreIndependent(t *testing.T) {
	clk := clock.NewMock()
	s := NewSampler(clk, 1, 1)

	ok, _ := s.Allow("dial")
	assert.True(t, ok)
	ok, _ = s.Allow("dial")
	assert.False(t, ok)

	ok, _ = s.Allow("mirror")
	assert.True(t, ok, "separate key has its own bucket")
}

func TestSamplerReset(t *testing.T) {
	clk := clock.NewMock()
	s := NewSampler(clk, 1, 1)

	s.Allow("dial")
	ok, _ := s.Allow("dial")
	assert.False(t, ok)

	s.Reset("dial")
	ok, _ = s.Allow("dial")
	assert.True(t, ok)
}

func TestSamplerDisabled(t *testing.T) {
	s := NewSampler(clock.NewMock(), 0, 5)
	for i := 0; i < 100; i++ {
		ok, _ := s.Allow("dial")
		assert.True(t, ok, "event %d", i)
	}

	var nilSampler *Sampler
	ok, _ := nilSampler.Allow("dial")
	assert.True(t, ok)
}
