package ratelimit_test

import (
	"testing"
	"time"

	"github.com/dom/taskflow/internal/ratelimit"
	"github.com/go-chi/httprate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertCounts increments key twice and other once, then checks that
// the counter keeps them apart.
func assertCounts(t *testing.T, counter httprate.LimitCounter, window time.Duration) {
	t.Helper()

	curr := time.Now().UTC().Truncate(window)
	prev := curr.Add(-window)

	require.NoError(t, counter.Increment("k", curr))
	require.NoError(t, counter.IncrementBy("k", curr, 1))
	require.NoError(t, counter.Increment("other", curr))

	current, previous, err := counter.Get("k", curr, prev)
	require.NoError(t, err)
	assert.Equal(t, 2, current)
	assert.Equal(t, 0, previous)

	current, _, err = counter.Get("other", curr, prev)
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}

func TestMemoryLimiter(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(3, time.Minute)

	assert.Equal(t, 3, limiter.Limit)
	assert.Equal(t, time.Minute, limiter.Window)
	require.NotNil(t, limiter.Counter)

	limiter.Counter.Config(limiter.Limit, limiter.Window)
	assertCounts(t, limiter.Counter, limiter.Window)
}

func TestMemoryLimiter_SeparateCounters(t *testing.T) {
	a := ratelimit.NewMemoryLimiter(3, time.Minute)
	b := ratelimit.NewMemoryLimiter(3, time.Minute)
	curr := time.Now().UTC().Truncate(time.Minute)

	require.NoError(t, a.Counter.Increment("k", curr))

	current, _, err := b.Counter.Get("k", curr, curr.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, current)
}
