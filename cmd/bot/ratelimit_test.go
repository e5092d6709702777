package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newOpenLimiter(openRateInterval, openRateBurst)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("1"))
	require.False(t, l.Allow("1"))

	// Other users are limited separately.
	require.True(t, l.Allow("2"))

	now = now.Add(openRateInterval / 2)
	require.False(t, l.Allow("1"))

	now = now.Add(openRateInterval)
	require.True(t, l.Allow("1"))
}

func TestOpenLimiter_Evicts(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newOpenLimiter(openRateInterval, openRateBurst)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("1"))
	require.Len(t, l.users, 1)

	now = now.Add(limiterIdleTTL + time.Second)
	require.True(t, l.Allow("2"))
	require.Len(t, l.users, 1)
	require.Contains(t, l.users, "2")
}
