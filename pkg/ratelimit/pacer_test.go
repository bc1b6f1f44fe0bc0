package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstWaitNeverBlocks(t *testing.T) {
	pacer := NewIntervalPacer(time.Minute)

	start := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitEnforcesInterval(t *testing.T) {
	pacer := NewIntervalPacer(60 * time.Millisecond)

	start := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))
	require.NoError(t, pacer.Wait(context.Background()))
	elapsed := time.Since(start)

	// Two pauses between three calls
	assert.GreaterOrEqual(t, elapsed, 120*time.Millisecond)
}

func TestResetClearsPacing(t *testing.T) {
	pacer := NewIntervalPacer(time.Minute)

	require.NoError(t, pacer.Wait(context.Background()))
	pacer.Reset()

	start := time.Now()
	require.NoError(t, pacer.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestZeroIntervalDisablesPacing(t *testing.T) {
	pacer := NewIntervalPacer(0)

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, pacer.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitObservesCancellation(t *testing.T) {
	pacer := NewIntervalPacer(time.Minute)
	require.NoError(t, pacer.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pacer.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
