package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtEpoch(t *testing.T) {
	clock := NewDeterministicClock(time.Millisecond)
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicClock_AdvancesByTick(t *testing.T) {
	clock := NewDeterministicClock(5 * time.Millisecond)

	start := clock.Now()
	end := clock.Now()
	assert.Equal(t, 5*time.Millisecond, end.Sub(start))
	assert.Equal(t, int64(2), clock.Calls())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Calls())
	assert.Equal(t, Epoch, clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(time.Nanosecond)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	results := make([][]time.Time, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]time.Time, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = clock.Now()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[time.Time]bool)
	for _, row := range results {
		for _, ts := range row {
			require.False(t, seen[ts], "duplicate reading %v", ts)
			seen[ts] = true
		}
	}
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}
