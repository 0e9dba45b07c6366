package utils

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceNextIsMonotonic(t *testing.T) {
	var s Sequence
	a := s.Next()
	b := s.Next()
	assert.Less(t, a, b)
	assert.True(t, s.IsLatest(b))
	assert.False(t, s.IsLatest(a))
}

func TestSequenceObserveRejectsStale(t *testing.T) {
	var s Sequence
	require.True(t, s.Observe(5))
	assert.False(t, s.Observe(3), "older request must be rejected")
	assert.True(t, s.Observe(5), "same request may be observed again")
	assert.True(t, s.Observe(9))
	assert.Equal(t, uint64(9), s.Latest())
}

func TestSequenceConcurrentNext(t *testing.T) {
	var s Sequence
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Next()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(100), s.Latest())
}

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4, 0)
	var done int64
	for i := 0; i < 50; i++ {
		pool.Submit(func() error {
			atomic.AddInt64(&done, 1)
			return nil
		})
	}
	require.NoError(t, pool.Wait())
	assert.Equal(t, int64(50), done)
}

func TestWorkerPoolKeepsFirstError(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	boom := errors.New("boom")
	pool.Submit(func() error { return boom })
	pool.Submit(func() error { return errors.New("later") })
	assert.ErrorIs(t, pool.Wait(), boom)
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 100
	pool := NewWorkerPool(1, rateLimitMs)

	var mu sync.Mutex
	var timestamps []time.Time
	for i := 0; i < 3; i++ {
		pool.Submit(func() error {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, pool.Wait())

	min := time.Duration(rateLimitMs) * time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, min-5*time.Millisecond, "gap between job %d and %d", i-1, i)
	}
}
