package dispatch

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"tagsignal/pkg/config"
	"tagsignal/pkg/logger"
)

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func TestPoolProcessesEveryJob(t *testing.T) {
	pool := NewPool(3, func(_ context.Context, job int) int {
		return job * 2
	}, testLogger(t))
	pool.Start(context.Background())

	go func() {
		for i := 1; i <= 5; i++ {
			pool.Submit(i)
		}
		pool.Close()
	}()

	var results []int
	for r := range pool.Results() {
		results = append(results, r)
	}

	sort.Ints(results)
	want := []int{2, 4, 6, 8, 10}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var inflight, peak int64

	pool := NewPool(2, func(_ context.Context, job int) int {
		n := atomic.AddInt64(&inflight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&inflight, -1)
		return job
	}, testLogger(t))
	pool.Start(context.Background())

	go func() {
		for i := 0; i < 6; i++ {
			pool.Submit(i)
		}
		pool.Close()
	}()

	count := 0
	for range pool.Results() {
		count++
	}

	if count != 6 {
		t.Errorf("got %d results, want 6", count)
	}
	if p := atomic.LoadInt64(&peak); p > 2 {
		t.Errorf("peak concurrency %d exceeded the pool width 2", p)
	}
}

func TestPoolClampsWidth(t *testing.T) {
	pool := NewPool(0, func(_ context.Context, job int) int { return job }, testLogger(t))
	if pool.workers != 1 {
		t.Errorf("width 0 should clamp to 1, got %d", pool.workers)
	}
}
