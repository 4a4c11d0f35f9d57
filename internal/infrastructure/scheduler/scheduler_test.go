package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsOnceSynchronously(t *testing.T) {
	s := New(Options{Interval: time.Hour})
	defer s.Stop()

	var runs atomic.Int32
	s.Start(context.Background(), "test", func(ctx context.Context) { runs.Add(1) })

	if got := runs.Load(); got != 1 {
		t.Fatalf("expected 1 synchronous run, got %d", got)
	}
}

func TestSchedulerRunsPeriodically(t *testing.T) {
	s := New(Options{Interval: time.Second})
	defer s.Stop()

	var runs atomic.Int32
	s.Start(context.Background(), "test", func(ctx context.Context) { runs.Add(1) })

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if got := runs.Load(); got < 2 {
		t.Fatalf("expected a periodic run, got %d runs", got)
	}
}

func TestSchedulerSkipsAfterCancel(t *testing.T) {
	s := New(Options{Interval: time.Second})
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	s.Start(ctx, "test", func(ctx context.Context) { runs.Add(1) })
	cancel()

	time.Sleep(2200 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Fatalf("expected no runs after cancel, got %d", got)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(Options{})
	if s.opts.Interval != DefaultInterval {
		t.Errorf("expected default interval, got %s", s.opts.Interval)
	}
}

func TestSchedulerOverlap(t *testing.T) {
	if testing.Short() {
		t.Skip("slow scheduler test")
	}

	tests := []struct {
		name          string
		skipIfRunning bool
		wantOverlap   bool
	}{
		{"overlapping runs allowed by default", false, true},
		{"skip if still running", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Options{Interval: time.Second, SkipIfRunning: tt.skipIfRunning})

			var (
				initial    atomic.Bool
				running    atomic.Int32
				maxRunning atomic.Int32
				periodic   atomic.Int32
			)
			s.Start(context.Background(), "slow", func(ctx context.Context) {
				if initial.CompareAndSwap(false, true) {
					return
				}
				periodic.Add(1)
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(2500 * time.Millisecond)
				running.Add(-1)
			})

			time.Sleep(3500 * time.Millisecond)
			<-s.Stop().Done()

			if periodic.Load() == 0 {
				t.Fatal("expected at least one periodic run")
			}
			overlapped := maxRunning.Load() > 1
			if overlapped != tt.wantOverlap {
				t.Errorf("overlap=%v (max concurrent %d), want %v", overlapped, maxRunning.Load(), tt.wantOverlap)
			}
		})
	}
}
