package runtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) RefreshAllPrices(ctx context.Context) (any, error) {
	r.calls.Add(1)
	return nil, r.err
}

func TestParseSchedule(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 7, 0, 0, time.UTC)

	tests := []struct {
		name     string
		schedule string
		want     time.Time
		wantErr  bool
	}{
		{"five field cron", "*/15 * * * *", time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC), false},
		{"six field cron", "30 */15 * * * *", time.Date(2025, 1, 1, 10, 15, 30, 0, time.UTC), false},
		{"descriptor", "@hourly", time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC), false},
		{"duration", "15m", base.Add(15 * time.Minute), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "every now and then", time.Time{}, true},
		{"negative duration", "-5m", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := ParseSchedule(tt.schedule)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.schedule)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSchedule(%q): %v", tt.schedule, err)
			}
			if got := sched.Next(base); !got.Equal(tt.want) {
				t.Errorf("Expected next run %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("market closed")}
	s, err := NewScheduler(refresher, "20ms", 5*time.Millisecond, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for refresher.calls.Load() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("Expected at least 2 refreshes, got %d", refresher.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Scheduler did not stop after cancellation")
	}
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	if _, err := NewScheduler(&countingRefresher{}, "not a schedule", time.Second, zerolog.Nop()); err == nil {
		t.Error("Expected error for invalid schedule")
	}
}
