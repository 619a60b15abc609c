package runtime

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// PriceRefresher triggers a refresh of every stored stock price.
type PriceRefresher interface {
	RefreshAllPrices(ctx context.Context) (any, error)
}

// Scheduler periodically refreshes portfolio prices
type Scheduler struct {
	refresher    PriceRefresher
	schedule     cron.Schedule
	pollInterval time.Duration
	runTimeout   time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// NewScheduler creates a scheduler that calls refresher on the given schedule
// (see ParseSchedule), checking for due runs every pollInterval.
func NewScheduler(refresher PriceRefresher, schedule string, pollInterval time.Duration, logger zerolog.Logger) (*Scheduler, error) {
	sched, err := ParseSchedule(schedule)
	if err != nil {
		return nil, err
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Scheduler{
		refresher:    refresher,
		schedule:     sched,
		pollInterval: pollInterval,
		runTimeout:   2 * time.Minute,
		now:          time.Now,
		logger:       logger.With().Str("component", "scheduler").Str("schedule", schedule).Logger(),
	}, nil
}

// Start runs the scheduler loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	next := s.schedule.Next(s.now())
	s.logger.Info().
		Dur("pollInterval", s.pollInterval).
		Time("nextRun", next).
		Msg("Starting price refresh scheduler")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduler stopped: context cancelled")
			return
		case <-ticker.C:
			now := s.now()
			if now.Before(next) {
				continue
			}
			s.refresh(ctx)
			next = s.schedule.Next(s.now())
			s.logger.Debug().Time("nextRun", next).Msg("Scheduled next price refresh")
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	if _, err := s.refresher.RefreshAllPrices(runCtx); err != nil {
		s.logger.Error().Err(err).Msg("Failed to refresh prices")
		return
	}
	s.logger.Info().Dur("elapsed", time.Since(start)).Msg("Refreshed prices")
}
