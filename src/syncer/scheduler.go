package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cursor-sync/src/notify"
)

// Scheduler drives recurring sync cycles at a fixed interval. Each iteration
// is fully isolated: a failure (or panic) in one cycle is logged and the
// loop sleeps until the next interval instead of terminating.
type Scheduler struct {
	Interval time.Duration
	Enabled  bool
	Sink     *notify.Sink
}

// Run loops until ctx is cancelled, executing runFn once per interval. The
// inter-cycle sleep is the sole cancellation point: an interrupt during a
// cycle takes effect at the next sleep. Disabled auto-sync returns
// immediately without error.
func (s *Scheduler) Run(ctx context.Context, runFn func(context.Context) error) error {
	if !s.Enabled {
		log.Info().Msg("auto sync is disabled")
		return nil
	}
	if s.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", s.Interval)
	}
	log.Info().Dur("interval", s.Interval).Msg("starting auto sync")
	for {
		s.runIsolated(ctx, runFn)

		timer := time.NewTimer(s.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("auto sync stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runIsolated(ctx context.Context, runFn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("sync cycle panicked")
			s.Sink.Failure(fmt.Sprintf("Sync failed: %v", r))
		}
	}()
	if err := runFn(ctx); err != nil {
		log.Error().Err(err).Msg("sync cycle failed")
		s.Sink.Failure(fmt.Sprintf("Sync failed: %v", err))
		return
	}
	log.Info().Msg("sync cycle completed")
	s.Sink.Success("Settings successfully synced to Google Drive")
}
