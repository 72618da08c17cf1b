package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const SessionSweepJob = "session-sweep"

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// ScheduleSessionSweep registers the job deleting expired sessions.
// An interval of zero leaves it off.
func ScheduleSessionSweep(s *Scheduler, purger SessionPurger, interval time.Duration, logger zerolog.Logger) {
	s.AddJob(SessionSweepJob, interval, func(ctx context.Context) error {
		purged, err := purger.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}

		if purged > 0 {
			logger.Info().Int64("purged", purged).Msg("purged expired sessions")
		}

		return nil
	})
}
