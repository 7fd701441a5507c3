package jobs

import (
	"context"
	"sync"
	"time"

	"busline/internal/logger"
)

// Sweeper is satisfied by *service.AppSessionRegistry.
type Sweeper interface {
	Sweep(ctx context.Context) int
	Len() int
}

// SessionExpirationJob periodically drops idle app sessions from memory.
type SessionExpirationJob struct {
	sweeper  Sweeper
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewSessionExpirationJob(sweeper Sweeper, interval time.Duration) *SessionExpirationJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionExpirationJob{
		sweeper:  sweeper,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep.
func (j *SessionExpirationJob) Start(ctx context.Context) {
	logger.Get().Info("Starting app session expiration job", "check_interval", j.interval.String())

	j.ticker = time.NewTicker(j.interval)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.checkExpiredSessions(ctx)
			case <-ctx.Done():
				logger.Get().Info("App session expiration job stopped")
				return
			case <-j.done:
				logger.Get().Info("App session expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *SessionExpirationJob) Stop() {
	j.stopOnce.Do(func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.done)
	})
}

func (j *SessionExpirationJob) checkExpiredSessions(ctx context.Context) int {
	removed := j.sweeper.Sweep(ctx)
	if removed == 0 {
		logger.Get().Debug("No idle app sessions found")
		return 0
	}

	logger.Get().Info("Expired idle app sessions", "removed", removed, "remaining", j.sweeper.Len())
	return removed
}
