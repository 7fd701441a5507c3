package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls   atomic.Int32
	removed int
}

func (s *countingSweeper) Sweep(ctx context.Context) int {
	s.calls.Add(1)
	return s.removed
}

func (s *countingSweeper) Len() int { return 0 }

func TestCheckExpiredSessionsReportsRemoved(t *testing.T) {
	sweeper := &countingSweeper{removed: 3}
	job := NewSessionExpirationJob(sweeper, time.Minute)

	assert.Equal(t, 3, job.checkExpiredSessions(context.Background()))
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestJobSweepsOnTicker(t *testing.T) {
	sweeper := &countingSweeper{}
	job := NewSessionExpirationJob(sweeper, 5*time.Millisecond)

	job.Start(context.Background())
	defer job.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	job := NewSessionExpirationJob(&countingSweeper{}, 0)
	job.Start(context.Background())

	job.Stop()
	job.Stop()
}
