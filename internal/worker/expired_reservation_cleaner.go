package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/pkg/logger"
)

// ReservationCleaner cancels pending reservations that were never paid.
type ReservationCleaner interface {
	CancelExpiredReservations(ctx context.Context, expireAfter time.Duration) (int, error)
}

// ExpiredReservationCleaner releases stock held by unpaid reservations. It
// sweeps once on start and then on every tick.
type ExpiredReservationCleaner struct {
	reservations ReservationCleaner
	interval     time.Duration
	expireAfter  time.Duration
	released     atomic.Int64
	stopOnce     sync.Once
	stopCh       chan struct{}
	doneCh       chan struct{}
}

func NewExpiredReservationCleaner(rs ReservationCleaner, interval, expireAfter time.Duration) *ExpiredReservationCleaner {
	return &ExpiredReservationCleaner{
		reservations: rs,
		interval:     interval,
		expireAfter:  expireAfter,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (c *ExpiredReservationCleaner) Start(ctx context.Context) {
	defer close(c.doneCh)
	log := logger.With(zap.String("worker", "expired_reservation_cleaner"))
	log.Info("started",
		zap.Duration("interval", c.interval),
		zap.Duration("expire_after", c.expireAfter),
	)

	c.sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("stopped (context cancelled)", zap.Int64("released_total", c.Released()))
			return
		case <-c.stopCh:
			log.Info("stopped", zap.Int64("released_total", c.Released()))
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// Stop signals Start to return and waits for it. Calling it twice is safe.
func (c *ExpiredReservationCleaner) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.doneCh
}

// Released is the number of reservations cancelled since start.
func (c *ExpiredReservationCleaner) Released() int64 {
	return c.released.Load()
}

// sweep runs one pass bounded by the interval.
func (c *ExpiredReservationCleaner) sweep(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, c.interval)
	defer cancel()

	count, err := c.reservations.CancelExpiredReservations(ctx, c.expireAfter)
	if err != nil {
		logger.Error("expired reservation sweep failed", zap.Error(err))
		return 0
	}
	if count > 0 {
		c.released.Add(int64(count))
		logger.Info("released stock held by unpaid reservations", zap.Int("cancelled", count))
	} else {
		logger.Debug("no expired reservations")
	}
	return count
}
