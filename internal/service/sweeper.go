package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

type sessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// StartSessionSweeper expires past-due sessions every interval until ctx is done.
// A non-positive interval disables the job.
func StartSessionSweeper(ctx context.Context, sweeper sessionSweeper, interval, timeout time.Duration, logger logrus.FieldLogger) {
	if interval <= 0 {
		logger.Info("session sweeper disabled")
		return
	}
	if timeout <= 0 || timeout > interval {
		timeout = interval / 2
	}

	ticker := time.NewTicker(interval)
	logger.WithField("interval", interval.String()).Info("session sweeper started")
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("session sweeper stopped")
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				_, err := sweeper.SweepExpired(tickCtx)
				cancel()
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.WithError(err).Error("session sweep failed")
				}
			}
		}
	}()
}
