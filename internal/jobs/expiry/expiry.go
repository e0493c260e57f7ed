package expiry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type sweeper interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// Job flips lapsed active entitlements to expired in bulk. The lazy check on
// access stays authoritative; the sweep only keeps stored statuses current.
type Job struct {
	sweeper  sweeper
	interval time.Duration
	logger   *zap.Logger
}

func New(sweeper sweeper, interval time.Duration, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return nil
	}

	rows, err := j.sweeper.ExpireDue(ctx)
	if err != nil {
		return fmt.Errorf("expire due entitlements: %w", err)
	}
	if rows > 0 {
		j.logger.Info("entitlement expiry sweep completed", zap.Int64("expired", rows))
	}
	return nil
}

// Start runs the sweep every interval until ctx is done. A non-positive
// interval disables the loop.
func (j *Job) Start(ctx context.Context) {
	if j.interval <= 0 || j.sweeper == nil {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil && ctx.Err() == nil {
				j.logger.Warn("entitlement expiry sweep failed", zap.Error(err))
			}
		}
	}
}
