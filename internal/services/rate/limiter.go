package rate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second
)

// TooFastError is returned when a profile interacts faster than the burst
// windows allow.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type WindowStore interface {
	IncrementWindow(ctx context.Context, profileID int64, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, profileID int64, window time.Duration) (int64, time.Duration, error)
}

// Limiter throttles like bursts per profile. It protects the service, the
// interaction quota is enforced by the entitlement ledger.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// Allow counts one like and returns the seconds to wait when a window is full.
func (l *Limiter) Allow(ctx context.Context, profileID int64) (int64, bool, error) {
	if profileID <= 0 {
		return 0, false, fmt.Errorf("invalid profile id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows() {
		count, ttl, err := l.store.IncrementWindow(ctx, profileID, w.size)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfter reports the current wait without counting a hit.
func (l *Limiter) RetryAfter(ctx context.Context, profileID int64) (int64, error) {
	if profileID <= 0 {
		return 0, fmt.Errorf("invalid profile id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)
	for _, w := range l.windows() {
		count, ttl, err := l.store.WindowState(ctx, profileID, w.size)
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}
	return retryAfterSec, nil
}

type window struct {
	size  time.Duration
	limit int
}

func (l *Limiter) windows() []window {
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{size: minuteWindow, limit: l.perMinute})
	}
	if l.per10Sec > 0 {
		out = append(out, window{size: tenSecWindow, limit: l.per10Sec})
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
