package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const likeRatePrefix = "rate:likes:"

// RateRepo keeps fixed-window like counters per profile. Each window size
// gets its own key so a profile can be throttled by several windows at once.
type RateRepo struct {
	client *goredis.Client
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{client: client}
}

// IncrementWindow counts one like for profileID and returns the count in the
// current window together with the time left in it.
func (r *RateRepo) IncrementWindow(ctx context.Context, profileID int64, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if profileID <= 0 || window < time.Second {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	key := likeRateKey(profileID, window)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("increment like window: %w", err)
	}

	left := ttl.Val()
	// A key without expiry is a fresh window, or one whose EXPIRE was lost.
	if left < 0 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("set like window ttl: %w", err)
		}
		left = window
	}
	return incr.Val(), left, nil
}

// WindowState reads the current window for profileID without counting.
func (r *RateRepo) WindowState(ctx context.Context, profileID int64, window time.Duration) (int64, time.Duration, error) {
	if r.client == nil {
		return 0, 0, fmt.Errorf("redis client is nil")
	}
	if profileID <= 0 || window < time.Second {
		return 0, 0, fmt.Errorf("invalid rate window payload")
	}

	key := likeRateKey(profileID, window)
	pipe := r.client.Pipeline()
	get := pipe.Get(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return 0, 0, fmt.Errorf("read like window: %w", err)
	}

	count, err := get.Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("parse like window: %w", err)
	}
	return count, max(ttl.Val(), 0), nil
}

func likeRateKey(profileID int64, window time.Duration) string {
	return likeRatePrefix + strconv.FormatInt(profileID, 10) + ":" + strconv.FormatInt(int64(window/time.Second), 10) + "s"
}
