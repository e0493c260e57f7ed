package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const passPrefix = "passes:"

// PassRepo keeps, per viewer, a sorted set of passed profile ids scored by
// the pass time. Entries older than the cooldown are dropped on read.
type PassRepo struct {
	client *goredis.Client
}

func NewPassRepo(client *goredis.Client) *PassRepo {
	return &PassRepo{client: client}
}

func (r *PassRepo) Record(ctx context.Context, viewerProfileID, targetProfileID int64, at time.Time, cooldown time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if viewerProfileID <= 0 || targetProfileID <= 0 || cooldown <= 0 {
		return fmt.Errorf("invalid pass payload")
	}

	key := passKey(viewerProfileID)
	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, goredis.Z{
		Score:  float64(at.Unix()),
		Member: strconv.FormatInt(targetProfileID, 10),
	})
	pipe.Expire(ctx, key, cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record pass: %w", err)
	}
	return nil
}

func (r *PassRepo) ListRecent(ctx context.Context, viewerProfileID int64, now time.Time, cooldown time.Duration) ([]int64, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if viewerProfileID <= 0 {
		return nil, fmt.Errorf("invalid profile id")
	}

	key := passKey(viewerProfileID)
	cutoff := strconv.FormatInt(now.Add(-cooldown).Unix(), 10)
	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff).Err(); err != nil {
		return nil, fmt.Errorf("trim expired passes: %w", err)
	}

	members, err := r.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func passKey(profileID int64) string {
	return passPrefix + strconv.FormatInt(profileID, 10)
}
