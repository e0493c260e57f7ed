package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

// Insert stores the directed edge and reports false when it already existed.
func (r *LikeRepo) Insert(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64, isSuperLike bool) (bool, error) {
	if likerProfileID <= 0 || likedProfileID <= 0 {
		return false, fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var likeID int64
	err := tx.QueryRow(ctx, `
INSERT INTO likes (
	liker_profile_id,
	liked_profile_id,
	is_super_like,
	created_at
) VALUES ($1, $2, $3, NOW())
ON CONFLICT (liker_profile_id, liked_profile_id) DO NOTHING
RETURNING id
`, likerProfileID, likedProfileID, isSuperLike).Scan(&likeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	return likeID > 0, nil
}

func (r *LikeRepo) Exists(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64) (bool, error) {
	if likerProfileID <= 0 || likedProfileID <= 0 {
		return false, fmt.Errorf("invalid like lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE liker_profile_id = $1 AND liked_profile_id = $2
LIMIT 1
`, likerProfileID, likedProfileID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}

func (r *LikeRepo) ListLikedTargets(ctx context.Context, profileID int64) ([]int64, error) {
	if profileID <= 0 {
		return nil, fmt.Errorf("invalid profile id")
	}
	if r.pool == nil {
		return []int64{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT liked_profile_id
FROM likes
WHERE liker_profile_id = $1
ORDER BY created_at DESC, id DESC
`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list liked targets: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect liked targets: %w", err)
	}
	return ids, nil
}
