package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/paquera/internal/domain/model"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// LockPair takes a transaction-scoped advisory lock on the unordered pair so
// likes in both directions are checked one after another.
func (r *MatchRepo) LockPair(ctx context.Context, tx pgx.Tx, profileID, otherProfileID int64) error {
	if profileID <= 0 || otherProfileID <= 0 {
		return fmt.Errorf("invalid pair lock payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	low, high := model.CanonicalPair(profileID, otherProfileID)
	if _, err := tx.Exec(ctx, `
SELECT pg_advisory_xact_lock(hashtextextended('match:' || $1::text || ':' || $2::text, 0))
`, low, high); err != nil {
		return fmt.Errorf("lock profile pair: %w", err)
	}
	return nil
}

// CreateIfMutualLike inserts the canonical match when the reverse edge
// exists and reports whether the pair is matched afterwards.
func (r *MatchRepo) CreateIfMutualLike(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64) (bool, error) {
	if likerProfileID <= 0 || likedProfileID <= 0 {
		return false, fmt.Errorf("invalid match payload")
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
`, likedProfileID, likerProfileID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup reciprocal like: %w", err)
	}

	low, high := model.CanonicalPair(likerProfileID, likedProfileID)
	if _, err := tx.Exec(ctx, `
INSERT INTO matches (
	profile_low_id,
	profile_high_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (profile_low_id, profile_high_id) DO NOTHING
`, low, high); err != nil {
		return false, fmt.Errorf("create match: %w", err)
	}

	return true, nil
}

func (r *MatchRepo) ListForProfile(ctx context.Context, profileID int64, limit int) ([]model.Match, error) {
	if profileID <= 0 {
		return nil, fmt.Errorf("invalid profile id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	id,
	profile_low_id,
	profile_high_id,
	created_at
FROM matches
WHERE profile_low_id = $1 OR profile_high_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		var (
			item      model.Match
			createdAt time.Time
		)
		if err := rows.Scan(&item.ID, &item.ProfileLowID, &item.ProfileHighID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		item.CreatedAt = createdAt.UTC()
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) CountForPair(ctx context.Context, profileID, otherProfileID int64) (int, error) {
	if r.pool == nil {
		return 0, nil
	}

	low, high := model.CanonicalPair(profileID, otherProfileID)
	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM matches
WHERE profile_low_id = $1 AND profile_high_id = $2
`, low, high).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches for pair: %w", err)
	}
	return count, nil
}
