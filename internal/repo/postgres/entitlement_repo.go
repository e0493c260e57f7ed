package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	"github.com/ivankudzin/paquera/internal/domain/model"
)

type EntitlementRepo struct {
	pool *pgxpool.Pool
}

type EntitlementSnapshot struct {
	Entitlement    model.Entitlement
	PaymentPending bool
}

type ConsumeResult struct {
	Entitlement    model.Entitlement
	LimitReached   bool
	PaymentPending bool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *EntitlementRepo {
	return &EntitlementRepo{pool: pool}
}

const entitlementColumns = `
	profile_id,
	status,
	interactions_count,
	interactions_limit,
	expires_at,
	updated_at`

// GetSnapshot reads the ledger row together with the pending receipt flag.
// A missing row yields the default trial entitlement.
func (r *EntitlementRepo) GetSnapshot(ctx context.Context, profileID int64, defaultLimit int) (EntitlementSnapshot, error) {
	if profileID <= 0 {
		return EntitlementSnapshot{}, fmt.Errorf("invalid profile id")
	}
	if r.pool == nil {
		return EntitlementSnapshot{Entitlement: model.DefaultEntitlement(profileID, defaultLimit)}, nil
	}

	var (
		status    *string
		count     *int
		limit     *int
		expiresAt *time.Time
		updatedAt *time.Time
		pending   bool
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	e.status,
	e.interactions_count,
	e.interactions_limit,
	e.expires_at,
	e.updated_at,
	EXISTS (
		SELECT 1
		FROM payment_receipts pr
		WHERE pr.profile_id = $1 AND pr.status = 'pending'
	)
FROM (SELECT $1::bigint AS profile_id) AS p
LEFT JOIN entitlements e ON e.profile_id = p.profile_id
`, profileID).Scan(&status, &count, &limit, &expiresAt, &updatedAt, &pending)
	if err != nil {
		return EntitlementSnapshot{}, fmt.Errorf("get entitlement snapshot: %w", err)
	}

	snapshot := EntitlementSnapshot{
		Entitlement:    model.DefaultEntitlement(profileID, defaultLimit),
		PaymentPending: pending,
	}
	if status == nil {
		return snapshot, nil
	}

	snapshot.Entitlement.Status = enums.SubscriptionStatus(*status)
	if count != nil {
		snapshot.Entitlement.InteractionsCount = *count
	}
	if limit != nil {
		snapshot.Entitlement.InteractionsLimit = *limit
	}
	snapshot.Entitlement.ExpiresAt = utcPtr(expiresAt)
	if updatedAt != nil {
		snapshot.Entitlement.UpdatedAt = updatedAt.UTC()
	}
	return snapshot, nil
}

// ExpireIfDue flips an active entitlement past its expiry to expired and
// resets the counter. It reports whether a transition happened.
func (r *EntitlementRepo) ExpireIfDue(ctx context.Context, profileID int64, now time.Time) (bool, error) {
	if profileID <= 0 {
		return false, fmt.Errorf("invalid profile id")
	}
	if r.pool == nil {
		return false, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE entitlements
SET
	status = 'expired',
	interactions_count = 0,
	updated_at = NOW()
WHERE profile_id = $1
	AND status = 'active'
	AND (expires_at IS NULL OR expires_at < $2)
`, profileID, now.UTC())
	if err != nil {
		return false, fmt.Errorf("expire entitlement: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ExpireDue applies the same transition as ExpireIfDue to every due row.
func (r *EntitlementRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE entitlements
SET
	status = 'expired',
	interactions_count = 0,
	updated_at = NOW()
WHERE status = 'active'
	AND (expires_at IS NULL OR expires_at < $1)
`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire due entitlements: %w", err)
	}
	return result.RowsAffected(), nil
}

// ConsumeTx spends one interaction. The row is locked for the rest of the
// transaction so concurrent likes of the same profile queue behind it.
func (r *EntitlementRepo) ConsumeTx(ctx context.Context, tx pgx.Tx, profileID int64, limit int, now time.Time) (ConsumeResult, error) {
	if profileID <= 0 || limit <= 0 {
		return ConsumeResult{}, fmt.Errorf("invalid interaction consume payload")
	}
	if tx == nil {
		return ConsumeResult{}, fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO entitlements (
	profile_id,
	status,
	interactions_count,
	interactions_limit,
	updated_at
) VALUES ($1, 'inactive', 0, $2, NOW())
ON CONFLICT (profile_id) DO NOTHING
`, profileID, limit); err != nil {
		return ConsumeResult{}, fmt.Errorf("ensure entitlements row: %w", err)
	}

	current, err := scanEntitlementRow(tx.QueryRow(ctx, `
SELECT`+entitlementColumns+`
FROM entitlements
WHERE profile_id = $1
FOR UPDATE
`, profileID))
	if err != nil {
		return ConsumeResult{}, fmt.Errorf("lock entitlement: %w", err)
	}

	var pending bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM payment_receipts
	WHERE profile_id = $1 AND status = 'pending'
)
`, profileID).Scan(&pending); err != nil {
		return ConsumeResult{}, fmt.Errorf("check pending receipt: %w", err)
	}

	switch current.Status {
	case enums.SubscriptionStatusActive:
		if !current.ExpiredAt(now) {
			return ConsumeResult{Entitlement: current, PaymentPending: pending}, nil
		}
		expired, err := scanEntitlementRow(tx.QueryRow(ctx, `
UPDATE entitlements
SET
	status = 'expired',
	interactions_count = 0,
	updated_at = NOW()
WHERE profile_id = $1
RETURNING`+entitlementColumns, profileID))
		if err != nil {
			return ConsumeResult{}, fmt.Errorf("expire entitlement on consume: %w", err)
		}
		return ConsumeResult{Entitlement: expired, LimitReached: true, PaymentPending: pending}, nil
	case enums.SubscriptionStatusExpired:
		return ConsumeResult{Entitlement: current, LimitReached: true, PaymentPending: pending}, nil
	}

	updated, err := scanEntitlementRow(tx.QueryRow(ctx, `
UPDATE entitlements
SET
	interactions_count = interactions_count + 1,
	status = CASE
		WHEN interactions_count + 1 >= interactions_limit THEN
			CASE
				WHEN $2::boolean THEN 'pending_payment'
				ELSE 'blocked'
			END
		ELSE status
	END,
	updated_at = NOW()
WHERE profile_id = $1
	AND status IN ('inactive', 'blocked', 'pending_payment')
	AND interactions_count < interactions_limit
RETURNING`+entitlementColumns, profileID, pending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ConsumeResult{Entitlement: current, LimitReached: true, PaymentPending: pending}, nil
		}
		return ConsumeResult{}, fmt.Errorf("consume interaction with limit: %w", err)
	}

	return ConsumeResult{Entitlement: updated, PaymentPending: pending}, nil
}

// ActivateTx moves the entitlement into the active state and resets the
// interaction counter regardless of the previous state.
func (r *EntitlementRepo) ActivateTx(ctx context.Context, tx pgx.Tx, profileID int64, expiresAt time.Time, limit int) (model.Entitlement, error) {
	if profileID <= 0 || limit <= 0 || expiresAt.IsZero() {
		return model.Entitlement{}, fmt.Errorf("invalid entitlement activation payload")
	}
	if tx == nil {
		return model.Entitlement{}, fmt.Errorf("transaction is required")
	}

	entitlement, err := scanEntitlementRow(tx.QueryRow(ctx, `
INSERT INTO entitlements (
	profile_id,
	status,
	interactions_count,
	interactions_limit,
	expires_at,
	updated_at
) VALUES ($1, 'active', 0, $3, $2, NOW())
ON CONFLICT (profile_id) DO UPDATE SET
	status = 'active',
	interactions_count = 0,
	expires_at = EXCLUDED.expires_at,
	updated_at = NOW()
RETURNING`+entitlementColumns, profileID, expiresAt.UTC(), limit))
	if err != nil {
		return model.Entitlement{}, fmt.Errorf("activate entitlement: %w", err)
	}
	return entitlement, nil
}

func scanEntitlementRow(row pgx.Row) (model.Entitlement, error) {
	var (
		entitlement model.Entitlement
		status      string
		expiresAt   *time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(
		&entitlement.ProfileID,
		&status,
		&entitlement.InteractionsCount,
		&entitlement.InteractionsLimit,
		&expiresAt,
		&updatedAt,
	); err != nil {
		return model.Entitlement{}, err
	}
	entitlement.Status = enums.SubscriptionStatus(status)
	entitlement.ExpiresAt = utcPtr(expiresAt)
	entitlement.UpdatedAt = updatedAt.UTC()
	return entitlement, nil
}

func utcPtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := v.UTC()
	return &out
}
