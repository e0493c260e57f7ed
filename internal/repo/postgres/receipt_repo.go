package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	"github.com/ivankudzin/paquera/internal/domain/model"
)

const pendingReceiptIndex = "payment_receipts_one_pending_idx"

var (
	ErrReceiptNotFound        = errors.New("payment receipt not found")
	ErrReceiptAlreadyPending  = errors.New("payment receipt already pending")
	ErrReceiptAlreadyReviewed = errors.New("payment receipt already reviewed")
)

type ReceiptRepo struct {
	pool *pgxpool.Pool
}

type ReceiptCreate struct {
	ProfileID         int64
	AmountMinor       int64
	Currency          string
	ReceiptRef        string
	PaymentIdentifier string
}

func NewReceiptRepo(pool *pgxpool.Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

const receiptColumns = `
	id::text,
	profile_id,
	amount_minor,
	currency,
	receipt_ref,
	payment_identifier,
	status,
	rejection_reason,
	granted_days,
	reviewed_by,
	reviewed_at,
	created_at`

func (r *ReceiptRepo) Create(ctx context.Context, in ReceiptCreate) (model.PaymentReceipt, error) {
	if r.pool == nil {
		return model.PaymentReceipt{}, fmt.Errorf("postgres pool is nil")
	}
	if in.ProfileID <= 0 || in.AmountMinor <= 0 {
		return model.PaymentReceipt{}, fmt.Errorf("invalid receipt payload")
	}

	receipt, err := scanReceiptRow(r.pool.QueryRow(ctx, `
INSERT INTO payment_receipts (
	id,
	profile_id,
	amount_minor,
	currency,
	receipt_ref,
	payment_identifier,
	status,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW())
RETURNING`+receiptColumns,
		uuid.NewString(),
		in.ProfileID,
		in.AmountMinor,
		strings.ToUpper(strings.TrimSpace(in.Currency)),
		in.ReceiptRef,
		in.PaymentIdentifier,
	))
	if err != nil {
		if isUniqueViolation(err, pendingReceiptIndex) {
			return model.PaymentReceipt{}, ErrReceiptAlreadyPending
		}
		return model.PaymentReceipt{}, fmt.Errorf("create payment receipt: %w", err)
	}
	return receipt, nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID string) (model.PaymentReceipt, error) {
	id, err := parseReceiptID(receiptID)
	if err != nil {
		return model.PaymentReceipt{}, err
	}
	if r.pool == nil {
		return model.PaymentReceipt{}, ErrReceiptNotFound
	}

	receipt, err := scanReceiptRow(r.pool.QueryRow(ctx, `
SELECT`+receiptColumns+`
FROM payment_receipts
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentReceipt{}, ErrReceiptNotFound
		}
		return model.PaymentReceipt{}, fmt.Errorf("get payment receipt: %w", err)
	}
	return receipt, nil
}

// LockForReviewTx locks a receipt row and fails unless it is still pending.
func (r *ReceiptRepo) LockForReviewTx(ctx context.Context, tx pgx.Tx, receiptID string) (model.PaymentReceipt, error) {
	id, err := parseReceiptID(receiptID)
	if err != nil {
		return model.PaymentReceipt{}, err
	}
	if tx == nil {
		return model.PaymentReceipt{}, fmt.Errorf("transaction is required")
	}

	receipt, err := scanReceiptRow(tx.QueryRow(ctx, `
SELECT`+receiptColumns+`
FROM payment_receipts
WHERE id = $1
FOR UPDATE
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentReceipt{}, ErrReceiptNotFound
		}
		return model.PaymentReceipt{}, fmt.Errorf("lock payment receipt: %w", err)
	}
	if receipt.Status != enums.ReceiptStatusPending {
		return receipt, ErrReceiptAlreadyReviewed
	}
	return receipt, nil
}

func (r *ReceiptRepo) MarkApprovedTx(ctx context.Context, tx pgx.Tx, receiptID string, reviewerID int64, grantedDays int, now time.Time) (model.PaymentReceipt, error) {
	id, err := parseReceiptID(receiptID)
	if err != nil {
		return model.PaymentReceipt{}, err
	}
	if tx == nil {
		return model.PaymentReceipt{}, fmt.Errorf("transaction is required")
	}

	receipt, err := scanReceiptRow(tx.QueryRow(ctx, `
UPDATE payment_receipts
SET
	status = 'approved',
	granted_days = $3,
	reviewed_by = $2,
	reviewed_at = $4
WHERE id = $1 AND status = 'pending'
RETURNING`+receiptColumns, id, reviewerID, grantedDays, now.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentReceipt{}, ErrReceiptAlreadyReviewed
		}
		return model.PaymentReceipt{}, fmt.Errorf("approve payment receipt: %w", err)
	}
	return receipt, nil
}

// MarkRejected resolves a pending receipt. Only the conditional update
// decides the outcome, so two operators cannot both reject it. A ledger row
// parked in pending_payment falls back to blocked in the same statement.
func (r *ReceiptRepo) MarkRejected(ctx context.Context, receiptID string, reviewerID int64, reason string, now time.Time) (model.PaymentReceipt, error) {
	id, err := parseReceiptID(receiptID)
	if err != nil {
		return model.PaymentReceipt{}, err
	}
	if r.pool == nil {
		return model.PaymentReceipt{}, fmt.Errorf("postgres pool is nil")
	}

	receipt, err := scanReceiptRow(r.pool.QueryRow(ctx, `
WITH rejected AS (
	UPDATE payment_receipts
	SET
		status = 'rejected',
		rejection_reason = $3,
		reviewed_by = $2,
		reviewed_at = $4
	WHERE id = $1 AND status = 'pending'
	RETURNING *
), reblocked AS (
	UPDATE entitlements e
	SET
		status = 'blocked',
		updated_at = NOW()
	FROM rejected
	WHERE e.profile_id = rejected.profile_id AND e.status = 'pending_payment'
)
SELECT`+receiptColumns+`
FROM rejected`, id, reviewerID, reason, now.UTC()))
	if err == nil {
		return receipt, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.PaymentReceipt{}, fmt.Errorf("reject payment receipt: %w", err)
	}

	if _, err := r.GetByID(ctx, receiptID); err != nil {
		return model.PaymentReceipt{}, err
	}
	return model.PaymentReceipt{}, ErrReceiptAlreadyReviewed
}

func (r *ReceiptRepo) ListPending(ctx context.Context, limit int) ([]model.PaymentReceipt, error) {
	if limit <= 0 {
		limit = 50
	}
	if r.pool == nil {
		return []model.PaymentReceipt{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+receiptColumns+`
FROM payment_receipts
WHERE status = 'pending'
ORDER BY created_at ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending receipts: %w", err)
	}
	return collectReceipts(rows)
}

func (r *ReceiptRepo) ListForProfile(ctx context.Context, profileID int64, limit int) ([]model.PaymentReceipt, error) {
	if profileID <= 0 {
		return nil, fmt.Errorf("invalid profile id")
	}
	if limit <= 0 {
		limit = 20
	}
	if r.pool == nil {
		return []model.PaymentReceipt{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+receiptColumns+`
FROM payment_receipts
WHERE profile_id = $1
ORDER BY created_at DESC
LIMIT $2
`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list profile receipts: %w", err)
	}
	return collectReceipts(rows)
}

func collectReceipts(rows pgx.Rows) ([]model.PaymentReceipt, error) {
	defer rows.Close()

	items := make([]model.PaymentReceipt, 0)
	for rows.Next() {
		receipt, err := scanReceiptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment receipt: %w", err)
		}
		items = append(items, receipt)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate payment receipts: %w", rows.Err())
	}
	return items, nil
}

func scanReceiptRow(row pgx.Row) (model.PaymentReceipt, error) {
	var (
		receipt         model.PaymentReceipt
		status          string
		rejectionReason *string
		grantedDays     *int
		reviewedAt      *time.Time
		createdAt       time.Time
	)
	if err := row.Scan(
		&receipt.ID,
		&receipt.ProfileID,
		&receipt.AmountMinor,
		&receipt.Currency,
		&receipt.ReceiptRef,
		&receipt.PaymentIdentifier,
		&status,
		&rejectionReason,
		&grantedDays,
		&receipt.ReviewedBy,
		&reviewedAt,
		&createdAt,
	); err != nil {
		return model.PaymentReceipt{}, err
	}

	receipt.Status = enums.ReceiptStatus(status)
	if rejectionReason != nil {
		receipt.RejectionReason = *rejectionReason
	}
	if grantedDays != nil {
		receipt.GrantedDays = *grantedDays
	}
	receipt.ReviewedAt = utcPtr(reviewedAt)
	receipt.CreatedAt = createdAt.UTC()
	return receipt, nil
}

func parseReceiptID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrReceiptNotFound
	}
	return id.String(), nil
}
