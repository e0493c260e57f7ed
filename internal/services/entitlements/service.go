package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ivankudzin/paquera/internal/domain/model"
	"github.com/ivankudzin/paquera/internal/domain/rules"
	pgrepo "github.com/ivankudzin/paquera/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

type Store interface {
	GetSnapshot(ctx context.Context, profileID int64, defaultLimit int) (pgrepo.EntitlementSnapshot, error)
	ExpireIfDue(ctx context.Context, profileID int64, now time.Time) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	ConsumeTx(ctx context.Context, tx pgx.Tx, profileID int64, limit int, now time.Time) (pgrepo.ConsumeResult, error)
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Config struct {
	FreeInteractionsLimit int
}

type InteractionResult struct {
	LimitReached bool
	Access       model.Access
}

type Service struct {
	store Store
	tx    TxRunner
	cfg   Config
	now   func() time.Time
}

func NewService(store Store, tx TxRunner, cfg Config) *Service {
	if cfg.FreeInteractionsLimit <= 0 {
		cfg.FreeInteractionsLimit = rules.DefaultFreeInteractions
	}

	return &Service{
		store: store,
		tx:    tx,
		cfg:   cfg,
		now:   time.Now,
	}
}

// CheckAccess applies lazy expiry and reports what the profile may do now.
// Both steps are idempotent so a transient storage failure is retried once.
func (s *Service) CheckAccess(ctx context.Context, profileID int64) (model.Access, error) {
	if profileID <= 0 {
		return model.Access{}, ErrValidation
	}
	if s.store == nil {
		return model.Access{}, fmt.Errorf("entitlement store is nil")
	}

	var access model.Access
	err := retryTransient(func() error {
		now := s.now().UTC()
		if _, err := s.store.ExpireIfDue(ctx, profileID, now); err != nil {
			return fmt.Errorf("expire entitlement: %w", err)
		}
		snapshot, err := s.store.GetSnapshot(ctx, profileID, s.cfg.FreeInteractionsLimit)
		if err != nil {
			return fmt.Errorf("read entitlement: %w", err)
		}
		access = evaluate(snapshot.Entitlement, snapshot.PaymentPending, now)
		return nil
	})
	if err != nil {
		return model.Access{}, err
	}
	return access, nil
}

// RecordInteraction consumes one interaction in its own transaction.
func (s *Service) RecordInteraction(ctx context.Context, profileID int64) (InteractionResult, error) {
	if profileID <= 0 {
		return InteractionResult{}, ErrValidation
	}
	if s.tx == nil {
		return InteractionResult{}, fmt.Errorf("entitlement transactions are not configured")
	}

	var result InteractionResult
	if err := s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		res, err := s.ConsumeTx(txCtx, tx, profileID)
		if err != nil {
			return err
		}
		result = res
		return nil
	}); err != nil {
		return InteractionResult{}, err
	}
	return result, nil
}

// ConsumeTx is the transactional form used by the like flow. The row stays
// locked until tx ends.
func (s *Service) ConsumeTx(ctx context.Context, tx pgx.Tx, profileID int64) (InteractionResult, error) {
	if profileID <= 0 {
		return InteractionResult{}, ErrValidation
	}
	if s.store == nil {
		return InteractionResult{}, fmt.Errorf("entitlement store is nil")
	}

	now := s.now().UTC()
	res, err := s.store.ConsumeTx(ctx, tx, profileID, s.cfg.FreeInteractionsLimit, now)
	if err != nil {
		return InteractionResult{}, fmt.Errorf("consume interaction: %w", err)
	}

	return InteractionResult{
		LimitReached: res.LimitReached,
		Access:       evaluate(res.Entitlement, res.PaymentPending, now),
	}, nil
}

// evaluate answers from the stored row, with the pending flag taken only from
// the receipt queue.
func evaluate(ent model.Entitlement, receiptPending bool, now time.Time) model.Access {
	access := rules.EvaluateAccess(rules.ReconcilePending(ent.State(), receiptPending), now)
	access.PaymentPending = receiptPending
	return access
}

// ExpireDue moves every lapsed active entitlement to expired.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, fmt.Errorf("entitlement store is nil")
	}
	n, err := s.store.ExpireDue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expire due entitlements: %w", err)
	}
	return n, nil
}

func retryTransient(fn func() error) error {
	err := fn()
	if err != nil && pgrepo.IsTransient(err) {
		err = fn()
	}
	return err
}
