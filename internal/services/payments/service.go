package payments

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/paquera/internal/domain/model"
	"github.com/ivankudzin/paquera/internal/domain/rules"
	"github.com/ivankudzin/paquera/internal/pkg/validate"
	pgrepo "github.com/ivankudzin/paquera/internal/repo/postgres"
)

const (
	defaultCurrency      = "BRL"
	defaultReceiptPrefix = "receipts"
	defaultListLimit     = 50
	maxListLimit         = 200
	maxGrantedDays       = 366
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("payment receipt not found")
	ErrAlreadyPending  = errors.New("payment receipt already pending")
	ErrAlreadyReviewed = errors.New("payment receipt already reviewed")
)

type ReceiptStore interface {
	Create(ctx context.Context, in pgrepo.ReceiptCreate) (model.PaymentReceipt, error)
	GetByID(ctx context.Context, receiptID string) (model.PaymentReceipt, error)
	LockForReviewTx(ctx context.Context, tx pgx.Tx, receiptID string) (model.PaymentReceipt, error)
	MarkApprovedTx(ctx context.Context, tx pgx.Tx, receiptID string, reviewerID int64, grantedDays int, now time.Time) (model.PaymentReceipt, error)
	MarkRejected(ctx context.Context, receiptID string, reviewerID int64, reason string, now time.Time) (model.PaymentReceipt, error)
	ListPending(ctx context.Context, limit int) ([]model.PaymentReceipt, error)
	ListForProfile(ctx context.Context, profileID int64, limit int) ([]model.PaymentReceipt, error)
}

type EntitlementActivator interface {
	ActivateTx(ctx context.Context, tx pgx.Tx, profileID int64, expiresAt time.Time, limit int) (model.Entitlement, error)
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type ObjectStorage interface {
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Dependencies struct {
	Receipts     ReceiptStore
	Entitlements EntitlementActivator
	Tx           TxRunner
	Storage      ObjectStorage
	Logger       *zap.Logger
}

type Config struct {
	Currency              string
	GrantedDays           int
	FreeInteractionsLimit int
	ReceiptPrefix         string
	PresignTTL            time.Duration
}

type SubmitInput struct {
	AmountMinor       int64  `json:"amount_minor" validate:"gt=0"`
	Currency          string `json:"currency" validate:"omitempty,len=3,alpha"`
	ReceiptRef        string `json:"receipt_ref" validate:"required,max=512"`
	PaymentIdentifier string `json:"payment_identifier" validate:"required,max=128"`
}

type Review struct {
	Receipt     model.PaymentReceipt
	Entitlement *model.Entitlement
}

type PendingReceipt struct {
	Receipt  model.PaymentReceipt
	ImageURL string
}

type UploadURL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

type Service struct {
	receipts     ReceiptStore
	entitlements EntitlementActivator
	tx           TxRunner
	storage      ObjectStorage
	log          *zap.Logger
	cfg          Config
	now          func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.GrantedDays <= 0 {
		cfg.GrantedDays = rules.DefaultGrantedDays
	}
	if cfg.FreeInteractionsLimit <= 0 {
		cfg.FreeInteractionsLimit = rules.DefaultFreeInteractions
	}
	cfg.ReceiptPrefix = strings.Trim(strings.TrimSpace(cfg.ReceiptPrefix), "/")
	if cfg.ReceiptPrefix == "" {
		cfg.ReceiptPrefix = defaultReceiptPrefix
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultPresignTTL
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		receipts:     deps.Receipts,
		entitlements: deps.Entitlements,
		tx:           deps.Tx,
		storage:      deps.Storage,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SubmitReceipt queues a receipt for operator review. At most one pending
// receipt may exist per profile; the entitlement is not touched.
func (s *Service) SubmitReceipt(ctx context.Context, profileID int64, in SubmitInput) (model.PaymentReceipt, error) {
	if profileID <= 0 {
		return model.PaymentReceipt{}, ErrValidation
	}
	if s.receipts == nil {
		return model.PaymentReceipt{}, fmt.Errorf("receipt store is nil")
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.ReceiptRef = strings.TrimSpace(in.ReceiptRef)
	in.PaymentIdentifier = strings.TrimSpace(in.PaymentIdentifier)
	if err := validate.Struct(in); err != nil {
		return model.PaymentReceipt{}, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
	}
	if in.Currency == "" {
		in.Currency = s.cfg.Currency
	}

	receipt, err := s.receipts.Create(ctx, pgrepo.ReceiptCreate{
		ProfileID:         profileID,
		AmountMinor:       in.AmountMinor,
		Currency:          in.Currency,
		ReceiptRef:        in.ReceiptRef,
		PaymentIdentifier: in.PaymentIdentifier,
	})
	if err != nil {
		return model.PaymentReceipt{}, mapStoreError(err)
	}

	s.log.Info("receipt submitted",
		zap.String("receipt_id", receipt.ID),
		zap.Int64("profile_id", profileID),
		zap.Int64("amount_minor", receipt.AmountMinor),
		zap.String("currency", receipt.Currency),
	)
	return receipt, nil
}

// Approve resolves a pending receipt and activates the entitlement in the
// same transaction.
func (s *Service) Approve(ctx context.Context, receiptID string, operatorID int64, grantedDays int) (Review, error) {
	if strings.TrimSpace(receiptID) == "" || operatorID <= 0 {
		return Review{}, ErrValidation
	}
	if grantedDays < 0 || grantedDays > maxGrantedDays {
		return Review{}, fmt.Errorf("granted_days must be between 1 and %d: %w", maxGrantedDays, ErrValidation)
	}
	if grantedDays == 0 {
		grantedDays = s.cfg.GrantedDays
	}
	if s.receipts == nil || s.entitlements == nil || s.tx == nil {
		return Review{}, fmt.Errorf("payment review dependencies are not configured")
	}

	now := s.now().UTC()
	var review Review
	err := s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := s.receipts.LockForReviewTx(txCtx, tx, receiptID); err != nil {
			return err
		}
		approved, err := s.receipts.MarkApprovedTx(txCtx, tx, receiptID, operatorID, grantedDays, now)
		if err != nil {
			return err
		}
		ent, err := s.entitlements.ActivateTx(txCtx, tx, approved.ProfileID, rules.GrantExpiry(now, grantedDays), s.cfg.FreeInteractionsLimit)
		if err != nil {
			return fmt.Errorf("activate entitlement: %w", err)
		}
		review = Review{Receipt: approved, Entitlement: &ent}
		return nil
	})
	if err != nil {
		return Review{}, mapStoreError(err)
	}

	s.log.Info("receipt approved",
		zap.String("receipt_id", review.Receipt.ID),
		zap.Int64("profile_id", review.Receipt.ProfileID),
		zap.Int64("operator_id", operatorID),
		zap.Int("granted_days", grantedDays),
	)
	return review, nil
}

func (s *Service) Reject(ctx context.Context, receiptID string, operatorID int64, reason string) (Review, error) {
	reason = strings.TrimSpace(reason)
	if strings.TrimSpace(receiptID) == "" || operatorID <= 0 {
		return Review{}, ErrValidation
	}
	if reason == "" {
		return Review{}, fmt.Errorf("reason is required: %w", ErrValidation)
	}
	if len([]rune(reason)) > 500 {
		return Review{}, fmt.Errorf("reason must be at most 500 characters: %w", ErrValidation)
	}
	if s.receipts == nil {
		return Review{}, fmt.Errorf("receipt store is nil")
	}

	rejected, err := s.receipts.MarkRejected(ctx, receiptID, operatorID, reason, s.now().UTC())
	if err != nil {
		return Review{}, mapStoreError(err)
	}

	s.log.Info("receipt rejected",
		zap.String("receipt_id", rejected.ID),
		zap.Int64("profile_id", rejected.ProfileID),
		zap.Int64("operator_id", operatorID),
		zap.String("reason", reason),
	)
	return Review{Receipt: rejected}, nil
}

func (s *Service) Get(ctx context.Context, receiptID string) (model.PaymentReceipt, error) {
	if s.receipts == nil {
		return model.PaymentReceipt{}, fmt.Errorf("receipt store is nil")
	}
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return model.PaymentReceipt{}, mapStoreError(err)
	}
	return receipt, nil
}

// ListPending returns the operator queue, oldest first. Receipts uploaded
// through NewUploadURL carry a short-lived image link.
func (s *Service) ListPending(ctx context.Context, limit int) ([]PendingReceipt, error) {
	if s.receipts == nil {
		return nil, fmt.Errorf("receipt store is nil")
	}

	rows, err := s.receipts.ListPending(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending receipts: %w", err)
	}

	items := make([]PendingReceipt, 0, len(rows))
	for _, row := range rows {
		item := PendingReceipt{Receipt: row}
		if s.storage != nil && s.isStoredObject(row.ReceiptRef) {
			signed, err := s.storage.PresignGet(ctx, row.ReceiptRef, s.cfg.PresignTTL)
			if err != nil {
				s.log.Warn("presign receipt image failed", zap.String("receipt_id", row.ID), zap.Error(err))
			} else {
				item.ImageURL = signed
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) ListForProfile(ctx context.Context, profileID int64, limit int) ([]model.PaymentReceipt, error) {
	if profileID <= 0 {
		return nil, ErrValidation
	}
	if s.receipts == nil {
		return nil, fmt.Errorf("receipt store is nil")
	}

	rows, err := s.receipts.ListForProfile(ctx, profileID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list profile receipts: %w", err)
	}
	return rows, nil
}

// NewUploadURL issues a presigned PUT for a fresh object key under the
// profile's receipt folder. Clients submit the key as receipt_ref.
func (s *Service) NewUploadURL(ctx context.Context, profileID int64) (UploadURL, error) {
	if profileID <= 0 {
		return UploadURL{}, ErrValidation
	}
	if s.storage == nil {
		return UploadURL{}, fmt.Errorf("receipt storage is not configured")
	}

	key := s.objectKey(profileID)
	signed, err := s.storage.PresignPut(ctx, key, s.cfg.PresignTTL)
	if err != nil {
		return UploadURL{}, fmt.Errorf("presign receipt upload: %w", err)
	}

	return UploadURL{
		Key:       key,
		URL:       signed,
		ExpiresAt: s.now().UTC().Add(s.cfg.PresignTTL),
	}, nil
}

func (s *Service) objectKey(profileID int64) string {
	return path.Join(s.cfg.ReceiptPrefix, fmt.Sprintf("%d", profileID), uuid.NewString())
}

func (s *Service) isStoredObject(ref string) bool {
	return strings.HasPrefix(ref, s.cfg.ReceiptPrefix+"/")
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrReceiptAlreadyPending):
		return ErrAlreadyPending
	case errors.Is(err, pgrepo.ErrReceiptAlreadyReviewed):
		return ErrAlreadyReviewed
	case errors.Is(err, pgrepo.ErrReceiptNotFound):
		return ErrNotFound
	default:
		return err
	}
}
