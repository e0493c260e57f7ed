package swipes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ivankudzin/paquera/internal/domain/model"
	entitlementsvc "github.com/ivankudzin/paquera/internal/services/entitlements"
	likessvc "github.com/ivankudzin/paquera/internal/services/likes"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	ratesvc "github.com/ivankudzin/paquera/internal/services/rate"
)

const defaultPassCooldown = 24 * time.Hour

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type ProfileLookup interface {
	GetByOwner(ctx context.Context, ownerID int64) (model.Profile, error)
	GetByID(ctx context.Context, profileID int64) (model.Profile, error)
}

type Ledger interface {
	ConsumeTx(ctx context.Context, tx pgx.Tx, profileID int64) (entitlementsvc.InteractionResult, error)
	CheckAccess(ctx context.Context, profileID int64) (model.Access, error)
}

type InterestGraph interface {
	HasLiked(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64) (bool, error)
	RecordLike(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64, isSuperLike bool) (likessvc.LikeResult, error)
}

type PassStore interface {
	Record(ctx context.Context, viewerProfileID, targetProfileID int64, at time.Time, cooldown time.Duration) error
}

type RateLimiter interface {
	Allow(ctx context.Context, profileID int64) (int64, bool, error)
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Profiles    ProfileLookup
	Ledger      Ledger
	Graph       InterestGraph
	Passes      PassStore
	RateLimiter RateLimiter
	Tx          TxRunner
}

type Config struct {
	PassCooldown time.Duration
}

type LikeOutcome struct {
	Matched      bool
	LimitReached bool
	AlreadyLiked bool
	Access       model.Access
}

type PassOutcome struct {
	LimitReached bool
	Access       model.Access
}

type Service struct {
	profiles    ProfileLookup
	ledger      Ledger
	graph       InterestGraph
	passes      PassStore
	rateLimiter RateLimiter
	tx          TxRunner
	cfg         Config
	now         func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PassCooldown <= 0 {
		cfg.PassCooldown = defaultPassCooldown
	}

	return &Service{
		profiles:    deps.Profiles,
		ledger:      deps.Ledger,
		graph:       deps.Graph,
		passes:      deps.Passes,
		rateLimiter: deps.RateLimiter,
		tx:          deps.Tx,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Like spends one interaction and records the edge in a single transaction.
// When the quota is exhausted only the ledger transition is committed; a
// repeated like rolls back so it costs nothing.
func (s *Service) Like(ctx context.Context, ownerID, targetProfileID int64, isSuperLike bool) (LikeOutcome, error) {
	if ownerID <= 0 || targetProfileID <= 0 {
		return LikeOutcome{}, ErrValidation
	}
	if s.profiles == nil || s.ledger == nil || s.graph == nil || s.tx == nil {
		return LikeOutcome{}, fmt.Errorf("swipe dependencies are not configured")
	}

	viewer, err := s.resolvePair(ctx, ownerID, targetProfileID)
	if err != nil {
		return LikeOutcome{}, err
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.Allow(ctx, viewer.ID)
		if err != nil {
			return LikeOutcome{}, fmt.Errorf("apply like rate limiter: %w", err)
		}
		if !allowed {
			return LikeOutcome{}, ratesvc.TooFastError{RetryAfterSec: retryAfter}
		}
	}

	var outcome LikeOutcome
	err = s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		// A repeated like is reported as such even when the quota is spent.
		liked, err := s.graph.HasLiked(txCtx, tx, viewer.ID, targetProfileID)
		if err != nil {
			return err
		}
		if liked {
			return likessvc.ErrDuplicateEdge
		}

		consumed, err := s.ledger.ConsumeTx(txCtx, tx, viewer.ID)
		if err != nil {
			return err
		}
		if consumed.LimitReached {
			outcome.LimitReached = true
			return nil
		}

		res, err := s.graph.RecordLike(txCtx, tx, viewer.ID, targetProfileID, isSuperLike)
		if err != nil {
			return err
		}
		outcome.Matched = res.Matched
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, likessvc.ErrDuplicateEdge):
		outcome = LikeOutcome{AlreadyLiked: true}
	default:
		return LikeOutcome{}, err
	}

	access, err := s.ledger.CheckAccess(ctx, viewer.ID)
	if err != nil {
		return LikeOutcome{}, err
	}
	outcome.Access = access
	return outcome, nil
}

// Pass hides the target from the viewer's candidates for the pass cooldown.
// Passes are free but still require an interaction-capable entitlement.
func (s *Service) Pass(ctx context.Context, ownerID, targetProfileID int64) (PassOutcome, error) {
	if ownerID <= 0 || targetProfileID <= 0 {
		return PassOutcome{}, ErrValidation
	}
	if s.profiles == nil || s.ledger == nil || s.passes == nil {
		return PassOutcome{}, fmt.Errorf("swipe dependencies are not configured")
	}

	viewer, err := s.resolvePair(ctx, ownerID, targetProfileID)
	if err != nil {
		return PassOutcome{}, err
	}

	access, err := s.ledger.CheckAccess(ctx, viewer.ID)
	if err != nil {
		return PassOutcome{}, err
	}
	if !access.CanInteract {
		return PassOutcome{LimitReached: true, Access: access}, nil
	}

	if err := s.passes.Record(ctx, viewer.ID, targetProfileID, s.now().UTC(), s.cfg.PassCooldown); err != nil {
		return PassOutcome{}, fmt.Errorf("record pass: %w", err)
	}
	return PassOutcome{Access: access}, nil
}

func (s *Service) resolvePair(ctx context.Context, ownerID, targetProfileID int64) (model.Profile, error) {
	viewer, err := s.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		return model.Profile{}, mapProfileError(err)
	}
	if viewer.ID == targetProfileID {
		return model.Profile{}, likessvc.ErrInvalidOperation
	}

	target, err := s.profiles.GetByID(ctx, targetProfileID)
	if err != nil {
		return model.Profile{}, mapProfileError(err)
	}
	if !target.Active {
		return model.Profile{}, ErrNotFound
	}
	return viewer, nil
}

func mapProfileError(err error) error {
	if errors.Is(err, profilesvc.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
