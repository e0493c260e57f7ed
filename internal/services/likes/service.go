package likes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("profile cannot like itself")
	ErrDuplicateEdge    = errors.New("like already recorded")
)

type LikeStore interface {
	Insert(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64, isSuperLike bool) (bool, error)
	Exists(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64) (bool, error)
	ListLikedTargets(ctx context.Context, profileID int64) ([]int64, error)
}

type MatchStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, profileID, otherProfileID int64) error
	CreateIfMutualLike(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64) (bool, error)
}

type Dependencies struct {
	LikeStore  LikeStore
	MatchStore MatchStore
}

type LikeResult struct {
	Matched bool
}

type Service struct {
	likeStore  LikeStore
	matchStore MatchStore
}

func NewService(deps Dependencies) *Service {
	return &Service{
		likeStore:  deps.LikeStore,
		matchStore: deps.MatchStore,
	}
}

// RecordLike writes the directed edge inside the caller's transaction and
// creates the canonical match when the reverse edge already exists. The pair
// lock is taken before the insert so the two directions of one pair are
// serialized for the rest of the transaction.
func (s *Service) RecordLike(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64, isSuperLike bool) (LikeResult, error) {
	if likerProfileID <= 0 || likedProfileID <= 0 {
		return LikeResult{}, ErrValidation
	}
	if likerProfileID == likedProfileID {
		return LikeResult{}, ErrInvalidOperation
	}
	if s.likeStore == nil || s.matchStore == nil {
		return LikeResult{}, fmt.Errorf("likes dependencies are not configured")
	}

	if err := s.matchStore.LockPair(ctx, tx, likerProfileID, likedProfileID); err != nil {
		return LikeResult{}, fmt.Errorf("lock pair: %w", err)
	}

	inserted, err := s.likeStore.Insert(ctx, tx, likerProfileID, likedProfileID, isSuperLike)
	if err != nil {
		return LikeResult{}, fmt.Errorf("insert like: %w", err)
	}
	if !inserted {
		return LikeResult{}, ErrDuplicateEdge
	}

	matched, err := s.matchStore.CreateIfMutualLike(ctx, tx, likerProfileID, likedProfileID)
	if err != nil {
		return LikeResult{}, fmt.Errorf("create match: %w", err)
	}

	return LikeResult{Matched: matched}, nil
}

// HasLiked reports whether the directed edge is already stored. RecordLike
// stays the authority on duplicates; this lets callers skip work for a like
// that cannot be written.
func (s *Service) HasLiked(ctx context.Context, tx pgx.Tx, likerProfileID, likedProfileID int64) (bool, error) {
	if likerProfileID <= 0 || likedProfileID <= 0 {
		return false, ErrValidation
	}
	if s.likeStore == nil {
		return false, fmt.Errorf("like store is nil")
	}

	exists, err := s.likeStore.Exists(ctx, tx, likerProfileID, likedProfileID)
	if err != nil {
		return false, fmt.Errorf("lookup like: %w", err)
	}
	return exists, nil
}

func (s *Service) ListLikedTargets(ctx context.Context, profileID int64) ([]int64, error) {
	if profileID <= 0 {
		return nil, ErrValidation
	}
	if s.likeStore == nil {
		return nil, fmt.Errorf("like store is nil")
	}

	ids, err := s.likeStore.ListLikedTargets(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list liked targets: %w", err)
	}
	return ids, nil
}
