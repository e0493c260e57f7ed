package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivankudzin/paquera/internal/domain/model"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListForProfile(ctx context.Context, profileID int64, limit int) ([]model.Match, error)
}

type ProfileLookup interface {
	ListByIDs(ctx context.Context, profileIDs []int64) ([]model.Profile, error)
}

type Dependencies struct {
	MatchStore MatchStore
	Profiles   ProfileLookup
}

type MatchItem struct {
	ID        int64
	Profile   model.Profile
	CreatedAt time.Time
}

type Service struct {
	matchStore MatchStore
	profiles   ProfileLookup
}

func NewService(deps Dependencies) *Service {
	return &Service{
		matchStore: deps.MatchStore,
		profiles:   deps.Profiles,
	}
}

// List returns the counterpart profiles matched with profileID, newest match
// first. Matches whose counterpart no longer resolves are skipped.
func (s *Service) List(ctx context.Context, profileID int64, limit int) ([]MatchItem, error) {
	if profileID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil || s.profiles == nil {
		return nil, fmt.Errorf("match dependencies are not configured")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.matchStore.ListForProfile(ctx, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if len(rows) == 0 {
		return []MatchItem{}, nil
	}

	counterpartIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		counterpartIDs = append(counterpartIDs, row.Counterpart(profileID))
	}

	profiles, err := s.profiles.ListByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve matched profiles: %w", err)
	}
	byID := make(map[int64]model.Profile, len(profiles))
	for _, p := range profiles {
		p.SexualOrientation = ""
		byID[p.ID] = p
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		counterpart, ok := byID[row.Counterpart(profileID)]
		if !ok {
			continue
		}
		items = append(items, MatchItem{
			ID:        row.ID,
			Profile:   counterpart,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}
