package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	"github.com/ivankudzin/paquera/internal/domain/model"
	"github.com/ivankudzin/paquera/internal/domain/rules"
)

const (
	defaultPageSize             = 20
	maxPageSize                 = 50
	defaultRecentlyJoinedWindow = 7 * 24 * time.Hour
	defaultPassCooldown         = 24 * time.Hour
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type ProfileSource interface {
	GetByOwner(ctx context.Context, ownerID int64) (model.Profile, error)
	GetActiveCandidates(ctx context.Context, excludeOwnerID int64) ([]model.Profile, error)
}

type LikedTargets interface {
	ListLikedTargets(ctx context.Context, profileID int64) ([]int64, error)
}

type PassHistory interface {
	ListRecent(ctx context.Context, viewerProfileID int64, now time.Time, cooldown time.Duration) ([]int64, error)
}

type Dependencies struct {
	Profiles ProfileSource
	Likes    LikedTargets
	Passes   PassHistory
}

type Config struct {
	PageSize             int
	RecentlyJoinedWindow time.Duration
	PassCooldown         time.Duration
}

type Service struct {
	profiles ProfileSource
	likes    LikedTargets
	passes   PassHistory
	cfg      Config
	now      func() time.Time
}

type candidateRank struct {
	profile model.Profile
	score   int
	mutual  []string
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = defaultPageSize
	}
	if cfg.RecentlyJoinedWindow <= 0 {
		cfg.RecentlyJoinedWindow = defaultRecentlyJoinedWindow
	}
	if cfg.PassCooldown <= 0 {
		cfg.PassCooldown = defaultPassCooldown
	}

	return &Service{
		profiles: deps.Profiles,
		likes:    deps.Likes,
		passes:   deps.Passes,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ParseMode maps a query value to a filter mode. Empty means all.
func ParseMode(raw string) (enums.FilterMode, error) {
	mode, ok := enums.ParseFilterMode(raw)
	if !ok {
		return "", fmt.Errorf("unknown filter %q: %w", raw, ErrValidation)
	}
	return mode, nil
}

// CandidatesFor resolves the viewer's profile and ranks every active profile
// against it.
func (s *Service) CandidatesFor(ctx context.Context, ownerID int64, mode enums.FilterMode, limit int) ([]model.Candidate, error) {
	if ownerID <= 0 {
		return nil, ErrValidation
	}
	if s.profiles == nil {
		return nil, fmt.Errorf("profile source is nil")
	}

	viewer, err := s.profiles.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolve viewer: %w", err)
	}

	pool, err := s.profiles.GetActiveCandidates(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	return s.Rank(ctx, viewer, pool, mode, limit)
}

func (s *Service) Rank(ctx context.Context, viewer model.Profile, candidates []model.Profile, mode enums.FilterMode, limit int) ([]model.Candidate, error) {
	if viewer.ID <= 0 {
		return nil, ErrValidation
	}
	if mode == "" {
		mode = enums.FilterModeAll
	}
	switch mode {
	case enums.FilterModeAll, enums.FilterModeSameCity, enums.FilterModeRecentlyJoined:
	default:
		return nil, fmt.Errorf("unknown filter %q: %w", mode, ErrValidation)
	}
	if limit <= 0 {
		limit = s.cfg.PageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	now := s.now().UTC()
	excluded, err := s.excludedIDs(ctx, viewer.ID, now)
	if err != nil {
		return nil, err
	}

	ranked := make([]candidateRank, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == viewer.ID || candidate.OwnerID == viewer.OwnerID || !candidate.Active {
			continue
		}
		if _, skip := excluded[candidate.ID]; skip {
			continue
		}
		if !s.matchesMode(viewer, candidate, mode, now) {
			continue
		}

		score, mutual := rules.CompatibilityScore(viewer, candidate)
		ranked = append(ranked, candidateRank{
			profile: candidate,
			score:   score,
			mutual:  mutual,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if !ranked[i].profile.CreatedAt.Equal(ranked[j].profile.CreatedAt) {
			return ranked[i].profile.CreatedAt.After(ranked[j].profile.CreatedAt)
		}
		return ranked[i].profile.ID > ranked[j].profile.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]model.Candidate, 0, len(ranked))
	for _, item := range ranked {
		profile := item.profile
		profile.SexualOrientation = ""
		out = append(out, model.Candidate{
			Profile:       profile,
			Score:         item.score,
			MutualHobbies: item.mutual,
		})
	}
	return out, nil
}

func (s *Service) excludedIDs(ctx context.Context, viewerID int64, now time.Time) (map[int64]struct{}, error) {
	excluded := make(map[int64]struct{})

	if s.likes != nil {
		liked, err := s.likes.ListLikedTargets(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("load liked targets: %w", err)
		}
		for _, id := range liked {
			excluded[id] = struct{}{}
		}
	}

	if s.passes != nil {
		passed, err := s.passes.ListRecent(ctx, viewerID, now, s.cfg.PassCooldown)
		if err != nil {
			return nil, fmt.Errorf("load recent passes: %w", err)
		}
		for _, id := range passed {
			excluded[id] = struct{}{}
		}
	}

	return excluded, nil
}

func (s *Service) matchesMode(viewer, candidate model.Profile, mode enums.FilterMode, now time.Time) bool {
	switch mode {
	case enums.FilterModeSameCity:
		return rules.SameCity(viewer.City, candidate.City)
	case enums.FilterModeRecentlyJoined:
		return !candidate.CreatedAt.Before(now.Add(-s.cfg.RecentlyJoinedWindow))
	default:
		return true
	}
}
