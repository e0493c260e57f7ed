package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivankudzin/paquera/internal/domain/model"
	"github.com/ivankudzin/paquera/internal/domain/rules"
	"github.com/ivankudzin/paquera/internal/pkg/validate"
	pgrepo "github.com/ivankudzin/paquera/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

type ProfileStore interface {
	Upsert(ctx context.Context, in pgrepo.ProfileUpsert) (model.Profile, error)
	GetByOwner(ctx context.Context, ownerID int64) (model.Profile, error)
	GetByID(ctx context.Context, profileID int64) (model.Profile, error)
	ListActiveExcludingOwner(ctx context.Context, ownerID int64) ([]model.Profile, error)
	ListByIDs(ctx context.Context, profileIDs []int64) ([]model.Profile, error)
	SetActive(ctx context.Context, ownerID int64, active bool) (model.Profile, error)
}

type Config struct {
	AgeMinDefault int
	AgeMaxDefault int
}

type Input struct {
	Gender            string   `json:"gender" validate:"required,max=32"`
	LookingFor        string   `json:"looking_for" validate:"required,max=32"`
	SexualOrientation string   `json:"sexual_orientation" validate:"required,max=32"`
	City              string   `json:"city" validate:"required,max=80"`
	Neighborhood      string   `json:"neighborhood" validate:"max=80"`
	Bio               string   `json:"bio" validate:"max=500"`
	Hobbies           []string `json:"hobbies" validate:"max=20,dive,max=32"`
	AgeMin            int      `json:"age_min"`
	AgeMax            int      `json:"age_max"`
}

type Service struct {
	store ProfileStore
	cfg   Config
}

func NewService(store ProfileStore, cfg Config) *Service {
	if cfg.AgeMinDefault < rules.MinProfileAge {
		cfg.AgeMinDefault = rules.MinProfileAge
	}
	if cfg.AgeMaxDefault < cfg.AgeMinDefault {
		cfg.AgeMaxDefault = rules.DefaultMaxProfileAge
	}

	return &Service{
		store: store,
		cfg:   cfg,
	}
}

func (s *Service) CreateOrUpdate(ctx context.Context, ownerID int64, in Input) (model.Profile, error) {
	if ownerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	normalized, err := s.normalizeAndValidateInput(in)
	if err != nil {
		return model.Profile{}, err
	}

	profile, err := s.store.Upsert(ctx, pgrepo.ProfileUpsert{
		OwnerID:           ownerID,
		Gender:            normalized.Gender,
		LookingFor:        normalized.LookingFor,
		SexualOrientation: normalized.SexualOrientation,
		City:              normalized.City,
		Neighborhood:      normalized.Neighborhood,
		Bio:               normalized.Bio,
		Hobbies:           normalized.Hobbies,
		AgeMin:            normalized.AgeMin,
		AgeMax:            normalized.AgeMax,
	})
	if err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (s *Service) GetByOwner(ctx context.Context, ownerID int64) (model.Profile, error) {
	if ownerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	profile, err := s.store.GetByOwner(ctx, ownerID)
	if err != nil {
		return model.Profile{}, mapStoreError(err)
	}
	return profile, nil
}

func (s *Service) GetByID(ctx context.Context, profileID int64) (model.Profile, error) {
	if profileID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile id: %w", ErrValidation)
	}
	profile, err := s.store.GetByID(ctx, profileID)
	if err != nil {
		return model.Profile{}, mapStoreError(err)
	}
	return profile, nil
}

// GetActiveCandidates returns every active profile except the caller's own.
func (s *Service) GetActiveCandidates(ctx context.Context, excludeOwnerID int64) ([]model.Profile, error) {
	items, err := s.store.ListActiveExcludingOwner(ctx, excludeOwnerID)
	if err != nil {
		return nil, fmt.Errorf("list active candidates: %w", err)
	}
	return items, nil
}

func (s *Service) ListByIDs(ctx context.Context, profileIDs []int64) ([]model.Profile, error) {
	items, err := s.store.ListByIDs(ctx, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return items, nil
}

func (s *Service) SetActive(ctx context.Context, ownerID int64, active bool) (model.Profile, error) {
	if ownerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id: %w", ErrValidation)
	}
	profile, err := s.store.SetActive(ctx, ownerID, active)
	if err != nil {
		return model.Profile{}, mapStoreError(err)
	}
	return profile, nil
}

func (s *Service) normalizeAndValidateInput(in Input) (Input, error) {
	out := Input{
		Gender:            normalizeToken(in.Gender),
		LookingFor:        normalizeToken(in.LookingFor),
		SexualOrientation: normalizeToken(in.SexualOrientation),
		City:              strings.TrimSpace(in.City),
		Neighborhood:      strings.TrimSpace(in.Neighborhood),
		Bio:               strings.TrimSpace(in.Bio),
		Hobbies:           normalizeList(in.Hobbies),
		AgeMin:            in.AgeMin,
		AgeMax:            in.AgeMax,
	}

	if err := validate.Struct(out); err != nil {
		return Input{}, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
	}

	if out.AgeMin == 0 {
		out.AgeMin = s.cfg.AgeMinDefault
	}
	if out.AgeMax == 0 {
		out.AgeMax = s.cfg.AgeMaxDefault
	}
	out.AgeMin = rules.ClampAge(out.AgeMin)
	out.AgeMax = rules.ClampAge(out.AgeMax)
	if out.AgeMin > out.AgeMax {
		return Input{}, fmt.Errorf("age_min must not exceed age_max: %w", ErrValidation)
	}

	return out, nil
}

// normalizeList lowercases and deduplicates hobby tags, dropping blanks.
func normalizeList(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := normalizeToken(value)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

func normalizeToken(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func mapStoreError(err error) error {
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("profile store: %w", err)
}
