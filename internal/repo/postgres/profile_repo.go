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

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

type ProfileUpsert struct {
	OwnerID           int64
	Gender            string
	LookingFor        string
	SexualOrientation string
	City              string
	Neighborhood      string
	Bio               string
	Hobbies           []string
	AgeMin            int
	AgeMax            int
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `
	id,
	owner_id,
	gender,
	looking_for,
	sexual_orientation,
	city,
	neighborhood,
	bio,
	hobbies,
	active,
	age_min,
	age_max,
	created_at,
	updated_at`

// Upsert keeps at most one profile per owner. Reactivation is left to
// SetActive so editing never silently undoes a deactivation.
func (r *ProfileRepo) Upsert(ctx context.Context, in ProfileUpsert) (model.Profile, error) {
	if in.OwnerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}
	hobbies := in.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}

	profile, err := scanProfileRow(r.pool.QueryRow(ctx, `
INSERT INTO profiles (
	owner_id,
	gender,
	looking_for,
	sexual_orientation,
	city,
	neighborhood,
	bio,
	hobbies,
	age_min,
	age_max,
	active,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, NOW(), NOW())
ON CONFLICT (owner_id) DO UPDATE SET
	gender = EXCLUDED.gender,
	looking_for = EXCLUDED.looking_for,
	sexual_orientation = EXCLUDED.sexual_orientation,
	city = EXCLUDED.city,
	neighborhood = EXCLUDED.neighborhood,
	bio = EXCLUDED.bio,
	hobbies = EXCLUDED.hobbies,
	age_min = EXCLUDED.age_min,
	age_max = EXCLUDED.age_max,
	updated_at = NOW()
RETURNING`+profileColumns,
		in.OwnerID,
		in.Gender,
		in.LookingFor,
		in.SexualOrientation,
		in.City,
		in.Neighborhood,
		in.Bio,
		hobbies,
		in.AgeMin,
		in.AgeMax,
	))
	if err != nil {
		return model.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepo) GetByOwner(ctx context.Context, ownerID int64) (model.Profile, error) {
	if ownerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	profile, err := scanProfileRow(r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE owner_id = $1
LIMIT 1
`, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile by owner: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, profileID int64) (model.Profile, error) {
	if profileID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid profile id")
	}
	if r.pool == nil {
		return model.Profile{}, ErrProfileNotFound
	}

	profile, err := scanProfileRow(r.pool.QueryRow(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE id = $1
LIMIT 1
`, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile by id: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepo) ListActiveExcludingOwner(ctx context.Context, ownerID int64) ([]model.Profile, error) {
	if r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE active = TRUE
	AND owner_id <> $1
ORDER BY created_at DESC, id DESC
`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0)
	for rows.Next() {
		profile, err := scanProfileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active profile: %w", err)
		}
		items = append(items, profile)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate active profiles: %w", rows.Err())
	}

	return items, nil
}

func (r *ProfileRepo) ListByIDs(ctx context.Context, profileIDs []int64) ([]model.Profile, error) {
	if len(profileIDs) == 0 || r.pool == nil {
		return []model.Profile{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+profileColumns+`
FROM profiles
WHERE id = ANY($1)
`, profileIDs)
	if err != nil {
		return nil, fmt.Errorf("list profiles by ids: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0, len(profileIDs))
	for rows.Next() {
		profile, err := scanProfileRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, profile)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return items, nil
}

func (r *ProfileRepo) SetActive(ctx context.Context, ownerID int64, active bool) (model.Profile, error) {
	if ownerID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid owner id")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	profile, err := scanProfileRow(r.pool.QueryRow(ctx, `
UPDATE profiles
SET
	active = $2,
	updated_at = NOW()
WHERE owner_id = $1
RETURNING`+profileColumns, ownerID, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("set profile active: %w", err)
	}
	return profile, nil
}

func scanProfileRow(row pgx.Row) (model.Profile, error) {
	var (
		profile   model.Profile
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&profile.ID,
		&profile.OwnerID,
		&profile.Gender,
		&profile.LookingFor,
		&profile.SexualOrientation,
		&profile.City,
		&profile.Neighborhood,
		&profile.Bio,
		&profile.Hobbies,
		&profile.Active,
		&profile.AgeMin,
		&profile.AgeMax,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Profile{}, err
	}
	if profile.Hobbies == nil {
		profile.Hobbies = []string{}
	}
	profile.CreatedAt = createdAt.UTC()
	profile.UpdatedAt = updatedAt.UTC()
	return profile, nil
}
