package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ivankudzin/paquera/internal/domain/model"
	pgrepo "github.com/ivankudzin/paquera/internal/repo/postgres"
)

type fakeStore struct {
	lastUpsert *pgrepo.ProfileUpsert
	byOwner    map[int64]model.Profile
	active     []model.Profile
}

func (f *fakeStore) Upsert(_ context.Context, in pgrepo.ProfileUpsert) (model.Profile, error) {
	f.lastUpsert = &in
	return model.Profile{
		ID:         1,
		OwnerID:    in.OwnerID,
		Gender:     in.Gender,
		LookingFor: in.LookingFor,
		City:       in.City,
		Hobbies:    in.Hobbies,
		Active:     true,
		AgeMin:     in.AgeMin,
		AgeMax:     in.AgeMax,
	}, nil
}

func (f *fakeStore) GetByOwner(_ context.Context, ownerID int64) (model.Profile, error) {
	profile, ok := f.byOwner[ownerID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeStore) GetByID(context.Context, int64) (model.Profile, error) {
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (f *fakeStore) ListActiveExcludingOwner(_ context.Context, ownerID int64) ([]model.Profile, error) {
	out := make([]model.Profile, 0, len(f.active))
	for _, p := range f.active {
		if p.OwnerID != ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByIDs(context.Context, []int64) ([]model.Profile, error) {
	return nil, nil
}

func (f *fakeStore) SetActive(_ context.Context, ownerID int64, active bool) (model.Profile, error) {
	profile, ok := f.byOwner[ownerID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	profile.Active = active
	return profile, nil
}

func validInput() Input {
	return Input{
		Gender:            " Female ",
		LookingFor:        "MALE",
		SexualOrientation: "hetero",
		City:              " Centro ",
		Hobbies:           []string{"Music", "music", " sports ", ""},
	}
}

func TestCreateOrUpdateNormalizesInput(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Config{AgeMinDefault: 18, AgeMaxDefault: 99})

	profile, err := svc.CreateOrUpdate(context.Background(), 10, validInput())
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	got := store.lastUpsert
	if got == nil {
		t.Fatalf("expected store upsert")
	}
	if got.Gender != "female" || got.LookingFor != "male" || got.City != "Centro" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if strings.Join(got.Hobbies, ",") != "music,sports" {
		t.Fatalf("unexpected hobbies: %v", got.Hobbies)
	}
	if got.AgeMin != 18 || got.AgeMax != 99 {
		t.Fatalf("unexpected default ages: %d-%d", got.AgeMin, got.AgeMax)
	}
	if !profile.Active {
		t.Fatalf("new profiles should be active")
	}
}

func TestCreateOrUpdateRequiresCoreFields(t *testing.T) {
	svc := NewService(&fakeStore{}, Config{})

	for _, field := range []string{"gender", "looking_for", "sexual_orientation", "city"} {
		in := validInput()
		switch field {
		case "gender":
			in.Gender = "  "
		case "looking_for":
			in.LookingFor = ""
		case "sexual_orientation":
			in.SexualOrientation = ""
		case "city":
			in.City = " "
		}

		_, err := svc.CreateOrUpdate(context.Background(), 10, in)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("%s: message should name the field, got %q", field, err.Error())
		}
	}
}

func TestCreateOrUpdateClampsAges(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, Config{AgeMinDefault: 18, AgeMaxDefault: 99})

	in := validInput()
	in.AgeMin = 15
	in.AgeMax = 17
	if _, err := svc.CreateOrUpdate(context.Background(), 10, in); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if store.lastUpsert.AgeMin != 18 || store.lastUpsert.AgeMax != 18 {
		t.Fatalf("expected ages clamped to 18, got %d-%d", store.lastUpsert.AgeMin, store.lastUpsert.AgeMax)
	}
}

func TestCreateOrUpdateRejectsInvertedAges(t *testing.T) {
	svc := NewService(&fakeStore{}, Config{})

	in := validInput()
	in.AgeMin = 40
	in.AgeMax = 30
	if _, err := svc.CreateOrUpdate(context.Background(), 10, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrUpdateLimitsHobbies(t *testing.T) {
	svc := NewService(&fakeStore{}, Config{})

	in := validInput()
	in.Hobbies = make([]string, 0, 21)
	for i := 0; i < 21; i++ {
		in.Hobbies = append(in.Hobbies, strings.Repeat("x", i+1))
	}
	if _, err := svc.CreateOrUpdate(context.Background(), 10, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for too many hobbies, got %v", err)
	}

	in.Hobbies = []string{strings.Repeat("y", 33)}
	if _, err := svc.CreateOrUpdate(context.Background(), 10, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for long hobby, got %v", err)
	}
}

func TestGetActiveCandidatesExcludesOwner(t *testing.T) {
	store := &fakeStore{active: []model.Profile{{ID: 1, OwnerID: 10}, {ID: 2, OwnerID: 20}}}
	svc := NewService(store, Config{})

	items, err := svc.GetActiveCandidates(context.Background(), 10)
	if err != nil {
		t.Fatalf("get candidates: %v", err)
	}
	if len(items) != 1 || items[0].OwnerID != 20 {
		t.Fatalf("unexpected candidates: %+v", items)
	}
}

func TestSetActiveMapsNotFound(t *testing.T) {
	svc := NewService(&fakeStore{}, Config{})
	if _, err := svc.SetActive(context.Background(), 99, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
