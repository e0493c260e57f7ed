package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestRunMigrationsUsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	called := false
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		if dir != migrationsDir {
			return errors.New("unexpected dir " + dir)
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}

	if err := runMigrations(context.Background(), nil); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if !called {
		t.Fatalf("expected goose up to be called")
	}
}

func TestRunMigrationsWrapsError(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	boom := errors.New("boom")
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return boom
	}

	err := runMigrations(context.Background(), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestEmbeddedMigrationsHaveGooseAnnotations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) < 3 {
		t.Fatalf("expected at least 3 migrations, got %d", len(entries))
	}

	for _, entry := range entries {
		data, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entry.Name())
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		body := string(data)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s lacks goose annotations", entry.Name())
		}
	}
}

func TestMigrateRequiresPool(t *testing.T) {
	if err := Migrate(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil pool")
	}
}
