package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
)

func newMiniRedisClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mini.Close()
	})
	return client, mini
}

func TestPassRepoDropsEntriesOlderThanCooldown(t *testing.T) {
	client, _ := newMiniRedisClient(t)
	repo := NewPassRepo(client)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.Record(ctx, 1, 20, now.Add(-25*time.Hour), 24*time.Hour); err != nil {
		t.Fatalf("record old pass: %v", err)
	}
	if err := repo.Record(ctx, 1, 30, now.Add(-time.Hour), 24*time.Hour); err != nil {
		t.Fatalf("record recent pass: %v", err)
	}
	if err := repo.Record(ctx, 2, 40, now, 24*time.Hour); err != nil {
		t.Fatalf("record other viewer pass: %v", err)
	}

	ids, err := repo.ListRecent(ctx, 1, now, 24*time.Hour)
	if err != nil {
		t.Fatalf("list passes: %v", err)
	}
	if len(ids) != 1 || ids[0] != 30 {
		t.Fatalf("unexpected passes: %v", ids)
	}
}

func TestRateRepoCountsWithinWindow(t *testing.T) {
	client, mini := newMiniRedisClient(t)
	repo := NewRateRepo(client)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, ttl, err := repo.IncrementWindow(ctx, 7, 10*time.Second)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if count != int64(i) {
			t.Fatalf("unexpected count %d at step %d", count, i)
		}
		if ttl <= 0 || ttl > 10*time.Second {
			t.Fatalf("unexpected ttl: %s", ttl)
		}
	}
	if !mini.Exists("rate:likes:7:10s") {
		t.Fatalf("expected window key per profile and size, got %v", mini.Keys())
	}

	mini.FastForward(11 * time.Second)
	count, _, err := repo.WindowState(ctx, 7, 10*time.Second)
	if err != nil {
		t.Fatalf("window state: %v", err)
	}
	if count != 0 {
		t.Fatalf("window should have expired, got %d", count)
	}
}

func TestRateRepoKeepsProfilesAndWindowsApart(t *testing.T) {
	client, _ := newMiniRedisClient(t)
	repo := NewRateRepo(client)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, _, err := repo.IncrementWindow(ctx, 1, time.Minute); err != nil {
			t.Fatalf("increment profile 1: %v", err)
		}
	}
	if _, _, err := repo.IncrementWindow(ctx, 2, time.Minute); err != nil {
		t.Fatalf("increment profile 2: %v", err)
	}

	cases := []struct {
		profileID int64
		window    time.Duration
		want      int64
	}{
		{profileID: 1, window: time.Minute, want: 2},
		{profileID: 2, window: time.Minute, want: 1},
		{profileID: 1, window: 10 * time.Second, want: 0},
	}
	for _, tc := range cases {
		count, _, err := repo.WindowState(ctx, tc.profileID, tc.window)
		if err != nil {
			t.Fatalf("window state %d/%s: %v", tc.profileID, tc.window, err)
		}
		if count != tc.want {
			t.Fatalf("profile %d window %s: got %d want %d", tc.profileID, tc.window, count, tc.want)
		}
	}

	if _, _, err := repo.IncrementWindow(ctx, 0, time.Minute); err == nil {
		t.Fatalf("expected invalid profile to be rejected")
	}
}

func TestSessionRepoRoundTrip(t *testing.T) {
	client, _ := newMiniRedisClient(t)
	repo := NewSessionRepo(client)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := repo.Create(ctx, authsvc.SessionRecord{SID: "sid-1", UserID: 9, Role: "USER", ExpiresAt: expires}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := repo.GetSession(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != 9 || got.Role != "USER" || !got.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := repo.DeleteSession(ctx, "sid-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.GetSession(ctx, "sid-1"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
