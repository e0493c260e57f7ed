package expiry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSweeper struct {
	calls atomic.Int32
	rows  int64
	err   error
}

func (f *fakeSweeper) ExpireDue(context.Context) (int64, error) {
	f.calls.Add(1)
	return f.rows, f.err
}

func TestRunLogsExpiredRows(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sweeper := &fakeSweeper{rows: 3}
	job := New(sweeper, time.Minute, zap.New(core))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run expiry job: %v", err)
	}

	entries := logs.FilterMessage("entitlement expiry sweep completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["expired"]; got != int64(3) {
		t.Fatalf("unexpected expired field: %v", got)
	}
}

func TestRunWrapsSweepError(t *testing.T) {
	sentinel := errors.New("db down")
	job := New(&fakeSweeper{err: sentinel}, time.Minute, nil)

	if err := job.Run(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sweep error, got %v", err)
	}
}

func TestStartStopsWithContext(t *testing.T) {
	sweeper := &fakeSweeper{}
	job := New(sweeper, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated sweeps, got %d", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not stop after cancel")
	}
}

func TestStartDisabledForZeroInterval(t *testing.T) {
	sweeper := &fakeSweeper{}
	New(sweeper, 0, nil).Start(context.Background())
	if sweeper.calls.Load() != 0 {
		t.Fatalf("disabled job must not sweep")
	}
}
