package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sandeepkv93/daybook/internal/engine"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/remote"
	"github.com/sandeepkv93/daybook/internal/storage"
)

var fixedNow = time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	n := 0
	e := engine.New(engine.Options{
		Store:    storage.NewMemoryKV(),
		Clock:    func() time.Time { return fixedNow },
		Location: time.UTC,
		NewID:    func() string { n++; return fmt.Sprintf("id%d", n) },
		Logger:   quietLogger(),
	})
	if err := e.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLocalOnlyRuntimeRefusesRemoteWork(t *testing.T) {
	rt := New(Options{Engine: newTestEngine(t), Logger: quietLogger()})
	if _, err := rt.SyncNow(t.Context()); !errors.Is(err, ErrLocalOnly) {
		t.Fatalf("expected ErrLocalOnly, got %v", err)
	}
	if _, err := rt.FetchNow(t.Context()); !errors.Is(err, ErrLocalOnly) {
		t.Fatalf("expected ErrLocalOnly, got %v", err)
	}
	if rt.Probe(t.Context()) {
		t.Fatal("local-only runtime must never report online")
	}
	if rt.Status().Remote {
		t.Fatal("status must report no remote")
	}
}

func TestSyncNowPushesAndRequeuesFailures(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	store := remote.NewMemoryStore()
	rt := New(Options{Engine: eng, Remote: store, Logger: quietLogger()})

	if _, err := eng.Add(ctx, "buy milk", "2024-04-15"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := eng.Add(ctx, "walk dog", "2024-04-15"); err != nil {
		t.Fatalf("add: %v", err)
	}
	store.FailIDs["id2"] = errors.New("boom")

	rep, err := rt.SyncNow(ctx)
	if !errors.Is(err, ErrSyncIncomplete) {
		t.Fatalf("expected ErrSyncIncomplete, got %v", err)
	}
	if rep.Applied != 1 || len(rep.Failed) != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if _, ok := store.Get("id1"); !ok {
		t.Fatal("id1 should be stored remotely")
	}
	pending := eng.Pending()
	if len(pending) != 1 || pending[0].ID != "id2" {
		t.Fatalf("expected id2 requeued, got %+v", pending)
	}

	delete(store.FailIDs, "id2")
	if _, err := rt.SyncNow(ctx); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if n := len(eng.Pending()); n != 0 {
		t.Fatalf("expected empty queue, got %d", n)
	}
	if rt.Status().LastSync.IsZero() {
		t.Fatal("expected last sync time recorded")
	}
}

func TestFetchNowAppliesNewerRemoteRecords(t *testing.T) {
	ctx := t.Context()
	eng := newTestEngine(t)
	if _, err := eng.Add(ctx, "draft", "2024-04-15"); err != nil {
		t.Fatalf("add: %v", err)
	}
	local, _ := eng.Get("id1")
	newer := local
	newer.Text = "final"
	newer.UpdatedAt = local.UpdatedAt + 1000

	fresh := model.Todo{ID: "r1", Text: "from phone", TargetDate: "2024-04-15", CreatedAt: local.CreatedAt, UpdatedAt: local.CreatedAt}
	broken := remote.FromTodo(fresh, 0)
	broken.ID = "bad"
	broken.UpdatedAt = "yesterday"

	store := remote.NewMemoryStore(remote.FromTodo(newer, 0), remote.FromTodo(fresh, 0), broken)
	rt := New(Options{Engine: eng, Remote: store, Logger: quietLogger()})

	sum, err := rt.FetchNow(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if sum.RemoteWins != 1 || sum.Added != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	got, _ := eng.Get("id1")
	if got.Text != "final" {
		t.Fatalf("remote should win, got %q", got.Text)
	}
	if _, ok := eng.Get("bad"); ok {
		t.Fatal("undecodable record must be skipped")
	}
}

func TestRunDrainsWhenOnline(t *testing.T) {
	eng := newTestEngine(t)
	store := remote.NewMemoryStore()
	rt := New(Options{
		Engine:        eng,
		Remote:        store,
		ProbeInterval: 20 * time.Millisecond,
		Logger:        quietLogger(),
	})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	if _, err := eng.Add(ctx, "before start", "2024-04-15"); err != nil {
		t.Fatalf("add: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	waitFor(t, "initial drain", func() bool {
		_, ok := store.Get("id1")
		return ok
	})

	if _, err := eng.Add(ctx, "while running", "2024-04-15"); err != nil {
		t.Fatalf("add: %v", err)
	}
	waitFor(t, "signal-driven drain", func() bool {
		_, ok := store.Get("id2")
		return ok
	})

	store.SetOffline(true)
	waitFor(t, "offline transition", func() bool { return !rt.Status().Online })
	if err := eng.Delete(ctx, "id1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if len(eng.Pending()) != 1 {
		t.Fatal("offline deletes must stay queued")
	}

	store.SetOffline(false)
	waitFor(t, "drain after reconnect", func() bool {
		_, ok := store.Get("id1")
		return !ok && len(eng.Pending()) == 0
	})

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
