package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func setupSQLite(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "daybook-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func backends(t *testing.T) map[string]KV {
	t.Helper()
	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	return map[string]KV{
		"sqlite": setupSQLite(t),
		"file":   fileKV,
		"memory": NewMemoryKV(),
	}
}

func TestKVContract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			if _, err := kv.Get(ctx, KeyQueue); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing key, got %v", err)
			}
			if err := kv.Put(ctx, KeyQueue, []byte(`[1]`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := kv.Put(ctx, KeyQueue, []byte(`[1,2]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := kv.Get(ctx, KeyQueue)
			if err != nil || string(got) != `[1,2]` {
				t.Fatalf("get = %q, %v", got, err)
			}
			if err := kv.Delete(ctx, KeyQueue); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := kv.Delete(ctx, KeyQueue); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestSQLiteKVKeepsBoundedSnapshots(t *testing.T) {
	kv := setupSQLite(t)
	kv.snapshotLimit = 3
	ctx := t.Context()

	for _, v := range []string{"a", "b", "b", "c", "d", "e"} {
		if err := kv.Put(ctx, KeyTodos, []byte(v)); err != nil {
			t.Fatalf("put %s: %v", v, err)
		}
	}
	snaps, err := kv.Snapshots(ctx, KeyTodos, 0)
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	if string(snaps[0].Value) != "d" || string(snaps[2].Value) != "b" {
		t.Fatalf("unexpected snapshot order: %q .. %q", snaps[0].Value, snaps[2].Value)
	}

	restored, err := kv.Restore(ctx, snaps[1].ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ := kv.Get(ctx, KeyTodos)
	if string(got) != "c" || restored.Key != KeyTodos {
		t.Fatalf("restore wrote %q", got)
	}
	if _, err := kv.Restore(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
