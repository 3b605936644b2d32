package reconcile

import (
	"slices"
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestDeduplicatePrefersCompletedThenNewest(t *testing.T) {
	openNew := todo("a", "walk", "2024-05-01")
	openNew.UpdatedAt = 50
	doneOld := todo("b", "walk", "2024-05-01")
	doneOld.Completed, doneOld.CompletedAt, doneOld.UpdatedAt = true, 10, 10
	otherDay := todo("c", "walk", "2024-05-02")
	older := todo("d", "read", "2024-05-01")
	older.UpdatedAt = 5
	newer := todo("e", "read", "2024-05-01")
	newer.UpdatedAt = 6

	unique, removed := Deduplicate([]model.Todo{openNew, doneOld, otherDay, older, newer})
	if !slices.Equal(ids(unique), []string{"b", "c", "e"}) {
		t.Fatalf("unexpected survivors %v", ids(unique))
	}
	if !slices.Equal(removed, []string{"a", "d"}) {
		t.Fatalf("unexpected removed ids %v", removed)
	}
}

func TestDeduplicateTieKeepsFirstAndIsIdempotent(t *testing.T) {
	in := []model.Todo{todo("x", "tea", "2024-01-01"), todo("y", "tea", "2024-01-01")}
	unique, removed := Deduplicate(in)
	if !slices.Equal(ids(unique), []string{"x"}) || !slices.Equal(removed, []string{"y"}) {
		t.Fatalf("unexpected tie result %v / %v", ids(unique), removed)
	}
	again, removedAgain := Deduplicate(unique)
	if len(removedAgain) != 0 || len(again) != 1 {
		t.Fatalf("second dedupe changed the collection")
	}
}
