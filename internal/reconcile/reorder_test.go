package reconcile

import (
	"slices"
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestReorderKeepsForeignSlots(t *testing.T) {
	in := []model.Todo{
		todo("m1", "a", "2024-05-01"),
		todo("t1", "b", "2024-05-02"),
		todo("m2", "c", "2024-05-01"),
		todo("t2", "d", "2024-05-02"),
		todo("m3", "e", "2024-05-01"),
	}
	out := Reorder(in, []string{"m3", "m1", "m2"})
	if !slices.Equal(ids(out), []string{"m3", "t1", "m1", "t2", "m2"}) {
		t.Fatalf("unexpected order %v", ids(out))
	}
	if out[1] != in[1] || out[3] != in[3] {
		t.Fatalf("foreign todos changed")
	}
	if !slices.Equal(ids(in), []string{"m1", "t1", "m2", "t2", "m3"}) {
		t.Fatalf("input mutated")
	}
}

func TestReorderIgnoresUnknownIDs(t *testing.T) {
	in := []model.Todo{todo("a", "a", "2024-05-01"), todo("b", "b", "2024-05-01")}
	out := Reorder(in, []string{"zzz", "b", "a", "b"})
	if !slices.Equal(ids(out), []string{"b", "a"}) {
		t.Fatalf("unexpected order %v", ids(out))
	}
}
