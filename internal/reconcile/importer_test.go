package reconcile

import (
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestMergeImportMatchesByIDThenTextAndDate(t *testing.T) {
	existing := []model.Todo{
		todo("a", "dentist", "2024-05-01"),
		todo("b", "groceries", "2024-05-02"),
	}
	byID := todo("a", "dentist 10am", "2024-05-01")
	byKey := todo("", "groceries", "2024-05-02")
	byKey.IsPinned = true
	fresh := todo("", "plant tree", "2024-05-03")
	dupInBatch := todo("", "plant tree", "2024-05-03")
	dupInBatch.Completed = true
	blank := todo("", "   ", "2024-05-03")

	res := MergeImport(existing, []model.Todo{byID, byKey, fresh, dupInBatch, blank}, 900, sequentialIDs("n"))
	if res.Updated != 3 || res.Inserted != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(res.Todos) != 3 {
		t.Fatalf("expected 3 todos, got %v", ids(res.Todos))
	}
	if got := find(t, res.Todos, "a"); got.Text != "dentist 10am" || got.UpdatedAt != 900 {
		t.Fatalf("id match not applied: %#v", got)
	}
	if got := find(t, res.Todos, "b"); !got.IsPinned {
		t.Fatalf("text/date match not applied: %#v", got)
	}
	planted := find(t, res.Todos, "n1")
	if !planted.Completed || planted.CompletedAt != 900 || planted.CreatedAt != 1 {
		t.Fatalf("batch duplicate should update the earlier row: %#v", planted)
	}
	if res.Actions[2].Type != model.ActionInsert || res.Actions[3].Type != model.ActionUpdate {
		t.Fatalf("unexpected action types %#v", res.Actions)
	}
	if existing[0].Text != "dentist" {
		t.Fatalf("existing slice mutated")
	}
}

func TestMergeImportIDMatchKeepsOtherTodoWithSameKey(t *testing.T) {
	existing := []model.Todo{
		todo("a", "call mom", "2024-05-01"),
		todo("b", "call mom", "2024-05-01"),
	}
	renamed := todo("a", "call dad", "2024-05-01")
	sameKey := todo("", "call mom", "2024-05-01")
	sameKey.IsPinned = true

	res := MergeImport(existing, []model.Todo{renamed, sameKey}, 900, sequentialIDs("n"))
	if res.Updated != 2 || res.Inserted != 0 {
		t.Fatalf("expected two updates and no insert, got %+v", res)
	}
	if len(res.Todos) != 2 {
		t.Fatalf("expected no duplicate, got %v", ids(res.Todos))
	}
	if got := find(t, res.Todos, "b"); !got.IsPinned {
		t.Fatalf("row should update the remaining todo with its key: %#v", got)
	}
}
