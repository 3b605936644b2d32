package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSyncActionWireShape(t *testing.T) {
	del, err := json.Marshal(DeleteAction("abc", 42))
	if err != nil {
		t.Fatalf("marshal delete: %v", err)
	}
	if string(del) != `{"id":"abc","type":"DELETE","payload":"abc","timestamp":42}` {
		t.Fatalf("unexpected delete encoding: %s", del)
	}

	upd, err := json.Marshal(UpdateAction("abc", FieldPatch{CompletedAt: Ptr(int64(0)), Completed: Ptr(false)}, 7))
	if err != nil {
		t.Fatalf("marshal update: %v", err)
	}
	if !strings.Contains(string(upd), `"payload":{"completed":false,"completedAt":0}`) {
		t.Fatalf("cleared fields must survive encoding: %s", upd)
	}

	var back SyncAction
	if err := json.Unmarshal(upd, &back); err != nil {
		t.Fatalf("unmarshal update: %v", err)
	}
	if back.Patch.CompletedAt == nil || *back.Patch.CompletedAt != 0 || back.Patch.Text != nil {
		t.Fatalf("unexpected decoded patch: %#v", back.Patch)
	}
}

func TestSyncActionRejectsUnknownType(t *testing.T) {
	var a SyncAction
	err := json.Unmarshal([]byte(`{"id":"x","type":"UPSERT","payload":null,"timestamp":1}`), &a)
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestDiffAndApply(t *testing.T) {
	before := validTodo()
	after := before
	after.Completed = true
	after.CompletedAt = 99
	after.UpdatedAt = 99

	p := Diff(before, after)
	if p.Text != nil || p.TargetDate != nil {
		t.Fatalf("diff carried unchanged fields: %#v", p)
	}
	if got := p.Apply(before); got != after {
		t.Fatalf("apply(diff) = %#v, want %#v", got, after)
	}
	if !Diff(before, before).IsEmpty() {
		t.Fatalf("diff of identical todos should be empty")
	}
	if got := FullPatch(after).Apply(Todo{ID: after.ID, CreatedAt: after.CreatedAt}); got != after {
		t.Fatalf("full patch = %#v", got)
	}
}
