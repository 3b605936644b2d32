package reconcile

import (
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestToggleSplitsWeeklyTodo(t *testing.T) {
	yoga := todo("y", "yoga", "2024-05-06")
	yoga.Repeat = model.RepeatWeekly
	yoga.StartDate, yoga.EndDate = "2024-05-06", "2024-05-07"

	done, succ, actions, err := Toggle(yoga, 300, sequentialIDs("s"))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !done.Completed || done.CompletedAt != 300 || done.Repeat != model.RepeatNone {
		t.Fatalf("unexpected retired todo: %#v", done)
	}
	if succ == nil || succ.ID != "s1" || succ.Completed || succ.Repeat != model.RepeatWeekly {
		t.Fatalf("unexpected successor: %#v", succ)
	}
	if succ.TargetDate != "2024-05-13" || succ.StartDate != "2024-05-13" || succ.EndDate != "2024-05-14" {
		t.Fatalf("successor dates not shifted: %#v", succ)
	}
	if len(actions) != 2 || actions[0].Type != model.ActionUpdate || actions[1].Type != model.ActionInsert {
		t.Fatalf("expected UPDATE then INSERT, got %#v", actions)
	}
}

func TestTogglePlainFlipClearsCompletedAt(t *testing.T) {
	daily := todo("d", "water plants", "2024-05-06")
	daily.Repeat = model.RepeatDaily
	daily.IsLongTerm = true

	done, succ, _, err := Toggle(daily, 10, sequentialIDs("s"))
	if err != nil || succ != nil {
		t.Fatalf("long-term daily todo must not split: %v %#v", err, succ)
	}
	if !done.Completed || done.CompletedAt != 10 || done.Repeat != model.RepeatDaily {
		t.Fatalf("unexpected plain toggle: %#v", done)
	}

	reopened, _, actions, err := Toggle(done, 20, sequentialIDs("s"))
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if reopened.Completed || reopened.CompletedAt != 0 {
		t.Fatalf("completedAt not cleared: %#v", reopened)
	}
	if p := actions[0].Patch; p.CompletedAt == nil || *p.CompletedAt != 0 {
		t.Fatalf("clear must be explicit in the patch: %#v", p)
	}
}
