package reconcile

import "github.com/sandeepkv93/daybook/internal/model"

// Migrate rolls every open todo whose target date has passed forward to
// today. A monthly or yearly todo without a start date first has its old
// target pinned as start, so its cycle anchor survives the move. Each
// migrated todo gets an UPDATE carrying the changed dates and updatedAt.
func Migrate(todos []model.Todo, today string, now int64) Result {
	var next []model.Todo
	var actions []model.SyncAction
	for i, t := range todos {
		if t.Completed || t.TargetDate >= today {
			continue
		}
		if next == nil {
			next = clone(todos)
		}
		patch := model.FieldPatch{
			TargetDate: model.Ptr(today),
			UpdatedAt:  model.Ptr(now),
		}
		if t.Repeat.IsCycle() && t.StartDate == "" {
			t.StartDate = t.TargetDate
			patch.StartDate = model.Ptr(t.StartDate)
		}
		t.TargetDate = today
		t.UpdatedAt = now
		next[i] = t
		actions = append(actions, model.UpdateAction(t.ID, patch, now))
	}
	if next == nil {
		return unchanged(todos)
	}
	return Result{Todos: next, Actions: actions}
}
