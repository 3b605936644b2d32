package reconcile

import "github.com/sandeepkv93/daybook/internal/model"

// Advance moves monthly and yearly todos to their current cycle.
//
// A completed cycle todo is split: a frozen copy with a fresh id records the
// finished occurrence (INSERT), and the live todo reopens on the next cycle
// start (UPDATE). An open cycle todo whose next cycle has already begun jumps
// straight to the last cycle start on or before today, so a todo anchored on
// Jan 31 and revisited on Apr 15 lands on Mar 31 in one pass.
//
// History records are appended after the existing todos; live todos keep
// their position. Todos with unparseable dates are left alone.
func Advance(todos []model.Todo, today string, now int64, newID func() string) Result {
	var next []model.Todo
	var history []model.Todo
	var actions []model.SyncAction

	for i, t := range todos {
		if !t.Repeat.IsCycle() {
			continue
		}
		var (
			live model.Todo
			ok   bool
		)
		if t.Completed {
			var hist model.Todo
			live, hist, ok = split(t, now, newID)
			if ok {
				history = append(history, hist)
				actions = append(actions, model.InsertAction(hist, now))
			}
		} else {
			live, ok = catchUp(t, today, now)
		}
		if !ok {
			continue
		}
		if next == nil {
			next = clone(todos)
		}
		next[i] = live
		actions = append(actions, model.UpdateAction(live.ID, model.Diff(t, live), now))
	}

	if next == nil {
		return unchanged(todos)
	}
	return Result{Todos: append(next, history...), Actions: actions}
}

func split(t model.Todo, now int64, newID func() string) (live, hist model.Todo, ok bool) {
	start, err := model.NextCycleKey(t.CycleAnchor(), t.Repeat)
	if err != nil {
		return t, t, false
	}
	end := ""
	if t.EndDate != "" {
		if end, err = model.NextCycleKey(t.EndDate, t.Repeat); err != nil {
			return t, t, false
		}
	}

	hist = t
	hist.ID = newID()
	hist.IsLongTerm = false
	hist.IsAllYear = false
	hist.IsMonth = false
	hist.Repeat = model.RepeatNone
	hist.StartDate = ""
	hist.EndDate = ""
	if hist.CompletedAt == 0 {
		hist.CompletedAt = now
	}
	hist.CreatedAt = now
	hist.UpdatedAt = now

	live = t
	live.Completed = false
	live.CompletedAt = 0
	live.TargetDate = start
	live.StartDate = start
	live.EndDate = end
	live.UpdatedAt = now
	return live, hist, true
}

func catchUp(t model.Todo, today string, now int64) (model.Todo, bool) {
	anchor := t.CycleAnchor()
	k, err := model.CyclesElapsed(anchor, today, t.Repeat)
	if err != nil || k < 1 {
		return t, false
	}
	start, err := model.AddCycles(anchor, t.Repeat, k)
	if err != nil || start <= anchor {
		return t, false
	}
	end := ""
	if t.EndDate != "" {
		if end, err = model.AddCycles(t.EndDate, t.Repeat, k); err != nil {
			return t, false
		}
	}
	// A todo already migrated to today stays there; only its cycle moves.
	t.TargetDate = max(start, t.TargetDate)
	t.StartDate = start
	t.EndDate = end
	t.UpdatedAt = now
	return t, true
}
