package reconcile

import "github.com/sandeepkv93/daybook/internal/model"

// Toggle flips the completion state of t.
//
// Completing a daily or weekly todo that is not long-term retires it instead:
// the current todo is closed with its repeat rule cleared, and a successor is
// returned that opens one interval later with its start/end span shifted by
// the same interval. The actions are the retirement UPDATE followed by the
// successor INSERT.
func Toggle(t model.Todo, now int64, newID func() string) (model.Todo, *model.Todo, []model.SyncAction, error) {
	if !t.Completed && !t.IsLongTerm && t.Repeat.IsShortCycle() {
		return retire(t, now, newID)
	}

	next := t
	next.Completed = !t.Completed
	next.CompletedAt = 0
	if next.Completed {
		next.CompletedAt = now
	}
	next.UpdatedAt = now
	return next, nil, []model.SyncAction{model.UpdateAction(t.ID, model.Diff(t, next), now)}, nil
}

func retire(t model.Todo, now int64, newID func() string) (model.Todo, *model.Todo, []model.SyncAction, error) {
	step := 1
	if t.Repeat == model.RepeatWeekly {
		step = 7
	}

	succ := t
	succ.ID = newID()
	succ.CompletedAt = 0
	succ.CreatedAt = now
	succ.UpdatedAt = now
	var err error
	if succ.TargetDate, err = model.AddDays(t.TargetDate, step); err != nil {
		return t, nil, nil, err
	}
	if t.StartDate != "" {
		if succ.StartDate, err = model.AddDays(t.StartDate, step); err != nil {
			return t, nil, nil, err
		}
	}
	if t.EndDate != "" {
		if succ.EndDate, err = model.AddDays(t.EndDate, step); err != nil {
			return t, nil, nil, err
		}
	}

	done := t
	done.Completed = true
	done.CompletedAt = now
	done.Repeat = model.RepeatNone
	done.UpdatedAt = now

	actions := []model.SyncAction{
		model.UpdateAction(t.ID, model.Diff(t, done), now),
		model.InsertAction(succ, now),
	}
	return done, &succ, actions, nil
}
