// Package reconcile holds the pure rules that keep a todo collection
// consistent with the calendar and with other replicas. Every function takes
// the current collection and returns a new one plus the sync actions that
// describe the difference. Nothing here reads the clock or touches storage;
// the caller supplies "today" and "now".
package reconcile

import "github.com/sandeepkv93/daybook/internal/model"

// Result is the outcome of a rule pass. Todos is the full next collection;
// when Actions is empty, Todos is the input slice itself.
type Result struct {
	Todos   []model.Todo
	Actions []model.SyncAction
}

// Changed reports whether the pass produced any sync action.
func (r Result) Changed() bool {
	return len(r.Actions) > 0
}

func unchanged(todos []model.Todo) Result {
	return Result{Todos: todos}
}

func clone(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	copy(out, todos)
	return out
}
