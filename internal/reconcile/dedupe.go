package reconcile

import "github.com/sandeepkv93/daybook/internal/model"

// Deduplicate keeps one todo per (text, targetDate). A completed todo beats
// an open one; among equals the later updatedAt wins, and exact ties keep the
// earliest. Survivors stay in collection order.
func Deduplicate(todos []model.Todo) ([]model.Todo, []string) {
	winner := make(map[string]int, len(todos))
	for i, t := range todos {
		key := t.DedupKey()
		j, seen := winner[key]
		if !seen || beats(t, todos[j]) {
			winner[key] = i
		}
	}
	if len(winner) == len(todos) {
		return todos, nil
	}

	unique := make([]model.Todo, 0, len(winner))
	var removed []string
	for i, t := range todos {
		if winner[t.DedupKey()] == i {
			unique = append(unique, t)
			continue
		}
		removed = append(removed, t.ID)
	}
	return unique, removed
}

func beats(a, b model.Todo) bool {
	if a.Completed != b.Completed {
		return a.Completed
	}
	return a.UpdatedAt > b.UpdatedAt
}
