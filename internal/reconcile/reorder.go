package reconcile

import (
	"slices"

	"github.com/sandeepkv93/daybook/internal/model"
)

// Reorder rearranges the todos named by orderedIDs without moving anything
// else: the slots those todos occupy are refilled in the given order. Unknown
// and repeated ids are ignored.
func Reorder(todos []model.Todo, orderedIDs []string) []model.Todo {
	index := make(map[string]int, len(todos))
	for i, t := range todos {
		index[t.ID] = i
	}

	var order []int
	picked := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		i, ok := index[id]
		if !ok || picked[id] {
			continue
		}
		picked[id] = true
		order = append(order, i)
	}
	if len(order) < 2 {
		return todos
	}

	slots := slices.Clone(order)
	slices.Sort(slots)

	out := clone(todos)
	for n, slot := range slots {
		out[slot] = todos[order[n]]
	}
	return out
}
