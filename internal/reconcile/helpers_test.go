package reconcile

import (
	"fmt"
	"testing"

	"github.com/sandeepkv93/daybook/internal/model"
)

func todo(id, text, target string) model.Todo {
	return model.Todo{ID: id, Text: text, TargetDate: target, Repeat: model.RepeatNone, CreatedAt: 1, UpdatedAt: 1}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func ids(todos []model.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.ID
	}
	return out
}

func find(t *testing.T, todos []model.Todo, id string) model.Todo {
	t.Helper()
	for _, td := range todos {
		if td.ID == id {
			return td
		}
	}
	t.Fatalf("todo %q not found in %v", id, ids(todos))
	return model.Todo{}
}
