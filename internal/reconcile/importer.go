package reconcile

import (
	"strings"

	"github.com/sandeepkv93/daybook/internal/model"
)

type ImportResult struct {
	Result
	Inserted int
	Updated  int
	Skipped  int
}

// MergeImport folds incoming into existing. A row matches an existing todo by
// id first, then by (text, targetDate); a match is replaced wholesale under
// the existing id. Rows also match earlier rows of the same batch. Every
// imported todo is stamped with now.
func MergeImport(existing, incoming []model.Todo, now int64, newID func() string) ImportResult {
	out := clone(existing)
	byID := make(map[string]int, len(out))
	byKey := make(map[string]int, len(out))
	for i, t := range out {
		byID[t.ID] = i
		byKey[t.DedupKey()] = i
	}

	var res ImportResult
	for _, in := range incoming {
		in.Text = strings.TrimSpace(in.Text)
		if in.Text == "" || !model.IsDayKey(in.TargetDate) {
			res.Skipped++
			continue
		}
		in.Repeat = in.Repeat.Normalize()
		if !in.Completed {
			in.CompletedAt = 0
		} else if in.CompletedAt == 0 {
			in.CompletedAt = now
		}
		in.UpdatedAt = now

		idx, ok := -1, false
		if in.ID != "" {
			idx, ok = byID[in.ID]
		}
		if !ok {
			idx, ok = byKey[in.DedupKey()]
		}

		if ok {
			prev := out[idx]
			in.ID = prev.ID
			if in.CreatedAt == 0 {
				in.CreatedAt = prev.CreatedAt
			}
			if byKey[prev.DedupKey()] == idx {
				delete(byKey, prev.DedupKey())
			}
			out[idx] = in
			byKey[in.DedupKey()] = idx
			res.Actions = append(res.Actions, model.UpdateAction(in.ID, model.FullPatch(in), now))
			res.Updated++
			continue
		}

		if in.ID == "" {
			in.ID = newID()
		}
		if in.CreatedAt == 0 {
			in.CreatedAt = now
		}
		out = append(out, in)
		byID[in.ID] = len(out) - 1
		byKey[in.DedupKey()] = len(out) - 1
		res.Actions = append(res.Actions, model.InsertAction(in, now))
		res.Inserted++
	}
	res.Todos = out
	return res
}
