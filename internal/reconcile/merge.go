package reconcile

import "github.com/sandeepkv93/daybook/internal/model"

// MergeResult reports how a remote snapshot was folded into the local
// collection.
type MergeResult struct {
	Todos      []model.Todo
	RemoteWins int
	LocalWins  int
	Added      int
}

// MergeRemote combines local and remote by id with last-writer-wins on
// updatedAt. Local keeps its version only when strictly newer; ties go to the
// remote. Todos present only locally are kept (they may be pending upload)
// and todos present only remotely are appended in remote order.
func MergeRemote(local, remote []model.Todo) MergeResult {
	byID := make(map[string]model.Todo, len(remote))
	for _, r := range remote {
		byID[r.ID] = r
	}

	var res MergeResult
	res.Todos = make([]model.Todo, 0, len(local)+len(remote))
	seen := make(map[string]bool, len(local))
	for _, l := range local {
		seen[l.ID] = true
		r, ok := byID[l.ID]
		switch {
		case !ok:
			res.Todos = append(res.Todos, l)
		case l.UpdatedAt > r.UpdatedAt:
			res.LocalWins++
			res.Todos = append(res.Todos, l)
		default:
			if r != l {
				res.RemoteWins++
			}
			res.Todos = append(res.Todos, r)
		}
	}
	for _, r := range remote {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		res.Added++
		res.Todos = append(res.Todos, r)
	}
	return res
}
