// Package syncer pushes queued mutations to the remote store and tracks
// whether the remote store is reachable.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/remote"
)

// Report summarises one drain of the queue.
type Report struct {
	Applied int
	// Dropped counts updates whose record no longer exists remotely.
	Dropped int
	// Failed holds the actions to keep, in their original order.
	Failed []model.SyncAction
}

type Processor struct {
	remote remote.Store
	logger *slog.Logger
}

func NewProcessor(store remote.Store, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{remote: store, logger: logger}
}

// Drain applies actions in order. Each action is attempted once; failures
// are returned for the caller to requeue ahead of anything queued since.
// After a failure, later actions for the same todo are held back unsent so
// they replay behind it. Once ctx is done the remaining actions are returned
// untouched.
func (p *Processor) Drain(ctx context.Context, actions []model.SyncAction) Report {
	var rep Report
	held := make(map[string]bool)
	for i, a := range actions {
		if ctx.Err() != nil {
			rep.Failed = append(rep.Failed, actions[i:]...)
			break
		}
		if held[a.ID] {
			rep.Failed = append(rep.Failed, a)
			continue
		}
		err := p.apply(ctx, a)
		switch {
		case err == nil:
			rep.Applied++
		case a.Type == model.ActionUpdate && errors.Is(err, remote.ErrNotFound):
			rep.Dropped++
			p.logger.Warn("dropping update for missing remote todo", slog.String("id", a.ID))
		default:
			rep.Failed = append(rep.Failed, a)
			held[a.ID] = true
			p.logger.Warn("sync action failed",
				slog.String("id", a.ID),
				slog.String("type", string(a.Type)),
				slog.Any("error", err),
			)
		}
	}
	p.logger.Debug("sync drain finished",
		slog.Int("applied", rep.Applied),
		slog.Int("dropped", rep.Dropped),
		slog.Int("failed", len(rep.Failed)),
	)
	return rep
}

func (p *Processor) apply(ctx context.Context, a model.SyncAction) error {
	switch a.Type {
	case model.ActionInsert:
		err := p.remote.Insert(ctx, remote.FromTodo(a.Todo, a.Timestamp))
		if errors.Is(err, remote.ErrConflict) {
			// An earlier attempt landed without us seeing the response.
			return p.remote.Update(ctx, a.ID, remote.FieldsFromPatch(model.FullPatch(a.Todo), a.Timestamp))
		}
		return err
	case model.ActionUpdate:
		return p.remote.Update(ctx, a.ID, remote.FieldsFromPatch(a.Patch, a.Timestamp))
	case model.ActionDelete:
		err := p.remote.Delete(ctx, a.ID)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("%w: type %q", model.ErrInvalidAction, a.Type)
	}
}
