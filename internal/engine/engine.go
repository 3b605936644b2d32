// Package engine owns the todo collection and the pending sync queue. Every
// operation applies its change, runs the reconciliation rules until they stop
// producing work, and persists both documents.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/reconcile"
	"github.com/sandeepkv93/daybook/internal/storage"
)

const DefaultMaxPasses = 16

var (
	ErrTodoNotFound = errors.New("engine: todo not found")
	ErrNotConverged = errors.New("engine: reconciliation did not converge")
)

type Options struct {
	Store     storage.KV
	Clock     func() time.Time
	Location  *time.Location
	NewID     func() string
	Logger    *slog.Logger
	MaxPasses int
}

type Engine struct {
	store     storage.KV
	clock     func() time.Time
	loc       *time.Location
	newID     func() string
	logger    *slog.Logger
	maxPasses int

	mu     sync.Mutex
	todos  []model.Todo
	queue  []model.SyncAction
	signal chan struct{}
}

func New(opts Options) *Engine {
	e := &Engine{
		store:     opts.Store,
		clock:     opts.Clock,
		loc:       opts.Location,
		newID:     opts.NewID,
		logger:    opts.Logger,
		maxPasses: opts.MaxPasses,
		signal:    make(chan struct{}, 1),
	}
	if e.store == nil {
		e.store = storage.NewMemoryKV()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.newID == nil {
		e.newID = model.NewID
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With(slog.String("component", "engine"))
	if e.maxPasses <= 0 {
		e.maxPasses = DefaultMaxPasses
	}
	return e
}

// Today is the current local day key.
func (e *Engine) Today() string {
	return model.DayKey(e.clock().In(e.loc))
}

func (e *Engine) now() int64 {
	return model.Millis(e.clock())
}

// Signal fires (coalesced) whenever an operation leaves work in the queue.
func (e *Engine) Signal() <-chan struct{} {
	return e.signal
}

func (e *Engine) Todos() []model.Todo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.todos)
}

func (e *Engine) Pending() []model.SyncAction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.queue)
}

func (e *Engine) Get(id string) (model.Todo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexOf(id); i >= 0 {
		return e.todos[i], true
	}
	return model.Todo{}, false
}

// Agenda lists the todos that belong on day in collection order.
func (e *Engine) Agenda(day string) []model.Todo {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Todo
	for _, t := range e.todos {
		if t.OnDay(day) {
			out = append(out, t)
		}
	}
	return out
}

// Load reads the persisted collection and queue. Missing documents mean an
// empty start; unreadable JSON is logged and discarded.
func (e *Engine) Load(ctx context.Context) error {
	todos, err := loadDoc[[]model.Todo](ctx, e, storage.KeyTodos)
	if err != nil {
		return err
	}
	queue, err := loadDoc[[]model.SyncAction](ctx, e, storage.KeyQueue)
	if err != nil {
		return err
	}
	for i := range todos {
		todos[i].Repeat = todos[i].Repeat.Normalize()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.todos = todos
	e.queue = queue
	e.logger.Info("loaded local state", slog.Int("todos", len(todos)), slog.Int("pending", len(queue)))
	e.settleLocked(ctx)
	return nil
}

func loadDoc[T any](ctx context.Context, e *Engine, key string) (T, error) {
	var out T
	raw, err := e.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		e.logger.Error("discarding unreadable local document", slog.String("key", key), slog.Any("error", err))
		var zero T
		return zero, nil
	}
	return out, nil
}

// Add creates a todo on day. A day in the past is moved to today.
func (e *Engine) Add(ctx context.Context, text, day string) (model.Todo, error) {
	return e.AddTodo(ctx, model.Todo{Text: text, TargetDate: day})
}

// AddTodo creates a todo from draft. Identity, completion and timestamps of
// the draft are ignored.
func (e *Engine) AddTodo(ctx context.Context, draft model.Todo) (model.Todo, error) {
	draft.Text = strings.TrimSpace(draft.Text)
	if draft.Text == "" {
		return model.Todo{}, model.ErrEmptyText
	}
	if !model.IsDayKey(draft.TargetDate) {
		return model.Todo{}, fmt.Errorf("%w: %q", model.ErrInvalidDateKey, draft.TargetDate)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	if today := e.Today(); draft.TargetDate < today {
		draft.TargetDate = today
	}
	draft.ID = e.newID()
	draft.Completed = false
	draft.CompletedAt = 0
	draft.Repeat = draft.Repeat.Normalize()
	draft.CreatedAt = now
	draft.UpdatedAt = now
	if err := draft.Validate(); err != nil {
		return model.Todo{}, err
	}

	e.todos = append(slices.Clip(e.todos), draft)
	e.enqueue(model.InsertAction(draft, now))
	e.settleLocked(ctx)
	if i := e.indexOf(draft.ID); i >= 0 {
		return e.todos[i], nil
	}
	return draft, nil
}

// Toggle flips completion. Completing a daily or weekly todo retires it and
// opens its successor one interval later.
func (e *Engine) Toggle(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	next, successor, actions, err := reconcile.Toggle(e.todos[i], e.now(), e.newID)
	if err != nil {
		return err
	}
	todos := slices.Clone(e.todos)
	todos[i] = next
	if successor != nil {
		todos = append(todos, *successor)
	}
	e.todos = todos
	e.enqueue(actions...)
	e.settleLocked(ctx)
	return nil
}

func (e *Engine) Update(ctx context.Context, id, text string) error {
	return e.UpdateFields(ctx, id, model.FieldPatch{Text: &text})
}

// UpdateFields applies patch to the todo with id. Only fields that actually
// change are sent to the remote store.
func (e *Engine) UpdateFields(ctx context.Context, id string, patch model.FieldPatch) error {
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return model.ErrEmptyText
		}
		patch.Text = &text
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	cur := e.todos[i]
	now := e.now()

	next := patch.Apply(cur)
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.Repeat = next.Repeat.Normalize()
	switch {
	case !next.Completed:
		next.CompletedAt = 0
	case next.CompletedAt == 0:
		next.CompletedAt = now
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = cur.UpdatedAt
	if next == cur {
		return nil
	}
	next.UpdatedAt = now

	todos := slices.Clone(e.todos)
	todos[i] = next
	e.todos = todos
	e.enqueue(model.UpdateAction(id, model.Diff(cur, next), now))
	e.settleLocked(ctx)
	return nil
}

func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
	}
	e.todos = slices.Delete(slices.Clone(e.todos), i, i+1)
	e.enqueue(model.DeleteAction(id, e.now()))
	e.settleLocked(ctx)
	return nil
}

// DeleteAll empties the collection with one DELETE per todo.
func (e *Engine) DeleteAll(ctx context.Context) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.todos)
	if n == 0 {
		return 0
	}
	now := e.now()
	for _, t := range e.todos {
		e.enqueue(model.DeleteAction(t.ID, now))
	}
	e.todos = nil
	e.persistLocked(ctx)
	e.notifyLocked()
	return n
}

// Reorder rearranges the listed todos within the slots they occupy. The
// order is local to this device and is never sent to the remote store.
func (e *Engine) Reorder(ctx context.Context, orderedIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.todos = reconcile.Reorder(e.todos, orderedIDs)
	e.persistLocked(ctx)
}

type ImportSummary struct {
	Inserted int
	Updated  int
	Skipped  int
	Migrated int
}

// Import merges an external batch and immediately rolls overdue rows to today.
func (e *Engine) Import(ctx context.Context, items []model.Todo) ImportSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	res := reconcile.MergeImport(e.todos, items, now, e.newID)
	mig := reconcile.Migrate(res.Todos, e.Today(), now)
	e.todos = mig.Todos
	e.enqueue(res.Actions...)
	e.enqueue(mig.Actions...)
	e.logger.Info("imported todos",
		slog.Int("inserted", res.Inserted),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
		slog.Int("migrated", len(mig.Actions)),
	)
	e.settleLocked(ctx)
	return ImportSummary{Inserted: res.Inserted, Updated: res.Updated, Skipped: res.Skipped, Migrated: len(mig.Actions)}
}

// Deduplicate removes repeated (text, targetDate) entries and returns the
// removed ids.
func (e *Engine) Deduplicate(ctx context.Context) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	unique, removed := reconcile.Deduplicate(e.todos)
	if len(removed) == 0 {
		return nil
	}
	now := e.now()
	e.todos = unique
	for _, id := range removed {
		e.enqueue(model.DeleteAction(id, now))
	}
	e.logger.Info("removed duplicate todos", slog.Int("count", len(removed)))
	e.settleLocked(ctx)
	return removed
}

type RemoteSummary struct {
	RemoteWins int
	LocalWins  int
	Added      int
}

// ApplyRemote folds a remote snapshot into the collection. Records with a
// pending local delete are ignored so they are not resurrected before the
// delete reaches the remote store.
func (e *Engine) ApplyRemote(ctx context.Context, records []model.Todo) RemoteSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	deleting := make(map[string]bool)
	for _, a := range e.queue {
		if a.Type == model.ActionDelete {
			deleting[a.ID] = true
		}
	}
	incoming := slices.DeleteFunc(slices.Clone(records), func(t model.Todo) bool {
		return deleting[t.ID]
	})

	res := reconcile.MergeRemote(e.todos, incoming)
	e.todos = res.Todos
	e.logger.Debug("merged remote snapshot",
		slog.Int("remote_wins", res.RemoteWins),
		slog.Int("local_wins", res.LocalWins),
		slog.Int("added", res.Added),
	)
	e.settleLocked(ctx)
	return RemoteSummary{RemoteWins: res.RemoteWins, LocalWins: res.LocalWins, Added: res.Added}
}

// ReconcileUntilStable runs migration then recurrence advancement until a
// pass changes nothing, and reports how many passes made changes.
func (e *Engine) ReconcileUntilStable(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	passes, err := e.reconcileLocked()
	if passes > 0 {
		e.persistLocked(ctx)
	}
	e.notifyLocked()
	return passes, err
}

// BeginSync returns the queue as it stands. The caller reports back through
// FinishSync with the number of actions it took.
func (e *Engine) BeginSync() []model.SyncAction {
	return e.Pending()
}

// FinishSync replaces the first taken actions with failed, keeping anything
// queued while the drain ran behind them.
func (e *Engine) FinishSync(ctx context.Context, taken int, failed []model.SyncAction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	taken = min(max(taken, 0), len(e.queue))
	rest := e.queue[taken:]
	queue := make([]model.SyncAction, 0, len(failed)+len(rest))
	queue = append(queue, failed...)
	e.queue = append(queue, rest...)
	e.persistLocked(ctx)
}

func (e *Engine) reconcileLocked() (int, error) {
	if len(e.todos) == 0 {
		return 0, nil
	}
	today := e.Today()
	now := e.now()
	for pass := 0; pass < e.maxPasses; pass++ {
		mig := reconcile.Migrate(e.todos, today, now)
		adv := reconcile.Advance(mig.Todos, today, now, e.newID)
		if !mig.Changed() && !adv.Changed() {
			return pass, nil
		}
		e.todos = adv.Todos
		e.enqueue(mig.Actions...)
		e.enqueue(adv.Actions...)
		e.logger.Debug("reconcile pass",
			slog.Int("pass", pass+1),
			slog.Int("migrated", len(mig.Actions)),
			slog.Int("advanced", len(adv.Actions)),
		)
	}
	return e.maxPasses, fmt.Errorf("%w after %d passes", ErrNotConverged, e.maxPasses)
}

func (e *Engine) settleLocked(ctx context.Context) {
	if _, err := e.reconcileLocked(); err != nil {
		e.logger.Warn("reconciliation stopped early", slog.Any("error", err))
	}
	e.persistLocked(ctx)
	e.notifyLocked()
}

// persistLocked writes both documents. Failures are logged; the in-memory
// state stays authoritative.
func (e *Engine) persistLocked(ctx context.Context) {
	todos := e.todos
	if todos == nil {
		todos = []model.Todo{}
	}
	queue := e.queue
	if queue == nil {
		queue = []model.SyncAction{}
	}
	e.writeDoc(ctx, storage.KeyTodos, todos)
	e.writeDoc(ctx, storage.KeyQueue, queue)
}

func (e *Engine) writeDoc(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		e.logger.Error("encode local document", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := e.store.Put(ctx, key, raw); err != nil {
		e.logger.Error("persist local document", slog.String("key", key), slog.Any("error", err))
	}
}

func (e *Engine) notifyLocked() {
	if len(e.queue) == 0 {
		return
	}
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *Engine) enqueue(actions ...model.SyncAction) {
	if len(actions) == 0 {
		return
	}
	e.queue = append(slices.Clip(e.queue), actions...)
}

func (e *Engine) indexOf(id string) int {
	return slices.IndexFunc(e.todos, func(t model.Todo) bool { return t.ID == id })
}
