// Package app runs a daybook session: it owns the event loop that drives day
// rollover, remote fetches, connectivity probes and queue drains around one
// engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/daybook/internal/engine"
	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/remote"
	"github.com/sandeepkv93/daybook/internal/scheduler"
	"github.com/sandeepkv93/daybook/internal/syncer"
)

var (
	ErrLocalOnly      = errors.New("app: no remote store configured")
	ErrSyncIncomplete = errors.New("app: some sync actions failed")
)

const (
	DefaultFetchInterval = 5 * time.Minute
	DefaultProbeInterval = 30 * time.Second
)

type Options struct {
	Engine *engine.Engine
	// Remote is nil for a local-only session.
	Remote          remote.Store
	Clock           func() time.Time
	Location        *time.Location
	FetchInterval   time.Duration
	ProbeInterval   time.Duration
	SchedulerBuffer int
	Logger          *slog.Logger
}

// Status is a snapshot for status bars and the CLI.
type Status struct {
	Remote   bool
	Online   bool
	Pending  int
	LastSync time.Time
	LastErr  error
}

type Runtime struct {
	engine     *engine.Engine
	remote     remote.Store
	processor  *syncer.Processor
	monitor    *syncer.Monitor
	clock      func() time.Time
	loc        *time.Location
	fetchEvery time.Duration
	probeEvery time.Duration
	buffer     int
	logger     *slog.Logger

	syncMu sync.Mutex

	mu       sync.Mutex
	lastSync time.Time
	lastErr  error
	updates  chan Status
}

func New(opts Options) *Runtime {
	r := &Runtime{
		engine:     opts.Engine,
		remote:     opts.Remote,
		clock:      opts.Clock,
		loc:        opts.Location,
		fetchEvery: opts.FetchInterval,
		probeEvery: opts.ProbeInterval,
		buffer:     opts.SchedulerBuffer,
		logger:     opts.Logger,
		updates:    make(chan Status, 1),
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	if r.fetchEvery <= 0 {
		r.fetchEvery = DefaultFetchInterval
	}
	if r.probeEvery <= 0 {
		r.probeEvery = DefaultProbeInterval
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With(slog.String("component", "runtime"))
	if r.remote != nil {
		r.processor = syncer.NewProcessor(r.remote, r.logger)
		r.monitor = syncer.NewMonitor(probeFor(r.remote), r.logger)
	}
	return r
}

func probeFor(store remote.Store) func(context.Context) error {
	if p, ok := store.(remote.Pinger); ok {
		return p.Ping
	}
	return func(ctx context.Context) error {
		_, err := store.SelectAll(ctx)
		return err
	}
}

func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// Updates delivers the latest Status after each sync, fetch or rollover.
// Only the newest value is kept.
func (r *Runtime) Updates() <-chan Status {
	return r.updates
}

func (r *Runtime) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusLocked()
}

func (r *Runtime) statusLocked() Status {
	s := Status{
		Remote:   r.remote != nil,
		Pending:  len(r.engine.Pending()),
		LastSync: r.lastSync,
		LastErr:  r.lastErr,
	}
	if r.monitor != nil {
		s.Online = r.monitor.Online()
	}
	return s
}

func (r *Runtime) publish(err error, synced bool) {
	r.mu.Lock()
	if synced {
		r.lastSync = r.clock()
	}
	r.lastErr = err
	s := r.statusLocked()
	r.mu.Unlock()

	select {
	case <-r.updates:
	default:
	}
	select {
	case r.updates <- s:
	default:
	}
}

// Run drives the session until ctx is cancelled. The engine must already be
// loaded.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Rollover(ctx); err != nil {
		r.logger.Warn("startup reconciliation", slog.Any("error", err))
	}

	sched := scheduler.NewEngine(r.buffer)
	sched.Start()
	defer sched.Stop()

	now := r.clock()
	if err := sched.Schedule(scheduler.Event{Kind: scheduler.KindRollover, At: scheduler.NextMidnight(now, r.loc)}); err != nil {
		return err
	}
	if r.remote != nil {
		if err := sched.Schedule(scheduler.Event{Kind: scheduler.KindProbe, At: now}); err != nil {
			return err
		}
		if err := sched.Schedule(scheduler.Event{Kind: scheduler.KindFetch, At: now.Add(r.fetchEvery)}); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sched.C():
			if !ok {
				return scheduler.ErrStopped
			}
			r.handleEvent(ctx, sched, ev)
		case <-r.engine.Signal():
			if r.monitor != nil && r.monitor.Online() {
				r.SyncNow(ctx)
			}
		}
	}
}

func (r *Runtime) handleEvent(ctx context.Context, sched *scheduler.Engine, ev scheduler.Event) {
	now := r.clock()
	var next scheduler.Event
	switch ev.Kind {
	case scheduler.KindRollover:
		if err := r.Rollover(ctx); err != nil {
			r.logger.Warn("rollover reconciliation", slog.Any("error", err))
		}
		next = scheduler.Event{Kind: scheduler.KindRollover, At: scheduler.NextMidnight(now, r.loc)}
	case scheduler.KindFetch:
		if r.monitor.Online() {
			r.FetchNow(ctx)
		}
		next = scheduler.Event{Kind: scheduler.KindFetch, At: now.Add(r.fetchEvery)}
	case scheduler.KindProbe:
		r.Probe(ctx)
		next = scheduler.Event{Kind: scheduler.KindProbe, At: now.Add(r.probeEvery)}
	default:
		return
	}
	if err := sched.Reschedule(next); err != nil && !errors.Is(err, scheduler.ErrStopped) {
		r.logger.Error("reschedule", slog.String("kind", string(next.Kind)), slog.Any("error", err))
	}
}

// Rollover reconciles the collection against the current day.
func (r *Runtime) Rollover(ctx context.Context) error {
	passes, err := r.engine.ReconcileUntilStable(ctx)
	if passes > 0 {
		r.logger.Info("reconciled", slog.String("day", r.engine.Today()), slog.Int("passes", passes))
	}
	r.publish(err, false)
	return err
}

// Probe checks connectivity. Coming back online pushes the queue and then
// pulls the remote snapshot.
func (r *Runtime) Probe(ctx context.Context) bool {
	if r.monitor == nil {
		return false
	}
	tr, changed := r.monitor.Check(ctx)
	if changed && tr.Online {
		r.SyncNow(ctx)
		r.FetchNow(ctx)
	} else if changed {
		r.publish(tr.Err, false)
	}
	return tr.Online
}

// SyncNow drains the pending queue once. Failed actions go back to the front
// of the queue.
func (r *Runtime) SyncNow(ctx context.Context) (syncer.Report, error) {
	if r.processor == nil {
		return syncer.Report{}, ErrLocalOnly
	}
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	actions := r.engine.BeginSync()
	if len(actions) == 0 {
		r.publish(nil, true)
		return syncer.Report{}, nil
	}
	rep := r.processor.Drain(ctx, actions)
	r.engine.FinishSync(ctx, len(actions), rep.Failed)

	var err error
	if len(rep.Failed) > 0 {
		err = fmt.Errorf("%w: %d kept for retry", ErrSyncIncomplete, len(rep.Failed))
	}
	r.publish(err, len(rep.Failed) == 0)
	return rep, err
}

// FetchNow pulls every remote record and merges it into the collection.
// Records that cannot be decoded are skipped.
func (r *Runtime) FetchNow(ctx context.Context) (engine.RemoteSummary, error) {
	if r.remote == nil {
		return engine.RemoteSummary{}, ErrLocalOnly
	}
	records, err := r.remote.SelectAll(ctx)
	if err != nil {
		r.logger.Warn("fetch remote todos", slog.Any("error", err))
		r.publish(err, false)
		return engine.RemoteSummary{}, err
	}
	todos := make([]model.Todo, 0, len(records))
	for _, rec := range records {
		t, err := rec.ToTodo()
		if err != nil {
			r.logger.Warn("skipping remote record", slog.String("id", rec.ID), slog.Any("error", err))
			continue
		}
		todos = append(todos, t)
	}
	sum := r.engine.ApplyRemote(ctx, todos)
	r.publish(nil, false)
	return sum, nil
}
