package syncer

import (
	"context"
	"log/slog"
	"sync"
)

// Transition is a change in remote reachability.
type Transition struct {
	Online bool
	Err    error
}

// Monitor remembers the last probe outcome and reports flips.
type Monitor struct {
	probe  func(context.Context) error
	logger *slog.Logger

	mu     sync.Mutex
	online bool
	known  bool
}

func NewMonitor(probe func(context.Context) error, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{probe: probe, logger: logger}
}

// Check probes once. ok is true when the state differs from the previous
// probe; the first probe always counts as a transition.
func (m *Monitor) Check(ctx context.Context) (Transition, bool) {
	err := m.probe(ctx)
	online := err == nil

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.known && m.online == online {
		return Transition{Online: online, Err: err}, false
	}
	m.known = true
	m.online = online
	if online {
		m.logger.Info("remote store reachable")
	} else {
		m.logger.Warn("remote store unreachable", slog.Any("error", err))
	}
	return Transition{Online: online, Err: err}, true
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}
