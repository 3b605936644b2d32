package remote

import (
	"context"
	"errors"
	"sync"
)

// MemoryStore is an in-process Store. Records keep insertion order.
type MemoryStore struct {
	mu      sync.Mutex
	order   []string
	records map[string]Record
	offline bool
	// FailIDs makes every mutation of the listed ids fail.
	FailIDs map[string]error
	Calls   []string
}

func NewMemoryStore(seed ...Record) *MemoryStore {
	m := &MemoryStore{records: make(map[string]Record), FailIDs: make(map[string]error)}
	for _, r := range seed {
		m.order = append(m.order, r.ID)
		m.records[r.ID] = r
	}
	return m
}

var ErrOffline = errors.New("remote: store offline")

// SetOffline makes every call fail until reset.
func (m *MemoryStore) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

func (m *MemoryStore) check(op, id string) error {
	m.Calls = append(m.Calls, op+" "+id)
	if m.offline {
		return ErrOffline
	}
	if err := m.FailIDs[id]; err != nil {
		return err
	}
	return nil
}

func (m *MemoryStore) Insert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("insert", rec.ID); err != nil {
		return err
	}
	if _, ok := m.records[rec.ID]; ok {
		return ErrConflict
	}
	m.order = append(m.order, rec.ID)
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("update", id); err != nil {
		return err
	}
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	next, err := rec.Apply(fields)
	if err != nil {
		return err
	}
	m.records[id] = next
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("delete", id); err != nil {
		return err
	}
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) SelectAll(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("select", "*"); err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return ErrOffline
	}
	return nil
}

// Get returns the stored record for id.
func (m *MemoryStore) Get(id string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}
