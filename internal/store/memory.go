package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pressroom.app/pressroom/internal/model"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryKV stores JSON snapshots so callers never share pointers with the store.
type memoryKV[T any] struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	locks     map[string]struct{}
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func newMemoryKV[T any](ttl time.Duration) *memoryKV[T] {
	return &memoryKV[T]{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]struct{}),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *memoryKV[T]) get(id string) (*T, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	var v T
	if err := json.Unmarshal(entry.data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return &v, nil
}

func (m *memoryKV[T]) save(id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.sweep()
	m.entries[id] = entry
	m.mu.Unlock()
	return nil
}

// sweep drops expired entries at most once per ttl. Callers hold m.mu.
func (m *memoryKV[T]) sweep() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	if now.Sub(m.lastSweep) < m.ttl {
		return
	}
	m.lastSweep = now
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
}

func (m *memoryKV[T]) delete(id string) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}

func (m *memoryKV[T]) lock(id string) (Unlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[id]; held {
		return nil, ErrSessionBusy
	}
	m.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.locks, id)
			m.mu.Unlock()
		})
	}, nil
}

type memorySessionStore struct {
	kv *memoryKV[model.SessionState]
}

// NewMemorySessionStore keeps sessions in process. A zero ttl never expires.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{kv: newMemoryKV[model.SessionState](ttl)}
}

func (s *memorySessionStore) Get(_ context.Context, id string) (*model.SessionState, error) {
	return s.kv.get(id)
}

func (s *memorySessionStore) Save(_ context.Context, state *model.SessionState) error {
	return s.kv.save(state.ID, state)
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.kv.delete(id)
	return nil
}

func (s *memorySessionStore) Lock(_ context.Context, id string) (Unlock, error) {
	return s.kv.lock(id)
}

type memoryThreadStore struct {
	kv *memoryKV[model.Thread]
}

func NewMemoryThreadStore(ttl time.Duration) ThreadStore {
	return &memoryThreadStore{kv: newMemoryKV[model.Thread](ttl)}
}

func (s *memoryThreadStore) Get(_ context.Context, id string) (*model.Thread, error) {
	return s.kv.get(id)
}

func (s *memoryThreadStore) Save(_ context.Context, thread *model.Thread) error {
	return s.kv.save(thread.ID, thread)
}

func (s *memoryThreadStore) Delete(_ context.Context, id string) error {
	s.kv.delete(id)
	return nil
}

func (s *memoryThreadStore) Lock(_ context.Context, id string) (Unlock, error) {
	return s.kv.lock(id)
}
