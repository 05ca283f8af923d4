package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

// medium is the state shared by sibling MemoryStores.
type medium struct {
	mu    sync.RWMutex
	data  map[string]string
	size  int
	quota int

	subMu sync.RWMutex
	subs  map[*memorySub]struct{}
}

type memorySub struct {
	origin string
	ch     chan Change
	done   <-chan struct{}
}

// MemoryStore is an ephemeral Store. It backs the process when persistent
// storage is unavailable, and Attach lets tests model several tabs.
type MemoryStore struct {
	medium *medium
	origin string
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*medium)

// WithQuota limits the total bytes of keys plus values. Writes beyond it fail
// with ErrQuotaExceeded. Zero means unlimited.
func WithQuota(bytes int) MemoryOption {
	return func(m *medium) { m.quota = bytes }
}

// NewMemoryStore creates a store on a fresh medium.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &medium{
		data: make(map[string]string),
		subs: make(map[*memorySub]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return &MemoryStore{medium: m, origin: uuid.NewString()}
}

// Attach returns a store for another tab sharing the same medium.
func (s *MemoryStore) Attach() *MemoryStore {
	return &MemoryStore{medium: s.medium, origin: uuid.NewString()}
}

// Origin implements Store.
func (s *MemoryStore) Origin() string {
	return s.origin
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.medium.mu.RLock()
	defer s.medium.mu.RUnlock()

	v, ok := s.medium.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	m := s.medium
	m.mu.Lock()
	size := m.size + len(value)
	if old, ok := m.data[key]; ok {
		size -= len(old)
	} else {
		size += len(key)
	}
	if m.quota > 0 && size > m.quota {
		m.mu.Unlock()
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.size = size
	m.mu.Unlock()

	v := value
	m.notify(ctx, Change{Key: key, NewValue: &v, Origin: s.origin})
	return nil
}

// Remove implements Store.
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	m := s.medium
	m.mu.Lock()
	old, ok := m.data[key]
	if ok {
		delete(m.data, key)
		m.size -= len(key) + len(old)
	}
	m.mu.Unlock()

	if ok {
		m.notify(ctx, Change{Key: key, Origin: s.origin})
	}
	return nil
}

// Subscribe implements Store.
func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan Change, error) {
	sub := &memorySub{
		origin: s.origin,
		ch:     make(chan Change, subscriberBuffer),
		done:   ctx.Done(),
	}

	m := s.medium
	m.subMu.Lock()
	m.subs[sub] = struct{}{}
	m.subMu.Unlock()

	go func() {
		<-ctx.Done()
		m.subMu.Lock()
		delete(m.subs, sub)
		m.subMu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

// notify delivers c to every subscriber of another origin. The read lock
// keeps a subscriber from being closed mid-send; a subscriber that is
// shutting down is skipped through its done channel.
func (m *medium) notify(ctx context.Context, c Change) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for sub := range m.subs {
		if sub.origin == c.Origin {
			continue
		}
		select {
		case sub.ch <- c:
		case <-sub.done:
		case <-ctx.Done():
		}
	}
}
