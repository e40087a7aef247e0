package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache stores JSON-encoded read models scoped to a user. Invalidate drops
// every entry of the user at once.
type Cache interface {
	Get(ctx context.Context, userID, key string, dest any) (bool, error)
	Set(ctx context.Context, userID, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
	Close() error
}

// Noop never stores anything. It is used when no cache is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, string, any, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context, string) error { return nil }
func (Noop) Close() error { return nil }

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process Cache, handy for tests and single-process use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, userID, key string, dest any) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[userID][key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, userID, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[userID] == nil {
		m.entries[userID] = make(map[string]memoryEntry)
	}
	m.entries[userID][key] = entry
	return nil
}

func (m *Memory) Invalidate(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
