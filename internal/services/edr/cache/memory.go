// Package cache provides the in-memory EDR store and the single-flight
// front that serializes negotiations per key
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// Memory is the default EDR store: a mutex-guarded map with lazy TTL expiry.
// There is no background sweep; expired entries are dropped on Get.
type Memory struct {
	mu      sync.Mutex
	entries map[domain.Key]domain.Entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{entries: make(map[domain.Key]domain.Entry), now: time.Now}
}

// Get returns the live entry for k; an expired entry is removed and
// reported as a miss
func (m *Memory) Get(_ context.Context, k domain.Key) (domain.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[k]
	if !ok {
		return domain.Entry{}, false, nil
	}
	if e.Expired(m.now()) {
		delete(m.entries, k)
		return domain.Entry{}, false, nil
	}
	return e, true, nil
}

// Put stores or replaces the entry under its key
func (m *Memory) Put(_ context.Context, e domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.Key] = e
	return nil
}

// Delete removes the entry for k if present
func (m *Memory) Delete(_ context.Context, k domain.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, k)
	return nil
}

// Len reports the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
