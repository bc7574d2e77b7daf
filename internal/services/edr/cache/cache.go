package cache

import (
	"context"
	"sync"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// flight is the awaitable handle for one in-flight fill. The result fields
// are written before done is closed and never after.
type flight struct {
	done  chan struct{}
	entry domain.Entry
	err   error
}

// Cache fronts a store with a per-key single-flight group. Reads and writes
// delegate to the store; Do admits at most one fill per key at a time.
type Cache struct {
	store domain.CachePort

	mu     sync.Mutex
	flight map[domain.Key]*flight
}

// New wraps the given store
func New(store domain.CachePort) *Cache {
	return &Cache{store: store, flight: make(map[domain.Key]*flight)}
}

// Get delegates to the store
func (c *Cache) Get(ctx context.Context, k domain.Key) (domain.Entry, bool, error) {
	return c.store.Get(ctx, k)
}

// Put delegates to the store
func (c *Cache) Put(ctx context.Context, e domain.Entry) error {
	return c.store.Put(ctx, e)
}

// Delete delegates to the store
func (c *Cache) Delete(ctx context.Context, k domain.Key) error {
	return c.store.Delete(ctx, k)
}

// Do runs fn at most once per key across concurrent callers; everyone gets
// the same entry or the same error. The handle is removed on completion, so
// a later call starts a fresh fill.
//
// fn runs detached from any single caller's cancellation: a waiter whose ctx
// ends stops waiting with ctx.Err(), but the shared fill keeps going and its
// result still lands in the store. The fill bounds its own lifetime.
func (c *Cache) Do(ctx context.Context, k domain.Key, fn func(ctx context.Context) (domain.Entry, error)) (domain.Entry, error) {
	c.mu.Lock()
	if f, ok := c.flight[k]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.entry, f.err
		case <-ctx.Done():
			return domain.Entry{}, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	c.flight[k] = f
	c.mu.Unlock()

	go func() {
		f.entry, f.err = fn(context.WithoutCancel(ctx))
		c.mu.Lock()
		delete(c.flight, k)
		c.mu.Unlock()
		close(f.done)
	}()

	select {
	case <-f.done:
		return f.entry, f.err
	case <-ctx.Done():
		return domain.Entry{}, ctx.Err()
	}
}
