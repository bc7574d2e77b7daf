package cache

import (
	"context"
	"testing"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

func entryFor(k domain.Key, ttl time.Duration, now time.Time) domain.Entry {
	return domain.Entry{
		Key:       k,
		EDR:       domain.EDR{AssetID: k.AssetID, AuthToken: "tok"},
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemory_PutGetDelete(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	k := domain.Key{CounterpartyID: "BPNL1", AssetID: "a-1"}

	if _, ok, err := m.Get(ctx, k); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	e := entryFor(k, time.Minute, time.Now())
	if err := m.Put(ctx, e); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok, err := m.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.EDR.AuthToken != "tok" {
		t.Fatalf("bad entry: %+v", got)
	}

	if err := m.Delete(ctx, k); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := m.Get(ctx, k); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemory_LazyExpiry(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	base := time.Now()
	m.now = func() time.Time { return base }

	ctx := context.Background()
	k := domain.Key{CounterpartyID: "BPNL1", AssetID: "a-1"}
	if err := m.Put(ctx, entryFor(k, 60*time.Second, base)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if _, ok, _ := m.Get(ctx, k); !ok {
		t.Fatalf("expected hit inside TTL")
	}

	// jump past the TTL; the entry must be dropped on the next Get
	m.mu.Lock()
	m.now = func() time.Time { return base.Add(61 * time.Second) }
	m.mu.Unlock()

	if _, ok, _ := m.Get(ctx, k); ok {
		t.Fatalf("expected miss past TTL")
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry not removed, len=%d", m.Len())
	}
}
