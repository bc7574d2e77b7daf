//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/repokit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/edr/domain"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const createTable = `
CREATE TABLE IF NOT EXISTS edr_cache (
	counterparty_id    TEXT NOT NULL,
	asset_id           TEXT NOT NULL,
	negotiation_id     TEXT NOT NULL,
	transfer_id        TEXT NOT NULL,
	data_plane_url     TEXT NOT NULL,
	control_plane_url  TEXT NOT NULL,
	edr_asset_id       TEXT NOT NULL DEFAULT '',
	auth_token         TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	expires_at         TIMESTAMPTZ NOT NULL,
	policy_fingerprint TEXT NOT NULL DEFAULT '',
	requester          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (counterparty_id, asset_id)
)`

func entryAt(k domain.Key, token string, ttl time.Duration) domain.Entry {
	now := time.Now().UTC().Truncate(time.Microsecond) // pg timestamptz resolution
	return domain.Entry{
		Key: k,
		EDR: domain.EDR{
			NegotiationID:   "neg-1",
			TransferID:      "tp-1",
			DataPlaneURL:    "http://provider-dataplane:8185/api/public",
			ControlPlaneURL: "http://provider-controlplane:8282",
			AssetID:         "asset-concrete",
			CreatedAt:       now,
			AuthToken:       token,
		},
		ExpiresAt:         now.Add(ttl),
		PolicyFingerprint: "ff00",
		Requester:         "svc-a",
	}
}

func TestPGStore_Integration_UpsertExpiryDelete(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if _, err := s.PG.Exec(ctx, createTable); err != nil {
		t.Fatalf("create table: %v", err)
	}

	repo := repokit.MustBind(NewPG(), s.PG)
	k := domain.Key{CounterpartyID: "BPNL000000000001", AssetID: "cx-taxo:IndustryFlagService"}

	// clean miss
	if _, ok, err := repo.Get(ctx, k); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	// put + get round trip
	e := entryAt(k, "tok-1", time.Hour)
	if err := repo.Put(ctx, e); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := repo.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.EDR.AuthToken != "tok-1" || got.EDR.AssetID != "asset-concrete" ||
		got.PolicyFingerprint != "ff00" || got.Requester != "svc-a" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.EDR.CreatedAt.Equal(e.EDR.CreatedAt) || !got.ExpiresAt.Equal(e.ExpiresAt) {
		t.Fatalf("time round trip mismatch: %+v", got)
	}

	// upsert replaces the row in place
	e2 := entryAt(k, "tok-2", time.Hour)
	e2.Requester = "svc-b"
	if err := repo.Put(ctx, e2); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, ok, err = repo.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("expected hit after upsert, got ok=%v err=%v", ok, err)
	}
	if got.EDR.AuthToken != "tok-2" || got.Requester != "svc-b" {
		t.Fatalf("upsert did not replace: %+v", got)
	}
	var count int
	if err := s.PG.QueryRow(ctx,
		`SELECT count(*) FROM edr_cache WHERE counterparty_id=$1 AND asset_id=$2`,
		k.CounterpartyID, k.AssetID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}

	// expired rows are invisible to Get
	stale := domain.Key{CounterpartyID: "BPNL000000000001", AssetID: "stale"}
	se := entryAt(stale, "tok-old", -time.Minute)
	if err := repo.Put(ctx, se); err != nil {
		t.Fatalf("put stale: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, stale); ok {
		t.Fatalf("expired entry must be a miss")
	}

	// delete
	if err := repo.Delete(ctx, k); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, k); ok {
		t.Fatalf("expected miss after delete")
	}
	// deleting an absent key is not an error
	if err := repo.Delete(ctx, k); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}
