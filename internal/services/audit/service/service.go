// Package service implements the audit trail: a buffered best-effort
// recorder in front of the event store, plus the ops listing
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/scope"
	perr "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/errors"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/domain"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/audit/repo"
)

const (
	defaultQueueSize  = 1024
	defaultBatchSize  = 64
	defaultFlushEvery = 2 * time.Second
	flushTimeout      = 5 * time.Second

	defaultListLimit = 100
	maxListLimit     = 1000
)

var _ domain.ServicePort = (*Svc)(nil)

// Config tunes the recorder's write pipeline
type Config struct {
	QueueSize  int
	BatchSize  int
	FlushEvery time.Duration
}

// Svc buffers events and flushes them to the store in batches. A nil store
// turns the recorder into a log-only sink and makes List report the trail
// as disabled.
type Svc struct {
	store repo.Storage
	cfg   Config
	log   logger.Logger
	now   func() time.Time
	newID func() string

	queue   chan domain.Event
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New constructs the audit service and starts the writer when a store is
// configured. store may be nil.
func New(store repo.Storage, cfg Config) *Svc {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = defaultFlushEvery
	}

	s := &Svc{
		store: store,
		cfg:   cfg,
		log:   *logger.Named("audit"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	if store != nil {
		s.queue = make(chan domain.Event, cfg.QueueSize)
		s.done = make(chan struct{})
		s.stopped = make(chan struct{})
		go s.run()
	}
	return s
}

// Record fills missing identity fields and enqueues the event. Counterparty
// attributes left empty are taken from the request scope, so emitters only
// set what varies between events. Recording is best effort: a full queue
// drops the event with a warning, and store failures are logged by the
// writer, never returned.
func (s *Svc) Record(ctx context.Context, e domain.Event) {
	if e.ID == "" {
		e.ID = s.newID()
	}
	if e.At.IsZero() {
		e.At = s.now().UTC()
	}
	if e.BPN == "" {
		e.BPN, _ = scope.Get(ctx, "bpn")
	}
	if e.CounterpartyAddress == "" {
		e.CounterpartyAddress, _ = scope.Get(ctx, "counterparty")
	}
	if e.AssetID == "" {
		e.AssetID, _ = scope.Get(ctx, "asset")
	}

	if s.store == nil {
		s.log.Debug().
			Str("kind", string(e.Kind)).
			Str("bpn", e.BPN).
			Str("asset", e.AssetID).
			Msg("audit event (store disabled)")
		return
	}

	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.queue <- e:
	default:
		s.log.Warn().Str("kind", string(e.Kind)).Msg("audit queue full, event dropped")
	}
}

// List returns events matching q, newest first
func (s *Svc) List(ctx context.Context, q domain.Query) ([]domain.Event, error) {
	if s.store == nil {
		return nil, perr.Unavailablef("audit trail disabled: no event store configured")
	}
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, perr.InvalidArgf("unknown audit kind %q", q.Kind)
	}
	if !q.Since.IsZero() && !q.Until.IsZero() && !q.Until.After(q.Since) {
		return nil, perr.InvalidArgf("until must be after since")
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	return s.store.List(ctx, q)
}

// Close stops the writer after flushing everything already queued
func (s *Svc) Close(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.once.Do(func() { close(s.done) })
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the single writer: it batches queued events and flushes on size,
// interval, and shutdown
func (s *Svc) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.FlushEvery)
	defer ticker.Stop()

	batch := make([]domain.Event, 0, s.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := s.store.Append(ctx, batch); err != nil {
			s.log.Warn().Err(err).Int("events", len(batch)).Msg("audit flush failed")
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case e := <-s.queue:
			batch = append(batch, e)
			if len(batch) >= s.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case e := <-s.queue:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
