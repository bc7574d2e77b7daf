// @title         Tractus-X EDC Consumer API
// @version       0.1.0
// @description   Consumer-side connector client: catalog queries, contract negotiation, EDR caching, and a data-plane proxy

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/adapters/connector"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/core/version"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	phttp "github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/net/http"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"

	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (EDC_*)
	root := config.New()
	edcCfg := root.Prefix("EDC_")

	pgCfg := root.Prefix("EDC_PGSQL_")      // EDR cache persistence, optional
	chCfg := root.Prefix("EDC_CLICKHOUSE_") // audit trail persistence, optional

	// bring up logging early; every line carries the build version
	bi := version.Info()
	logOpts := logger.FromEnv()
	if logOpts.Service == "" {
		logOpts.Service = bi.Service
	}
	logOpts.StaticFields = map[string]string{"version": bi.Version}
	logger.Init(logOpts)
	l := logger.Get()

	// open the platform store; both backends are optional, the cache falls
	// back to memory and the audit trail to log-only
	st, err := store.Open(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:        pgCfg.MayBool("ENABLED", false),
				URL:            pgCfg.MayString("DBURL", ""),
				MaxConns:       int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs:    pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:         pgCfg.MayBool("LOG_SQL", false),
				ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 20),
				PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
			},
			CH: store.CHConfig{
				Enabled:    chCfg.MayBool("ENABLED", false),
				URL:        chCfg.MayString("DBURL", ""),
				ClientName: "edc",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// the clickhouse dial is lazy, so a bad audit DSN would otherwise
	// surface at the first insert; probe every configured backend now
	guardCtx, guardCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer guardCancel()
	if err := st.Guard(guardCtx); err != nil {
		l.Panic().Err(err).Msg("storage backend not reachable")
	}

	// shared management API client (reads EDC_CONNECTOR_URL etc)
	cli := connector.NewClient(connector.FromConfig(root.Prefix("EDC_CONNECTOR_")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// hold traffic until the connector reports healthy; a signal during the
	// wait exits cleanly
	if edcCfg.MayBool("STARTUP_WAIT", true) {
		if err := cli.WaitReady(ctx, edcCfg.MayDuration("STARTUP_RETRY_INTERVAL", 10*time.Second)); err != nil {
			l.Info().Err(err).Msg("startup wait interrupted")
			return
		}
	}

	// http server (reads EDC_API_PORT)
	srv := phttp.NewServer(edcCfg)

	// mount our API
	closeAPI := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Connector:      cli,
			EnableSwagger:  edcCfg.MayBool("API_SWAGGER", false),
			EnableProfiler: edcCfg.MayBool("API_PROFILER", false),
		},
	)

	// run; a signal cancels ctx and Run drains in-flight requests itself
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}

	// drain buffered audit events before the store goes away
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := closeAPI(drainCtx); err != nil {
		l.Error().Err(err).Msg("audit drain failed")
	}
}
