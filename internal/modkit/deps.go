// Package modkit provides module wiring and core deps
package modkit

import (
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/modkit/repokit"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/config"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/logger"
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"
)

// Deps holds the shared dependencies handed to every module at construction.
// PG backs the EDR cache, CH backs the audit trail; either may be nil when a
// module runs against its in-memory driver, so consumers nil-check before binding
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
