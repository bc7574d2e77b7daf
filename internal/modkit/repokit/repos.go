// Package repokit provides common types and helpers for repository implementations.
// Repos declare the narrow Queryer surface they need; modules bind them to the
// store's pool at mount time so repo code never imports a driver
package repokit

import (
	"github.com/eclipse-tractusx/tractusx-sdk-services/internal/platform/store"
)

// Queryer is the minimal read and write surface for SQL repos
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner
