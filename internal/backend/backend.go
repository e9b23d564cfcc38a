// Package backend builds the infrastructure the commands run on: storage,
// the response cache, the broker client and the report writer, with
// teardown bundled into a single cleanup.
package backend

import (
	"finpulse/internal/amqp"
	"finpulse/internal/cache"
	"finpulse/internal/export"
	"finpulse/internal/storage"
)

// CleanupFunc releases the resources a build acquired.
type CleanupFunc func() error

// Backend bundles the wired infrastructure. AMQP is nil when no broker is
// configured or reachable; everything else is always present.
type Backend struct {
	Store   *storage.Store
	Cache   cache.Store
	AMQP    *amqp.Client
	Writer  export.ReportWriter
	Cleanup CleanupFunc
}
