// Package export renders computed reports as tabular rows and defines the
// port for outbound report destinations.
package export

import (
	"context"
	"time"
)

// Report is a rendered report ready for an outbound writer. Rows carry the
// header row first; every cell is already formatted for display.
type Report struct {
	RunID       string
	Kind        string
	Currency    string
	GeneratedAt time.Time
	Rows        [][]string
}

// ReportWriter is the port for outbound report destinations.
type ReportWriter interface {
	// WriteReport persists the report and returns a destination-specific
	// reference (a sheet range, a synthetic id).
	WriteReport(ctx context.Context, r Report) (ref string, err error)
}
