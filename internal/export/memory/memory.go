// Package memory provides an in-process report writer for tests and for
// running without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"finpulse/internal/export"
)

type Writer struct {
	mu      sync.Mutex
	reports []export.Report
}

// Ensure interface conformance
var _ export.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// WriteReport stores the report and returns a synthetic reference.
func (w *Writer) WriteReport(_ context.Context, r export.Report) (string, error) {
	if r.RunID == "" {
		return "", errors.New("report missing run id")
	}
	if len(r.Rows) == 0 {
		return "", errors.New("report has no rows")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, r)
	return fmt.Sprintf("mem:%d", len(w.reports)), nil
}

// Reports returns a copy of everything written so far.
func (w *Writer) Reports() []export.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]export.Report(nil), w.reports...)
}

// Last returns the most recent report, if any.
func (w *Writer) Last() (export.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.reports) == 0 {
		return export.Report{}, false
	}
	return w.reports[len(w.reports)-1], true
}
