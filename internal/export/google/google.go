// Package google appends rendered reports to a Google spreadsheet using a
// service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finpulse/internal/config"
	"finpulse/internal/export"
	"finpulse/internal/log"
)

type Writer struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// Ensure interface conformance
var _ export.ReportWriter = (*Writer)(nil)

// New creates a Sheets-backed report writer from the service configuration.
// Credentials come from GOOGLE_CREDENTIALS_JSON (inline) or
// GOOGLE_CREDENTIALS_FILE, in that order.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Writer, error) {
	spreadsheetID := strings.TrimSpace(cfg.GoogleSpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.GoogleSheetName)
	if sheetName == "" {
		sheetName = "Reports"
	}

	credentialsJSON, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Writer{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentExport),
	}, nil
}

func resolveCredentials(cfg *config.Config) ([]byte, error) {
	if inline := strings.TrimSpace(cfg.GoogleCredentialsJSON); inline != "" {
		return []byte(inline), nil
	}
	if file := strings.TrimSpace(cfg.GoogleCredentialsFile); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
}

// WriteReport appends a banner row followed by the report rows and returns
// the updated range.
func (w *Writer) WriteReport(ctx context.Context, r export.Report) (string, error) {
	if w.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := make([][]any, 0, len(r.Rows)+1)
	values = append(values, []any{r.RunID, r.Kind, r.Currency, r.GeneratedAt.UTC().Format(time.RFC3339)})
	for _, row := range r.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	rng := fmt.Sprintf("%s!A:Z", w.sheetName)
	resp, err := w.svc.Spreadsheets.Values.
		Append(w.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", w.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	w.logger.InfoContext(ctx, "Appended report to spreadsheet",
		log.FieldRunID, r.RunID,
		log.FieldReportKind, r.Kind,
		log.FieldRows, len(r.Rows),
		"ref", ref)

	return ref, nil
}
