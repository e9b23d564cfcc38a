package http

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"finpulse/internal/core"
)

const dateLayout = "2006-01-02"

// parseRange reads the from/to query parameters. Both are YYYY-MM-DD and
// default to the bounds of the current calendar month. The to day is
// included in the window.
func parseRange(query url.Values, now time.Time) (core.Range, error) {
	r := core.MonthRange(now.Year(), now.Month())

	if v := strings.TrimSpace(query.Get("from")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return core.Range{}, fmt.Errorf("invalid from date %q: want YYYY-MM-DD", v)
		}
		r.Start = t
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return core.Range{}, fmt.Errorf("invalid to date %q: want YYYY-MM-DD", v)
		}
		r.End = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if r.End.Before(r.Start) {
		return core.Range{}, fmt.Errorf("invalid range: from %s is after to %s",
			r.Start.Format(dateLayout), r.End.Format(dateLayout))
	}
	return r, nil
}

// parseCurrency reads the currency override, falling back to the
// configured reporting currency. Codes are 3-letter ISO 4217, upper-cased.
func parseCurrency(query url.Values, fallback string) (string, error) {
	v := strings.TrimSpace(query.Get("currency"))
	if v == "" {
		return fallback, nil
	}
	if len(v) != 3 {
		return "", fmt.Errorf("invalid currency %q: want a 3-letter code", v)
	}
	return strings.ToUpper(v), nil
}
