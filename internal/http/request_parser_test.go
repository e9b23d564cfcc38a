package http

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"finpulse/internal/core"
)

func TestParseRangeDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	r, err := parseRange(url.Values{}, now)
	if err != nil {
		t.Fatalf("parseRange() error = %v", err)
	}

	want := core.MonthRange(2025, time.June)
	if !r.Start.Equal(want.Start) || !r.End.Equal(want.End) {
		t.Errorf("parseRange() = [%v, %v], want [%v, %v]", r.Start, r.End, want.Start, want.End)
	}
}

func TestParseRangeExplicitBounds(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	q := url.Values{"from": {"2025-01-01"}, "to": {"2025-03-31"}}

	r, err := parseRange(q, now)
	if err != nil {
		t.Fatalf("parseRange() error = %v", err)
	}

	if !r.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, want 2025-01-01", r.Start)
	}
	if !r.Contains(time.Date(2025, 3, 31, 15, 0, 0, 0, time.UTC)) {
		t.Error("range should include the afternoon of the to day")
	}
	if r.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("range should exclude the day after to")
	}
}

func TestParseRangePartialOverride(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	r, err := parseRange(url.Values{"from": {"2025-01-01"}}, now)
	if err != nil {
		t.Fatalf("parseRange() error = %v", err)
	}
	if !r.Start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, want 2025-01-01", r.Start)
	}
	if !r.End.Equal(core.MonthRange(2025, time.June).End) {
		t.Errorf("End = %v, want end of June", r.End)
	}
}

func TestParseRangeRejectsBadInput(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		query   url.Values
		wantErr string
	}{
		{"malformed from", url.Values{"from": {"01-01-2025"}}, "invalid from date"},
		{"malformed to", url.Values{"to": {"2025-13-40"}}, "invalid to date"},
		{"from after to", url.Values{"from": {"2025-06-30"}, "to": {"2025-06-01"}}, "invalid range"},
		{"textual from", url.Values{"from": {"yesterday"}}, "invalid from date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRange(tt.query, now)
			if err == nil {
				t.Fatal("parseRange() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    string
		wantErr bool
	}{
		{"missing falls back", url.Values{}, "USD", false},
		{"lowercase upper-cased", url.Values{"currency": {"eur"}}, "EUR", false},
		{"too long", url.Values{"currency": {"EURO"}}, "", true},
		{"too short", url.Values{"currency": {"E"}}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCurrency(tt.query, "USD")
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseCurrency() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCurrency() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseCurrency() = %q, want %q", got, tt.want)
			}
		})
	}
}
