package core

import "time"

// Range is an inclusive [Start, End] date window. The zero value contains
// nothing useful; callers build ranges via NewRange or MonthRange and are
// responsible for supplying sane bounds.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewRange(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// MonthRange covers a full calendar month in UTC.
func MonthRange(year int, month time.Month) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Range{Start: start, End: end}
}

// Contains reports whether t falls inside the window, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the whole days spanned by the window, 0 when the window is
// empty or inverted. Used for burn-rate style divisions, which guard on 0.
func (r Range) Days() int {
	if !r.End.After(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start) / (24 * time.Hour))
}
