// Package analytics derives view-models from a snapshot of financial
// entities: category breakdowns, goal forecasts, bill and liability
// status, budget utilization, account rollups, a unified event calendar,
// dashboard KPIs, and a weighted financial health score.
//
// Every method is a pure function of the snapshot plus its arguments: no
// I/O, no mutation, no hidden state. An Engine may be shared by concurrent
// callers without locking, and repeated calls with identical arguments
// return value-equal results.
package analytics

import (
	"math"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/currency"
)

// Engine computes analytics over one immutable snapshot. Construct a new
// Engine per snapshot; construction is cheap.
type Engine struct {
	snap    core.Snapshot
	convert currency.Converter
	tree    *CategoryTree
	now     func() time.Time
}

type Option func(*Engine)

// WithNow overrides the clock used for "now"-relative outputs (upcoming
// bills, forecasts, next payment dates). Tests pin it for determinism.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(snap core.Snapshot, conv currency.Converter, opts ...Option) *Engine {
	if conv == nil {
		conv = currency.Noop{}
	}
	e := &Engine{
		snap:    snap,
		convert: conv,
		tree:    NewCategoryTree(snap.Categories),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tree exposes the category forest index for callers that need ancestry
// queries directly.
func (e *Engine) Tree() *CategoryTree { return e.tree }

// clampPct forces a percentage into [0,100]. Goal progress is the one
// percentage that skips this.
func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
