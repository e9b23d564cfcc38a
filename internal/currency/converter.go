// Package currency provides the conversion capability the analytics engine
// consumes when balances must be aligned to a reporting currency. Rate
// sourcing is out of scope here; implementations are static or injected.
package currency

import (
	"fmt"
	"strings"
)

// Converter aligns an amount from one currency to another. Implementations
// must be safe for concurrent use.
type Converter interface {
	Convert(amount float64, from, to string) float64
}

// Noop passes amounts through unchanged. Useful as a default and in tests.
type Noop struct{}

func (Noop) Convert(amount float64, from, to string) float64 { return amount }

// RateTable converts through a fixed table of direct rates keyed "FROM/TO".
// Same-currency conversions are identity. When only the inverse pair is
// known the reciprocal rate is used; unknown pairs pass through unchanged
// rather than failing, matching the engine's no-surprises arithmetic.
type RateTable struct {
	rates map[string]float64
}

func NewRateTable(rates map[string]float64) *RateTable {
	normalized := make(map[string]float64, len(rates))
	for pair, rate := range rates {
		normalized[strings.ToUpper(pair)] = rate
	}
	return &RateTable{rates: normalized}
}

func (r *RateTable) Convert(amount float64, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to || from == "" || to == "" {
		return amount
	}
	if rate, ok := r.rates[pairKey(from, to)]; ok {
		return amount * rate
	}
	if rate, ok := r.rates[pairKey(to, from)]; ok && rate != 0 {
		return amount / rate
	}
	return amount
}

func pairKey(from, to string) string {
	return fmt.Sprintf("%s/%s", from, to)
}
