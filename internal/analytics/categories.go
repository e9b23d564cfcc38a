package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// Categories groups expense transactions in the window by category and
// reports totals, shares of the grand total, counts, averages, monthly
// series, and a two-point trend per group. Blank categories aggregate
// under the fallback bucket. Results sort descending by total, name
// ascending on ties.
func (e *Engine) Categories(r core.Range, f CategoryFilter) []CategorySummary {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	months := make(map[string]map[string]float64)
	var grand float64

	for _, tx := range e.snap.Transactions {
		if tx.Type != core.Expense || !r.Contains(tx.Date) {
			continue
		}
		if f.AccountID != "" && tx.AccountID != f.AccountID {
			continue
		}
		if f.Currency != "" && tx.CurrencyCode != f.Currency {
			continue
		}
		cat := tx.GroupCategory()
		totals[cat] += tx.Amount
		counts[cat]++
		bucket, ok := months[cat]
		if !ok {
			bucket = make(map[string]float64)
			months[cat] = bucket
		}
		bucket[monthKey(tx.Date)] += tx.Amount
		grand += tx.Amount
	}

	out := make([]CategorySummary, 0, len(totals))
	for cat, total := range totals {
		series := sortedMonthly(months[cat])
		s := CategorySummary{
			Category: cat,
			Total:    total,
			Count:    counts[cat],
			Trend:    classifyTrend(series),
			Monthly:  series,
		}
		if grand > 0 {
			s.Percentage = total / grand * 100
		}
		if s.Count > 0 {
			s.Average = total / float64(s.Count)
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}
