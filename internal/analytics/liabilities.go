package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// The payoff trend uses a fixed 70/30 principal/interest split per
// payment. It is a deliberate approximation carried over from the
// product's original behavior, not an amortization formula.
const (
	principalShare = 0.70
	interestShare  = 0.30
)

// Liabilities walks each liability's linked payments in date order,
// splitting every payment into principal and interest, tracking the
// running balance down from the original amount, and bucketing the result
// by month.
func (e *Engine) Liabilities(r core.Range) []LiabilitySummary {
	now := e.now()
	out := make([]LiabilitySummary, 0, len(e.snap.Liabilities))

	for _, l := range e.snap.Liabilities {
		var linked []core.Transaction
		for _, tx := range e.snap.Transactions {
			if tx.LiabilityID != "" && tx.LiabilityID == l.ID && r.Contains(tx.Date) {
				linked = append(linked, tx)
			}
		}
		sort.SliceStable(linked, func(i, j int) bool {
			return linked[i].Date.Before(linked[j].Date)
		})

		balance := l.OriginalAmount
		var principalPaid, interestPaid float64
		buckets := make(map[string]*AmortizationPoint)
		for _, tx := range linked {
			principal := tx.Amount * principalShare
			interest := tx.Amount * interestShare
			principalPaid += principal
			interestPaid += interest
			balance -= principal

			key := monthKey(tx.Date)
			p, ok := buckets[key]
			if !ok {
				p = &AmortizationPoint{Month: key}
				buckets[key] = p
			}
			p.Principal += principal
			p.Interest += interest
			p.Total += tx.Amount
			p.Remaining = balance
		}

		s := LiabilitySummary{
			LiabilityID:        l.ID,
			Name:               l.Name,
			OriginalAmount:     l.OriginalAmount,
			RemainingAmount:    l.RemainingAmount,
			TotalPrincipalPaid: principalPaid,
			TotalInterestPaid:  interestPaid,
			NextPaymentAmount:  l.MonthlyPayment,
			NextPaymentDate:    now.AddDate(0, 1, 0),
			Trend:              sortedAmortization(buckets),
		}
		if l.OriginalAmount > 0 {
			s.CompletionPercentage = clampPct(principalPaid / l.OriginalAmount * 100)
		}
		if s.NextPaymentAmount == 0 {
			s.NextPaymentAmount = l.OriginalAmount * 0.05
		}
		out = append(out, s)
	}
	return out
}

func sortedAmortization(buckets map[string]*AmortizationPoint) []AmortizationPoint {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	trend := make([]AmortizationPoint, 0, len(keys))
	for _, k := range keys {
		trend = append(trend, *buckets[k])
	}
	return trend
}
