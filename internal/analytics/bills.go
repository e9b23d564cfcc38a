package analytics

import (
	"sort"

	"finpulse/internal/core"
)

// Bills reports payment history and a derived status per bill. Status
// comes from the most recent linked payment in the window when one exists;
// otherwise a bill past its due date is overdue and anything else is
// upcoming.
func (e *Engine) Bills(r core.Range) []BillSummary {
	now := e.now()
	out := make([]BillSummary, 0, len(e.snap.Bills))

	for _, b := range e.snap.Bills {
		var linked []core.Transaction
		for _, tx := range e.snap.Transactions {
			if tx.BillID != "" && tx.BillID == b.ID && r.Contains(tx.Date) {
				linked = append(linked, tx)
			}
		}
		sort.SliceStable(linked, func(i, j int) bool {
			return linked[i].Date.Before(linked[j].Date)
		})

		payments := make([]BillPayment, 0, len(linked))
		monthly := make(map[string]float64)
		for _, tx := range linked {
			payments = append(payments, BillPayment{
				TransactionID: tx.ID,
				Date:          tx.Date,
				Amount:        tx.Amount,
				Status:        tx.Status,
			})
			monthly[monthKey(tx.Date)] += tx.Amount
		}

		status := BillUpcoming
		if len(linked) > 0 {
			switch linked[len(linked)-1].Status {
			case core.StatusCompleted:
				status = BillPaid
			case core.StatusFailed:
				status = BillFailed
			default:
				status = BillMoved
			}
		} else if b.DueDate.Before(now) {
			status = BillOverdue
		}

		out = append(out, BillSummary{
			BillID:       b.ID,
			Name:         b.Name,
			Amount:       b.Amount,
			CurrencyCode: b.CurrencyCode,
			DueDate:      b.DueDate,
			NextDueDate:  b.NextDueDate,
			Status:       status,
			Payments:     payments,
			Monthly:      sortedMonthly(monthly),
		})
	}
	return out
}
