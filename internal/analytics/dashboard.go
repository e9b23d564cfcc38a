package analytics

import (
	"sort"
	"time"

	"finpulse/internal/core"
)

// Dashboard computes the top-level KPIs for the window. The reporting
// currency is echoed for presentation; amounts are assumed already
// aligned. Upcoming bills look seven days ahead of "now" regardless of the
// window.
func (e *Engine) Dashboard(r core.Range, reportingCurrency string) DashboardSummary {
	now := e.now()

	var income, expenses float64
	var inRange []core.Transaction
	for _, tx := range e.snap.Transactions {
		if !r.Contains(tx.Date) {
			continue
		}
		inRange = append(inRange, tx)
		switch tx.Type {
		case core.Income:
			income += tx.Amount
		case core.Expense:
			expenses += tx.Amount
		}
	}

	s := DashboardSummary{
		Currency:           reportingCurrency,
		TotalIncome:        income,
		TotalExpenses:      expenses,
		NetIncome:          income - expenses,
		UpcomingBills:      e.upcomingBills(now),
		RecentTransactions: recentTransactions(inRange, 5),
		TopCategories:      e.Categories(r, CategoryFilter{}),
		AccountCount:       len(e.snap.Accounts),
		BudgetCount:        len(e.snap.Budgets),
	}
	if income > 0 {
		s.SavingsRate = clampPct(s.NetIncome / income * 100)
	}
	if len(s.TopCategories) > 6 {
		s.TopCategories = s.TopCategories[:6]
	}
	for _, g := range e.snap.Goals {
		if g.CurrentAmount < g.TargetAmount {
			s.ActiveGoalCount++
		}
	}
	return s
}

func (e *Engine) upcomingBills(now time.Time) []core.Bill {
	horizon := now.AddDate(0, 0, 7)
	out := make([]core.Bill, 0)
	for _, b := range e.snap.Bills {
		if !b.DueDate.Before(now) && !b.DueDate.After(horizon) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// recentTransactions returns the n newest transactions by date, newest
// first. Ties keep snapshot order.
func recentTransactions(txs []core.Transaction, n int) []core.Transaction {
	recent := make([]core.Transaction, len(txs))
	copy(recent, txs)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}
