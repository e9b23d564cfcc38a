package analytics

import "finpulse/internal/core"

// Budgets measures spend against each budget's monthly limit. A
// transaction counts when its category equals the budget's or sits below
// it in the category forest, so a budget on a parent category absorbs its
// subcategories' spend.
func (e *Engine) Budgets(r core.Range) []BudgetSummary {
	days := r.Days()
	out := make([]BudgetSummary, 0, len(e.snap.Budgets))

	for _, b := range e.snap.Budgets {
		var spent float64
		for _, tx := range e.snap.Transactions {
			if tx.Type != core.Expense || !r.Contains(tx.Date) {
				continue
			}
			if !e.tree.Matches(tx.Category, b.Category) {
				continue
			}
			spent += tx.Amount
		}

		s := BudgetSummary{
			BudgetID:     b.ID,
			Category:     b.Category,
			MonthlyLimit: b.MonthlyLimit,
			Spent:        spent,
			Remaining:    b.MonthlyLimit - spent,
			Status:       BudgetSafe,
		}
		if b.MonthlyLimit > 0 {
			s.ProgressPercentage = clampPct(spent / b.MonthlyLimit * 100)
		}
		switch {
		case s.ProgressPercentage >= 100:
			s.Status = BudgetExceeded
		case s.ProgressPercentage >= 80:
			s.Status = BudgetWarning
		}
		if days > 0 {
			s.DailyAverage = spent / float64(days)
		}
		// Fixed 30-day month, same approximation the product always used.
		s.ProjectedMonthly = s.DailyAverage * 30
		out = append(out, s)
	}
	return out
}
