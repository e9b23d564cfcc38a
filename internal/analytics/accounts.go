package analytics

import (
	"math"
	"sort"

	"finpulse/internal/core"
)

// Account rolls up one account's activity in the window. Returns nil when
// the account is not in the snapshot. The monthly running balance starts
// at the account's current balance and accumulates each month's net in
// ascending order; it is a presentation series, not a reconstruction of
// historical balances.
func (e *Engine) Account(accountID string, r core.Range) *AccountSummary {
	acc, ok := e.snap.AccountByID(accountID)
	if !ok {
		return nil
	}

	var txs []core.Transaction
	var income, expenses float64
	monthIncome := make(map[string]float64)
	monthExpense := make(map[string]float64)

	for _, tx := range e.snap.Transactions {
		if tx.AccountID != accountID || !r.Contains(tx.Date) {
			continue
		}
		txs = append(txs, tx)
		key := monthKey(tx.Date)
		switch tx.Type {
		case core.Income:
			income += tx.Amount
			monthIncome[key] += tx.Amount
		case core.Expense:
			expenses += tx.Amount
			monthExpense[key] += tx.Amount
		}
	}

	s := &AccountSummary{
		AccountID:        acc.ID,
		Name:             acc.Name,
		Type:             acc.Type,
		Balance:          acc.Balance,
		CurrencyCode:     acc.CurrencyCode,
		Income:           income,
		Expenses:         expenses,
		NetFlow:          income - expenses,
		TransactionCount: len(txs),
		Categories:       e.Categories(r, CategoryFilter{AccountID: accountID}),
		Monthly:          monthlyFlows(monthIncome, monthExpense, acc.Balance),
		TopTransactions:  topByAmount(txs, 5),
	}
	if len(txs) > 0 {
		s.AverageTransaction = (income + expenses) / float64(len(txs))
	}
	return s
}

func monthlyFlows(monthIncome, monthExpense map[string]float64, startBalance float64) []MonthlyFlow {
	seen := make(map[string]struct{}, len(monthIncome)+len(monthExpense))
	keys := make([]string, 0, len(monthIncome)+len(monthExpense))
	for k := range monthIncome {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range monthExpense {
		if _, dup := seen[k]; !dup {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	balance := startBalance
	flows := make([]MonthlyFlow, 0, len(keys))
	for _, k := range keys {
		in := monthIncome[k]
		out := monthExpense[k]
		balance += in - out
		flows = append(flows, MonthlyFlow{
			Month:          k,
			Income:         in,
			Expenses:       out,
			Net:            in - out,
			RunningBalance: balance,
		})
	}
	return flows
}

// topByAmount returns the n largest transactions by absolute amount, in
// descending order. Ties keep snapshot order.
func topByAmount(txs []core.Transaction, n int) []core.Transaction {
	top := make([]core.Transaction, len(txs))
	copy(top, txs)
	sort.SliceStable(top, func(i, j int) bool {
		return math.Abs(top[i].Amount) > math.Abs(top[j].Amount)
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}
