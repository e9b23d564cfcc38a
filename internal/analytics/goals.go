package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"finpulse/internal/core"
)

// Goals analyzes contribution flow per goal. Pass a goal id to narrow to
// one goal, or "" for all. A transaction counts toward a goal when its
// link matches, or, as a fallback heuristic, when it is an expense whose
// description contains the goal's name case-insensitively.
func (e *Engine) Goals(goalID string) []GoalSummary {
	out := make([]GoalSummary, 0, len(e.snap.Goals))
	for _, g := range e.snap.Goals {
		if goalID != "" && g.ID != goalID {
			continue
		}
		out = append(out, e.goalSummary(g))
	}
	return out
}

func (e *Engine) goalSummary(g core.Goal) GoalSummary {
	nameLower := strings.ToLower(strings.TrimSpace(g.Name))

	byAccount := make(map[string]float64)
	byCategory := make(map[string]float64)
	cross := make([]CurrencyContribution, 0)
	var total float64
	var count int

	for _, tx := range e.snap.Transactions {
		if !contributesTo(tx, g, nameLower) {
			continue
		}
		count++
		total += tx.Amount
		byAccount[tx.AccountID] += tx.Amount
		byCategory[tx.GroupCategory()] += tx.Amount
		if tx.CurrencyCode != g.CurrencyCode {
			cross = append(cross, CurrencyContribution{
				TransactionID: tx.ID,
				Date:          tx.Date,
				Amount:        tx.Amount,
				CurrencyCode:  tx.CurrencyCode,
			})
		}
	}

	s := GoalSummary{
		GoalID:             g.ID,
		Name:               g.Name,
		CurrentAmount:      g.CurrentAmount,
		TargetAmount:       g.TargetAmount,
		TargetDate:         g.TargetDate,
		ContributionCount:  count,
		TotalContributions: total,
		ByAccount:          accountContributions(e.snap, byAccount),
		ByCategory:         categoryContributions(byCategory, total),
		CrossCurrency:      cross,
	}
	if g.TargetAmount > 0 {
		// Not clamped: overfunded goals read above 100.
		s.ProgressPercentage = g.CurrentAmount / g.TargetAmount * 100
	}
	s.ProjectedCompletion = e.forecastCompletion(g, s.ProgressPercentage, total, count)
	return s
}

func contributesTo(tx core.Transaction, g core.Goal, goalNameLower string) bool {
	if tx.GoalID != "" && tx.GoalID == g.ID {
		return true
	}
	if tx.Type != core.Expense || goalNameLower == "" {
		return false
	}
	return strings.Contains(strings.ToLower(tx.Description), goalNameLower)
}

// forecastCompletion extrapolates a completion date from the average
// contribution size: nothing is forecast once the goal is funded, when no
// target date exists, or when there is no positive flow to project from.
func (e *Engine) forecastCompletion(g core.Goal, progress, total float64, count int) *time.Time {
	if progress >= 100 || g.TargetDate.IsZero() {
		return nil
	}
	monthly := total / math.Max(1, float64(count))
	if monthly <= 0 {
		return nil
	}
	monthsLeft := (g.TargetAmount - g.CurrentAmount) / monthly
	projected := e.now().AddDate(0, int(math.Ceil(monthsLeft)), 0)
	return &projected
}

func accountContributions(snap core.Snapshot, byAccount map[string]float64) []AccountContribution {
	out := make([]AccountContribution, 0, len(byAccount))
	for id, total := range byAccount {
		name := id
		if acc, ok := snap.AccountByID(id); ok {
			name = acc.Name
		}
		out = append(out, AccountContribution{AccountID: id, AccountName: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

func categoryContributions(byCategory map[string]float64, grand float64) []CategoryContribution {
	out := make([]CategoryContribution, 0, len(byCategory))
	for cat, total := range byCategory {
		c := CategoryContribution{Category: cat, Total: total}
		if grand > 0 {
			c.Percentage = total / grand * 100
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}
