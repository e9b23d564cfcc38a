package analytics

import (
	"math"
	"strings"
	"time"

	"finpulse/internal/core"
)

// Sub-metric weights, summing to 100.
const (
	weightLiquidity    = 25.0
	weightDebtToIncome = 20.0
	weightSavingsRate  = 20.0
	weightEmergency    = 15.0
	weightBillPayment  = 10.0
	weightGoalProgress = 10.0
)

// A liquidity ratio of six months of expenses scores 100.
const fullCoverageMonths = 6.0

// Health combines six normalized sub-scores into one 0-100 composite with
// a grade, a risk tier, and rule-based recommendations. Account balances,
// liability remainders, and emergency-goal savings are aligned to the
// reporting currency through the converter; transaction amounts are
// assumed already aligned. Monthly income and expenses come from the
// trailing one-month window ending at "now".
func (e *Engine) Health(reportingCurrency string) HealthReport {
	now := e.now()
	window := core.NewRange(now.AddDate(0, -1, 0), now)

	var income, expenses float64
	for _, tx := range e.snap.Transactions {
		if !window.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case core.Income:
			income += tx.Amount
		case core.Expense:
			expenses += tx.Amount
		}
	}

	var liquid float64
	for _, a := range e.snap.Accounts {
		if a.Type.Liquid() {
			liquid += e.convert.Convert(a.Balance, a.CurrencyCode, reportingCurrency)
		}
	}
	liquidityRatio := 0.0
	if expenses > 0 {
		liquidityRatio = liquid / expenses
	}
	liquidity := ComponentScore{
		Score:  clampPct(liquidityRatio / fullCoverageMonths * 100),
		Weight: weightLiquidity,
		Ratio:  liquidityRatio,
	}

	var debt float64
	for _, l := range e.snap.Liabilities {
		debt += e.convert.Convert(l.RemainingAmount, l.CurrencyCode, reportingCurrency)
	}
	dtiRatio := 0.0
	if annual := income * 12; annual > 0 {
		dtiRatio = debt / annual
	}
	debtToIncome := ComponentScore{
		Score:  clampPct(100 - dtiRatio*100),
		Weight: weightDebtToIncome,
		Ratio:  dtiRatio,
	}

	savingsFraction := 0.0
	if income > 0 {
		savingsFraction = (income - expenses) / income
	}
	savingsRate := ComponentScore{
		Score:  clampPct(savingsFraction * 100 * 2),
		Weight: weightSavingsRate,
		Ratio:  savingsFraction,
	}

	var emergencySaved float64
	for _, g := range e.snap.Goals {
		if isEmergencyGoal(g) {
			emergencySaved += e.convert.Convert(g.CurrentAmount, g.CurrencyCode, reportingCurrency)
		}
	}
	emergencyRatio := 0.0
	if target := fullCoverageMonths * expenses; target > 0 {
		emergencyRatio = emergencySaved / target
	}
	emergencyFund := ComponentScore{
		Score:  clampPct(emergencyRatio * 100),
		Weight: weightEmergency,
		Ratio:  emergencyRatio,
	}

	billPayment := e.billPaymentScore(now)

	completed := 0
	for _, g := range e.snap.Goals {
		if g.CurrentAmount >= g.TargetAmount {
			completed++
		}
	}
	goalRatio := 0.0
	if len(e.snap.Goals) > 0 {
		goalRatio = float64(completed) / float64(len(e.snap.Goals))
	}
	goalProgress := ComponentScore{
		Score:  clampPct(goalRatio * 100),
		Weight: weightGoalProgress,
		Ratio:  goalRatio,
	}

	weighted := liquidity.Score*liquidity.Weight +
		debtToIncome.Score*debtToIncome.Weight +
		savingsRate.Score*savingsRate.Weight +
		emergencyFund.Score*emergencyFund.Weight +
		billPayment.Score*billPayment.Weight +
		goalProgress.Score*goalProgress.Weight

	report := HealthReport{
		OverallScore:  int(math.Round(weighted / 100)),
		Currency:      reportingCurrency,
		Liquidity:     liquidity,
		DebtToIncome:  debtToIncome,
		SavingsRate:   savingsRate,
		EmergencyFund: emergencyFund,
		BillPayment:   billPayment,
		GoalProgress:  goalProgress,
	}
	report.Grade, report.Rating, report.Risk = gradeFor(report.OverallScore)
	report.Recommendations = recommendationsFor(report)
	return report
}

// billPaymentScore starts from the paid share of bills and knocks off 10
// points per overdue bill, penalty capped at 50, floor at 0.
func (e *Engine) billPaymentScore(now time.Time) ComponentScore {
	paid, overdue := 0, 0
	for _, b := range e.snap.Bills {
		switch {
		case b.IsPaid:
			paid++
		case b.DueDate.Before(now):
			overdue++
		}
	}
	ratio := 0.0
	if total := len(e.snap.Bills); total > 0 {
		ratio = float64(paid) / float64(total)
	}
	penalty := math.Min(float64(overdue)*10, 50)
	return ComponentScore{
		Score:  clampPct(ratio*100 - penalty),
		Weight: weightBillPayment,
		Ratio:  ratio,
	}
}

func isEmergencyGoal(g core.Goal) bool {
	return strings.Contains(strings.ToLower(g.Category), "emergency") ||
		strings.Contains(strings.ToLower(g.Name), "emergency")
}

func gradeFor(score int) (grade, rating, risk string) {
	switch {
	case score >= 90:
		return "A", "excellent", "low"
	case score >= 75:
		return "B", "good", "low"
	case score >= 60:
		return "C", "fair", "moderate"
	case score >= 40:
		return "D", "poor", "elevated"
	default:
		return "F", "critical", "high"
	}
}

// healthRule pairs an independent threshold predicate with its message.
// The rule list is ordered and every rule is evaluated; triggered messages
// accumulate rather than short-circuiting.
type healthRule struct {
	applies func(HealthReport) bool
	message string
}

var healthRules = []healthRule{
	{
		applies: func(r HealthReport) bool { return r.Liquidity.Score < 50 },
		message: "Build your cash cushion: aim for at least three months of expenses in liquid accounts.",
	},
	{
		applies: func(r HealthReport) bool { return r.DebtToIncome.Score < 60 },
		message: "Debt is heavy relative to income. Prioritize paying down outstanding balances.",
	},
	{
		applies: func(r HealthReport) bool { return r.SavingsRate.Score < 40 },
		message: "Your savings rate is low. Try to set aside at least 20% of income each month.",
	},
	{
		applies: func(r HealthReport) bool { return r.EmergencyFund.Score < 50 },
		message: "Grow your emergency fund toward six months of expenses.",
	},
	{
		applies: func(r HealthReport) bool { return r.BillPayment.Score < 70 },
		message: "Bills are slipping. Consider autopay to avoid overdue payments.",
	},
	{
		applies: func(r HealthReport) bool { return r.GoalProgress.Score < 25 },
		message: "Goals are stalling. Schedule a recurring contribution, even a small one.",
	},
}

const healthyMessage = "Your finances look healthy. Keep up the steady savings habit."

func recommendationsFor(r HealthReport) []string {
	out := make([]string, 0, len(healthRules))
	for _, rule := range healthRules {
		if rule.applies(r) {
			out = append(out, rule.message)
		}
	}
	if len(out) == 0 {
		out = append(out, healthyMessage)
	}
	return out
}
