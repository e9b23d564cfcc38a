package analytics

import (
	"strings"
	"testing"

	"finpulse/internal/core"
	"finpulse/internal/currency"
)

func TestHealthLiquidityCoverage(t *testing.T) {
	// 12000 liquid against 2000 of trailing-month expenses is six months
	// of coverage, the full-score ratio.
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			expenseTx("t1", day(2025, 6, 1), 2000, "Housing", "a1"),
		},
		Accounts: []core.Account{
			{ID: "a1", Name: "Checking", Type: core.Checking, Balance: 8000, CurrencyCode: "USD"},
			{ID: "a2", Name: "Savings", Type: core.Savings, Balance: 4000, CurrencyCode: "USD"},
			{ID: "a3", Name: "Card", Type: core.CreditCard, Balance: -500, CurrencyCode: "USD"},
		},
	}
	r := testEngine(snap).Health("USD")

	if !almostEqual(r.Liquidity.Ratio, 6) {
		t.Errorf("liquidity ratio = %v, want 6", r.Liquidity.Ratio)
	}
	if !almostEqual(r.Liquidity.Score, 100) {
		t.Errorf("liquidity score = %v, want 100", r.Liquidity.Score)
	}
}

func TestHealthTrailingWindow(t *testing.T) {
	// Only spending between May 15 and June 15 counts against the
	// pinned clock; the April expense must not dilute the ratio.
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			expenseTx("t1", day(2025, 4, 1), 9000, "Housing", "a1"),
			expenseTx("t2", day(2025, 5, 20), 1000, "Housing", "a1"),
		},
		Accounts: []core.Account{
			{ID: "a1", Name: "Checking", Type: core.Checking, Balance: 3000, CurrencyCode: "USD"},
		},
	}
	r := testEngine(snap).Health("USD")
	if !almostEqual(r.Liquidity.Ratio, 3) {
		t.Fatalf("liquidity ratio = %v, want 3", r.Liquidity.Ratio)
	}
}

func TestHealthEmptySnapshot(t *testing.T) {
	r := testEngine(core.Snapshot{}).Health("USD")

	// With no income there is no debt burden, so that one score is
	// perfect while every other component bottoms out.
	if !almostEqual(r.DebtToIncome.Score, 100) {
		t.Errorf("debt-to-income score = %v, want 100", r.DebtToIncome.Score)
	}
	for _, c := range []ComponentScore{r.Liquidity, r.SavingsRate, r.EmergencyFund, r.BillPayment, r.GoalProgress} {
		if !almostEqual(c.Score, 0) {
			t.Errorf("component score = %v, want 0", c.Score)
		}
	}
	if r.OverallScore != 20 {
		t.Errorf("overall = %d, want 20", r.OverallScore)
	}
	if r.Grade != "F" || r.Rating != "critical" || r.Risk != "high" {
		t.Errorf("grade/rating/risk = %s/%s/%s", r.Grade, r.Rating, r.Risk)
	}
	if len(r.Recommendations) != 5 {
		t.Errorf("recommendations = %d, want 5", len(r.Recommendations))
	}
}

func TestHealthDebtScoreClamped(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 1), Amount: 1000, Type: core.Income, Category: "Salary", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
		},
		Liabilities: []core.Liability{
			{ID: "l1", Name: "Loan", OriginalAmount: 60000, RemainingAmount: 50000, CurrencyCode: "USD"},
		},
	}
	r := testEngine(snap).Health("USD")
	if !almostEqual(r.DebtToIncome.Score, 0) {
		t.Errorf("score = %v, want clamp at 0", r.DebtToIncome.Score)
	}
	if r.DebtToIncome.Ratio <= 1 {
		t.Errorf("ratio = %v, should exceed 1 unclamped", r.DebtToIncome.Ratio)
	}
}

func TestHealthSavingsRateDoubled(t *testing.T) {
	// Saving half of income already maxes the score; the raw fraction
	// stays visible in the ratio.
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 1), Amount: 4000, Type: core.Income, Category: "Salary", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			expenseTx("t2", day(2025, 6, 3), 3000, "Housing", "a1"),
		},
	}
	r := testEngine(snap).Health("USD")
	if !almostEqual(r.SavingsRate.Ratio, 0.25) {
		t.Errorf("ratio = %v, want 0.25", r.SavingsRate.Ratio)
	}
	if !almostEqual(r.SavingsRate.Score, 50) {
		t.Errorf("score = %v, want 50", r.SavingsRate.Score)
	}
}

func TestHealthEmergencyFundBounded(t *testing.T) {
	base := core.Snapshot{
		Transactions: []core.Transaction{
			expenseTx("t1", day(2025, 6, 1), 1000, "Housing", "a1"),
		},
		Goals: []core.Goal{
			{ID: "g1", Name: "Emergency Fund", CurrentAmount: 0, TargetAmount: 10000, CurrencyCode: "USD"},
		},
	}
	low := testEngine(base).Health("USD")

	funded := base
	funded.Goals = []core.Goal{
		{ID: "g1", Name: "Emergency Fund", CurrentAmount: 9000, TargetAmount: 10000, CurrencyCode: "USD"},
	}
	high := testEngine(funded).Health("USD")

	if !almostEqual(high.EmergencyFund.Score, 100) {
		t.Errorf("funded score = %v, want 100 (9000 vs 6000 target)", high.EmergencyFund.Score)
	}
	// The component carries 15 of the 100 weight points, so even a
	// zero-to-full swing moves the composite by at most 15.
	if diff := high.OverallScore - low.OverallScore; diff < 0 || diff > 15 {
		t.Errorf("overall moved by %d, want within [0,15]", diff)
	}
}

func TestHealthEmergencyGoalMatching(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			expenseTx("t1", day(2025, 6, 1), 1000, "Housing", "a1"),
		},
		Goals: []core.Goal{
			{ID: "g1", Name: "Rainy day", Category: "Emergency", CurrentAmount: 3000, TargetAmount: 9000, CurrencyCode: "USD"},
			{ID: "g2", Name: "Vacation", Category: "Travel", CurrentAmount: 5000, TargetAmount: 9000, CurrencyCode: "USD"},
		},
	}
	r := testEngine(snap).Health("USD")
	// Only the goal tagged emergency counts: 3000 against a 6000 target.
	if !almostEqual(r.EmergencyFund.Score, 50) {
		t.Fatalf("score = %v, want 50", r.EmergencyFund.Score)
	}
}

func TestHealthBillPaymentScore(t *testing.T) {
	paid := func(id string) core.Bill {
		return core.Bill{ID: id, Name: id, Amount: 10, DueDate: day(2025, 6, 1), IsPaid: true}
	}
	overdue := func(id string) core.Bill {
		return core.Bill{ID: id, Name: id, Amount: 10, DueDate: day(2025, 6, 1)}
	}
	upcoming := func(id string) core.Bill {
		return core.Bill{ID: id, Name: id, Amount: 10, DueDate: day(2025, 7, 1)}
	}

	cases := []struct {
		name  string
		bills []core.Bill
		want  float64
	}{
		{"all paid", []core.Bill{paid("b1"), paid("b2")}, 100},
		{"half paid one overdue", []core.Bill{paid("b1"), overdue("b2")}, 40},
		{"unpaid but not due yet", []core.Bill{paid("b1"), upcoming("b2")}, 50},
		{"penalty capped at fifty", []core.Bill{
			paid("b1"), paid("b2"), paid("b3"), paid("b4"), paid("b5"), paid("b6"), paid("b7"), paid("b8"),
			overdue("b9"), overdue("b10"), overdue("b11"), overdue("b12"), overdue("b13"), overdue("b14"),
		}, 100.0/14*8 - 50},
		{"floored at zero", []core.Bill{overdue("b1"), overdue("b2"), overdue("b3")}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := testEngine(core.Snapshot{Bills: c.bills}).Health("USD")
			if !almostEqual(r.BillPayment.Score, c.want) {
				t.Fatalf("score = %v, want %v", r.BillPayment.Score, c.want)
			}
		})
	}
}

func TestHealthGoalCompletionShare(t *testing.T) {
	snap := core.Snapshot{
		Goals: []core.Goal{
			{ID: "g1", Name: "Done", CurrentAmount: 500, TargetAmount: 500},
			{ID: "g2", Name: "Ahead", CurrentAmount: 700, TargetAmount: 500},
			{ID: "g3", Name: "Behind", CurrentAmount: 100, TargetAmount: 500},
			{ID: "g4", Name: "Untouched", CurrentAmount: 0, TargetAmount: 500},
		},
	}
	r := testEngine(snap).Health("USD")
	if !almostEqual(r.GoalProgress.Score, 50) {
		t.Fatalf("score = %v, want 50 (2 of 4 reached)", r.GoalProgress.Score)
	}
}

func TestHealthGradeBands(t *testing.T) {
	cases := []struct {
		score  int
		grade  string
		rating string
		risk   string
	}{
		{100, "A", "excellent", "low"},
		{90, "A", "excellent", "low"},
		{89, "B", "good", "low"},
		{75, "B", "good", "low"},
		{74, "C", "fair", "moderate"},
		{60, "C", "fair", "moderate"},
		{59, "D", "poor", "elevated"},
		{40, "D", "poor", "elevated"},
		{39, "F", "critical", "high"},
		{0, "F", "critical", "high"},
	}
	for i, c := range cases {
		grade, rating, risk := gradeFor(c.score)
		if grade != c.grade || rating != c.rating || risk != c.risk {
			t.Errorf("case %d: gradeFor(%d) = %s/%s/%s, want %s/%s/%s",
				i, c.score, grade, rating, risk, c.grade, c.rating, c.risk)
		}
	}
}

func TestHealthRecommendationsOrdered(t *testing.T) {
	// Everything is weak except debt, so five rules fire in list order.
	r := testEngine(core.Snapshot{}).Health("USD")
	keywords := []string{"cash cushion", "savings rate", "emergency fund", "autopay", "recurring contribution"}
	if len(r.Recommendations) != len(keywords) {
		t.Fatalf("got %d recommendations: %v", len(r.Recommendations), r.Recommendations)
	}
	for i, kw := range keywords {
		if !strings.Contains(strings.ToLower(r.Recommendations[i]), kw) {
			t.Errorf("recommendation %d = %q, want mention of %q", i, r.Recommendations[i], kw)
		}
	}
}

func TestHealthyFallbackMessage(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 1), Amount: 4000, Type: core.Income, Category: "Salary", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			expenseTx("t2", day(2025, 6, 3), 2000, "Housing", "a1"),
		},
		Accounts: []core.Account{
			{ID: "a1", Name: "Checking", Type: core.Checking, Balance: 12000, CurrencyCode: "USD"},
		},
		Goals: []core.Goal{
			{ID: "g1", Name: "Emergency Fund", CurrentAmount: 12000, TargetAmount: 15000, CurrencyCode: "USD"},
			{ID: "g2", Name: "Laptop", CurrentAmount: 1000, TargetAmount: 1000, CurrencyCode: "USD"},
		},
		Bills: []core.Bill{
			{ID: "b1", Name: "Rent", Amount: 900, DueDate: day(2025, 6, 1), IsPaid: true},
		},
		Liabilities: []core.Liability{
			{ID: "l1", Name: "Loan", OriginalAmount: 12000, RemainingAmount: 10000, CurrencyCode: "USD"},
		},
	}
	r := testEngine(snap).Health("USD")

	if r.Grade != "A" {
		t.Fatalf("grade = %s (overall %d), want A", r.Grade, r.OverallScore)
	}
	if len(r.Recommendations) != 1 || !strings.Contains(r.Recommendations[0], "healthy") {
		t.Fatalf("recommendations = %v, want the single healthy message", r.Recommendations)
	}
}

func TestHealthConvertsBalances(t *testing.T) {
	conv := currency.NewRateTable(map[string]float64{"EUR/USD": 2})
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			expenseTx("t1", day(2025, 6, 1), 2000, "Housing", "a1"),
		},
		Accounts: []core.Account{
			{ID: "a1", Name: "Euro account", Type: core.Checking, Balance: 3000, CurrencyCode: "EUR"},
		},
	}
	r := New(snap, conv, WithNow(fixedNow)).Health("USD")
	if !almostEqual(r.Liquidity.Ratio, 3) {
		t.Fatalf("ratio = %v, want 3 (3000 EUR doubled to USD)", r.Liquidity.Ratio)
	}
}
