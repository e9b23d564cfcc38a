package analytics

import (
	"testing"
	"time"

	"finpulse/internal/core"
)

func TestGoalProgressUnclamped(t *testing.T) {
	snap := core.Snapshot{
		Goals: []core.Goal{
			{ID: "g1", Name: "Vacation", CurrentAmount: 1200, TargetAmount: 1000, CurrencyCode: "USD"},
		},
	}
	got := testEngine(snap).Goals("")
	if len(got) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(got))
	}
	if !almostEqual(got[0].ProgressPercentage, 120) {
		t.Fatalf("progress = %v, want 120 (unclamped)", got[0].ProgressPercentage)
	}
	if got[0].ProjectedCompletion != nil {
		t.Fatalf("funded goal must not carry a forecast")
	}
}

func TestGoalZeroTarget(t *testing.T) {
	snap := core.Snapshot{
		Goals: []core.Goal{{ID: "g1", Name: "Odd", CurrentAmount: 50, TargetAmount: 0}},
	}
	got := testEngine(snap).Goals("")
	if !almostEqual(got[0].ProgressPercentage, 0) {
		t.Fatalf("progress = %v, want 0 for zero target", got[0].ProgressPercentage)
	}
}

func TestGoalAttribution(t *testing.T) {
	goal := core.Goal{ID: "g1", Name: "Wedding", CurrentAmount: 100, TargetAmount: 5000, CurrencyCode: "USD"}
	snap := core.Snapshot{
		Goals: []core.Goal{goal},
		Transactions: []core.Transaction{
			// direct link
			{ID: "t1", Date: day(2025, 6, 1), Amount: 200, Type: core.Transfer, AccountID: "a1", CurrencyCode: "USD", GoalID: "g1", Status: core.StatusCompleted},
			// description fallback, case-insensitive
			{ID: "t2", Date: day(2025, 6, 2), Amount: 150, Type: core.Expense, Description: "WEDDING deposit", Category: "Events", AccountID: "a2", CurrencyCode: "USD", Status: core.StatusCompleted},
			// matching description but income type: not attributed
			{ID: "t3", Date: day(2025, 6, 3), Amount: 999, Type: core.Income, Description: "wedding gift", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			// unrelated
			{ID: "t4", Date: day(2025, 6, 4), Amount: 75, Type: core.Expense, Description: "groceries", Category: "Food & Dining", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
		},
		Accounts: []core.Account{
			{ID: "a1", Name: "Main", Type: core.Checking, CurrencyCode: "USD"},
			{ID: "a2", Name: "Joint", Type: core.Savings, CurrencyCode: "USD"},
		},
	}
	got := testEngine(snap).Goals("g1")
	if len(got) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(got))
	}
	g := got[0]
	if g.ContributionCount != 2 {
		t.Fatalf("contribution count = %d, want 2", g.ContributionCount)
	}
	if !almostEqual(g.TotalContributions, 350) {
		t.Fatalf("total contributions = %v, want 350", g.TotalContributions)
	}
	if len(g.ByAccount) != 2 {
		t.Fatalf("byAccount = %+v, want 2 entries", g.ByAccount)
	}
	if g.ByAccount[0].AccountName != "Main" || !almostEqual(g.ByAccount[0].Total, 200) {
		t.Errorf("largest account contribution = %+v", g.ByAccount[0])
	}
}

func TestGoalCategoryShares(t *testing.T) {
	snap := core.Snapshot{
		Goals: []core.Goal{{ID: "g1", Name: "House", CurrentAmount: 0, TargetAmount: 100000, CurrencyCode: "USD"}},
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 1), Amount: 300, Type: core.Transfer, Category: "Savings", AccountID: "a1", CurrencyCode: "USD", GoalID: "g1", Status: core.StatusCompleted},
			{ID: "t2", Date: day(2025, 6, 2), Amount: 100, Type: core.Transfer, Category: "Bonus", AccountID: "a1", CurrencyCode: "USD", GoalID: "g1", Status: core.StatusCompleted},
		},
	}
	g := testEngine(snap).Goals("g1")[0]
	if len(g.ByCategory) != 2 {
		t.Fatalf("byCategory = %+v", g.ByCategory)
	}
	if g.ByCategory[0].Category != "Savings" || !almostEqual(g.ByCategory[0].Percentage, 75) {
		t.Errorf("top category share = %+v, want Savings at 75%%", g.ByCategory[0])
	}
}

func TestGoalCrossCurrency(t *testing.T) {
	snap := core.Snapshot{
		Goals: []core.Goal{{ID: "g1", Name: "Trip", CurrentAmount: 0, TargetAmount: 1000, CurrencyCode: "USD"}},
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 1), Amount: 50, Type: core.Transfer, AccountID: "a1", CurrencyCode: "EUR", GoalID: "g1", Status: core.StatusCompleted},
			{ID: "t2", Date: day(2025, 6, 2), Amount: 60, Type: core.Transfer, AccountID: "a1", CurrencyCode: "USD", GoalID: "g1", Status: core.StatusCompleted},
		},
	}
	g := testEngine(snap).Goals("g1")[0]
	if len(g.CrossCurrency) != 1 || g.CrossCurrency[0].TransactionID != "t1" || g.CrossCurrency[0].CurrencyCode != "EUR" {
		t.Fatalf("crossCurrency = %+v", g.CrossCurrency)
	}
}

func TestGoalForecast(t *testing.T) {
	target := day(2026, 6, 1)
	base := core.Goal{ID: "g1", Name: "Trip", CurrentAmount: 400, TargetAmount: 1000, TargetDate: target, CurrencyCode: "USD"}

	contribution := core.Transaction{
		ID: "t1", Date: day(2025, 6, 1), Amount: 100, Type: core.Transfer,
		AccountID: "a1", CurrencyCode: "USD", GoalID: "g1", Status: core.StatusCompleted,
	}

	t.Run("projects from average contribution", func(t *testing.T) {
		snap := core.Snapshot{Goals: []core.Goal{base}, Transactions: []core.Transaction{contribution}}
		g := testEngine(snap).Goals("g1")[0]
		if g.ProjectedCompletion == nil {
			t.Fatalf("expected a forecast")
		}
		// 600 remaining at 100 per month: six months out from the pinned clock.
		want := testNow.AddDate(0, 6, 0)
		if !g.ProjectedCompletion.Equal(want) {
			t.Errorf("projected = %v, want %v", g.ProjectedCompletion, want)
		}
	})

	t.Run("no forecast without target date", func(t *testing.T) {
		goal := base
		goal.TargetDate = time.Time{}
		snap := core.Snapshot{Goals: []core.Goal{goal}, Transactions: []core.Transaction{contribution}}
		if g := testEngine(snap).Goals("g1")[0]; g.ProjectedCompletion != nil {
			t.Errorf("expected no forecast, got %v", g.ProjectedCompletion)
		}
	})

	t.Run("no forecast without contribution flow", func(t *testing.T) {
		snap := core.Snapshot{Goals: []core.Goal{base}}
		if g := testEngine(snap).Goals("g1")[0]; g.ProjectedCompletion != nil {
			t.Errorf("expected no forecast, got %v", g.ProjectedCompletion)
		}
	})
}
