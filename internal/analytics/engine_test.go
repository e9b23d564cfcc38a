package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/currency"
)

// testNow pins the clock so "now"-relative outputs are stable.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testEngine(snap core.Snapshot) *Engine {
	return New(snap, currency.Noop{}, WithNow(fixedNow))
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func juneRange() core.Range {
	return core.MonthRange(2025, time.June)
}

func TestIdempotence(t *testing.T) {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 3), Amount: 40, Type: core.Expense, Category: "Food & Dining", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			{ID: "t2", Date: day(2025, 6, 5), Amount: 1500, Type: core.Income, Category: "Salary", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			{ID: "t3", Date: day(2025, 6, 9), Amount: 200, Type: core.Expense, Category: "Travel", AccountID: "a1", CurrencyCode: "USD", GoalID: "g1", Status: core.StatusCompleted},
		},
		Accounts: []core.Account{{ID: "a1", Name: "Main", Type: core.Checking, Balance: 900, CurrencyCode: "USD"}},
		Goals:    []core.Goal{{ID: "g1", Name: "Trip", CurrentAmount: 300, TargetAmount: 1000, TargetDate: day(2026, 6, 1), CurrencyCode: "USD"}},
		Bills:    []core.Bill{{ID: "b1", Name: "Rent", Amount: 800, CurrencyCode: "USD", DueDate: day(2025, 6, 18)}},
		Budgets:  []core.Budget{{ID: "bu1", Category: "Food & Dining", MonthlyLimit: 300, Period: core.MonthlyBudget}},
	}
	e := testEngine(snap)
	r := juneRange()

	if a, b := e.Categories(r, CategoryFilter{}), e.Categories(r, CategoryFilter{}); !reflect.DeepEqual(a, b) {
		t.Errorf("Categories not idempotent: %+v vs %+v", a, b)
	}
	if a, b := e.Goals(""), e.Goals(""); !reflect.DeepEqual(a, b) {
		t.Errorf("Goals not idempotent")
	}
	if a, b := e.Bills(r), e.Bills(r); !reflect.DeepEqual(a, b) {
		t.Errorf("Bills not idempotent")
	}
	if a, b := e.Budgets(r), e.Budgets(r); !reflect.DeepEqual(a, b) {
		t.Errorf("Budgets not idempotent")
	}
	if a, b := e.Account("a1", r), e.Account("a1", r); !reflect.DeepEqual(a, b) {
		t.Errorf("Account not idempotent")
	}
	if a, b := e.Calendar(r), e.Calendar(r); !reflect.DeepEqual(a, b) {
		t.Errorf("Calendar not idempotent")
	}
	if a, b := e.Dashboard(r, "USD"), e.Dashboard(r, "USD"); !reflect.DeepEqual(a, b) {
		t.Errorf("Dashboard not idempotent")
	}
	if a, b := e.Health("USD"), e.Health("USD"); !reflect.DeepEqual(a, b) {
		t.Errorf("Health not idempotent")
	}
}

func TestEngineDefaultsConverter(t *testing.T) {
	e := New(core.Snapshot{}, nil, WithNow(fixedNow))
	report := e.Health("USD")
	if report.OverallScore < 0 || report.OverallScore > 100 {
		t.Fatalf("overall score out of range: %d", report.OverallScore)
	}
}
