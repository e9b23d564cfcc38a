package export

import (
	"testing"
	"time"

	"finpulse/internal/amqp"
	"finpulse/internal/analytics"
	"finpulse/internal/core"
	"finpulse/internal/currency"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func testEngine() *analytics.Engine {
	snap := core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", Date: day(2025, 6, 2), Description: "Salary", Amount: 4000, Type: core.Income, Category: "Salary", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			{ID: "t2", Date: day(2025, 6, 5), Description: "Rent", Amount: 1500, Type: core.Expense, Category: "Housing", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
			{ID: "t3", Date: day(2025, 6, 8), Description: "Groceries", Amount: 500, Type: core.Expense, Category: "Food", AccountID: "a1", CurrencyCode: "USD", Status: core.StatusCompleted},
		},
		Accounts: []core.Account{
			{ID: "a1", Name: "Checking", Type: core.Checking, Balance: 6000, CurrencyCode: "USD"},
		},
		Goals: []core.Goal{
			{ID: "g1", Name: "Emergency Fund", CurrentAmount: 3000, TargetAmount: 12000, CurrencyCode: "USD"},
		},
		Bills: []core.Bill{
			{ID: "b1", Name: "Internet", Amount: 60, CurrencyCode: "USD", DueDate: day(2025, 6, 18)},
		},
	}
	return analytics.New(snap, currency.Noop{}, analytics.WithNow(fixedNow))
}

func findRow(rows [][]string, label string) []string {
	for _, row := range rows {
		if len(row) > 0 && row[0] == label {
			return row
		}
	}
	return nil
}

func TestDashboardRows(t *testing.T) {
	e := testEngine()
	rows := DashboardRows{}.BuildRows(e, core.MonthRange(2025, time.June), "USD")

	if len(rows) == 0 {
		t.Fatal("BuildRows() returned no rows")
	}
	if rows[0][0] != "Metric" || rows[0][1] != "Value" {
		t.Errorf("header row = %v, want [Metric Value]", rows[0])
	}

	checks := map[string]string{
		"Total Income":   "$4,000.00",
		"Total Expenses": "$2,000.00",
		"Net Income":     "$2,000.00",
		"Savings Rate":   "50.0%",
		"Accounts":       "1",
		"Active Goals":   "1",
		"Budgets":        "0",
	}
	for label, want := range checks {
		row := findRow(rows, label)
		if row == nil {
			t.Errorf("missing row %q", label)
			continue
		}
		if row[1] != want {
			t.Errorf("row %q = %q, want %q", label, row[1], want)
		}
	}

	housing := findRow(rows, "Housing")
	if housing == nil {
		t.Fatal("missing Housing category row")
	}
	if housing[1] != "$1,500.00" || housing[2] != "75.0%" || housing[3] != "1" {
		t.Errorf("Housing row = %v, want [$1,500.00 75.0%% 1]", housing[1:])
	}

	bill := findRow(rows, "Internet")
	if bill == nil {
		t.Fatal("missing upcoming bill row")
	}
	if bill[1] != "2025-06-18" || bill[2] != "$60.00" {
		t.Errorf("Internet bill row = %v, want [2025-06-18 $60.00]", bill[1:])
	}
}

func TestHealthRows(t *testing.T) {
	e := testEngine()
	rows := HealthRows{}.BuildRows(e, core.MonthRange(2025, time.June), "USD")

	if len(rows) == 0 {
		t.Fatal("BuildRows() returned no rows")
	}
	if row := findRow(rows, "Overall Score"); row == nil {
		t.Error("missing Overall Score row")
	}
	if row := findRow(rows, "Grade"); row == nil || row[1] == "" {
		t.Errorf("Grade row = %v, want a non-empty grade", row)
	}

	for _, component := range []string{"Liquidity", "Debt to Income", "Savings Rate", "Emergency Fund", "Bill Payment", "Goal Progress"} {
		row := findRow(rows, component)
		if row == nil {
			t.Errorf("missing component row %q", component)
			continue
		}
		if len(row) != 4 {
			t.Errorf("component row %q has %d cells, want 4", component, len(row))
		}
	}
}

func TestGetRowBuilder(t *testing.T) {
	if _, err := GetRowBuilder(amqp.KindDashboard); err != nil {
		t.Errorf("GetRowBuilder(dashboard) error = %v", err)
	}
	if _, err := GetRowBuilder(amqp.KindHealth); err != nil {
		t.Errorf("GetRowBuilder(health) error = %v", err)
	}
	if _, err := GetRowBuilder("csv"); err == nil {
		t.Error("GetRowBuilder(csv) should fail for an unregistered kind")
	}
}

func TestBuildReport(t *testing.T) {
	e := testEngine()
	window := core.MonthRange(2025, time.June)
	generatedAt := fixedNow()

	report, err := BuildReport(e, "run-9", amqp.KindDashboard, "USD", window, generatedAt)
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if report.RunID != "run-9" || report.Kind != amqp.KindDashboard || report.Currency != "USD" {
		t.Errorf("BuildReport() metadata = %+v", report)
	}
	if !report.GeneratedAt.Equal(generatedAt) {
		t.Errorf("BuildReport() GeneratedAt = %v, want %v", report.GeneratedAt, generatedAt)
	}
	if len(report.Rows) == 0 {
		t.Error("BuildReport() produced no rows")
	}

	if _, err := BuildReport(e, "run-10", "pdf", "USD", window, generatedAt); err == nil {
		t.Error("BuildReport() should fail for an unknown kind")
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{1234.5, "USD", "$1,234.50"},
		{0, "USD", "$0.00"},
		{1234.56, "JPY", "¥1,235"},
		{-42.4, "USD", "-$42.40"},
	}

	for _, tt := range tests {
		if got := formatMoney(tt.amount, tt.code); got != tt.want {
			t.Errorf("formatMoney(%v, %s) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}
