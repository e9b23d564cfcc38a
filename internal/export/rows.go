package export

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"

	"finpulse/internal/amqp"
	"finpulse/internal/analytics"
	"finpulse/internal/core"
)

// RowBuilder is the strategy interface for rendering one report kind.
// Implementations compute the report from the engine and return display
// rows, header first.
type RowBuilder interface {
	BuildRows(e *analytics.Engine, window core.Range, currency string) [][]string
}

// DashboardRows renders the dashboard KPIs, the top spending categories
// and the upcoming bills.
type DashboardRows struct{}

func (DashboardRows) BuildRows(e *analytics.Engine, window core.Range, currency string) [][]string {
	s := e.Dashboard(window, currency)

	rows := [][]string{
		{"Metric", "Value"},
		{"Total Income", formatMoney(s.TotalIncome, s.Currency)},
		{"Total Expenses", formatMoney(s.TotalExpenses, s.Currency)},
		{"Net Income", formatMoney(s.NetIncome, s.Currency)},
		{"Savings Rate", formatPercent(s.SavingsRate)},
		{"Accounts", strconv.Itoa(s.AccountCount)},
		{"Active Goals", strconv.Itoa(s.ActiveGoalCount)},
		{"Budgets", strconv.Itoa(s.BudgetCount)},
	}

	if len(s.TopCategories) > 0 {
		rows = append(rows, []string{"Top Category", "Total", "Share", "Transactions"})
		for _, c := range s.TopCategories {
			rows = append(rows, []string{
				c.Category,
				formatMoney(c.Total, s.Currency),
				formatPercent(c.Percentage),
				strconv.Itoa(c.Count),
			})
		}
	}

	if len(s.UpcomingBills) > 0 {
		rows = append(rows, []string{"Upcoming Bill", "Due", "Amount"})
		for _, b := range s.UpcomingBills {
			rows = append(rows, []string{
				b.Name,
				b.DueDate.UTC().Format("2006-01-02"),
				formatMoney(b.Amount, b.CurrencyCode),
			})
		}
	}

	return rows
}

// HealthRows renders the overall health score, the six weighted components
// and the recommendations.
type HealthRows struct{}

func (HealthRows) BuildRows(e *analytics.Engine, _ core.Range, currency string) [][]string {
	h := e.Health(currency)

	rows := [][]string{
		{"Metric", "Value"},
		{"Overall Score", strconv.Itoa(h.OverallScore)},
		{"Grade", h.Grade},
		{"Rating", h.Rating},
		{"Risk", h.Risk},
		{"Component", "Score", "Weight", "Ratio"},
	}

	components := []struct {
		name  string
		score analytics.ComponentScore
	}{
		{"Liquidity", h.Liquidity},
		{"Debt to Income", h.DebtToIncome},
		{"Savings Rate", h.SavingsRate},
		{"Emergency Fund", h.EmergencyFund},
		{"Bill Payment", h.BillPayment},
		{"Goal Progress", h.GoalProgress},
	}
	for _, c := range components {
		rows = append(rows, []string{
			c.name,
			formatScore(c.score.Score),
			formatScore(c.score.Weight),
			formatRatio(c.score.Ratio),
		})
	}

	for _, rec := range h.Recommendations {
		rows = append(rows, []string{"Recommendation", rec})
	}

	return rows
}

// rowBuilders maps report kinds to their renderers. The registry enables
// O(1) lookup and extension with new report kinds.
var rowBuilders = map[string]RowBuilder{
	amqp.KindDashboard: DashboardRows{},
	amqp.KindHealth:    HealthRows{},
}

// GetRowBuilder returns the renderer for a report kind.
// Returns an error if the kind is not registered.
func GetRowBuilder(kind string) (RowBuilder, error) {
	builder, ok := rowBuilders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown report kind: %s", kind)
	}
	return builder, nil
}

// RegisterRowBuilder allows registering renderers for new report kinds.
func RegisterRowBuilder(kind string, builder RowBuilder) {
	rowBuilders[kind] = builder
}

// BuildReport computes and renders one report run.
func BuildReport(e *analytics.Engine, runID, kind, currency string, window core.Range, generatedAt time.Time) (Report, error) {
	builder, err := GetRowBuilder(kind)
	if err != nil {
		return Report{}, err
	}
	return Report{
		RunID:       runID,
		Kind:        kind,
		Currency:    currency,
		GeneratedAt: generatedAt,
		Rows:        builder.BuildRows(e, window, currency),
	}, nil
}

// formatMoney renders an amount through go-money so exports carry the
// currency's own symbol and decimal convention. The minor-unit factor
// comes from the currency (JPY has no decimals, USD has two).
func formatMoney(amount float64, code string) string {
	fraction := 2
	if c := money.GetCurrency(code); c != nil {
		fraction = c.Fraction
	}
	units := int64(math.Round(amount * math.Pow10(fraction)))
	return money.New(units, code).Display()
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
