package analytics

import (
	"time"

	"finpulse/internal/core"
)

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

type BillStatus string

const (
	BillPaid     BillStatus = "paid"
	BillFailed   BillStatus = "failed"
	BillMoved    BillStatus = "moved"
	BillOverdue  BillStatus = "overdue"
	BillUpcoming BillStatus = "upcoming"
)

type BudgetStatus string

const (
	BudgetSafe     BudgetStatus = "safe"
	BudgetWarning  BudgetStatus = "warning"
	BudgetExceeded BudgetStatus = "exceeded"
)

type EventKind string

const (
	EventTransaction EventKind = "transaction"
	EventBill        EventKind = "bill"
	EventGoal        EventKind = "goal"
)

// Event colors are presentation tags, not domain rules.
type EventColor string

const (
	ColorGreen  EventColor = "green"
	ColorRed    EventColor = "red"
	ColorOrange EventColor = "orange"
	ColorBlue   EventColor = "blue"
)

// MonthlyAmount is one bucket of a month-keyed series; Month is "YYYY-MM".
type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// CategorySummary is one row of a category breakdown, sorted descending by
// Total in every result that carries it.
type CategorySummary struct {
	Category   string          `json:"category"`
	Total      float64         `json:"total"`
	Percentage float64         `json:"percentage"`
	Count      int             `json:"count"`
	Average    float64         `json:"average"`
	Trend      TrendDirection  `json:"trend"`
	Monthly    []MonthlyAmount `json:"monthly"`
}

// CategoryFilter narrows the category breakdown; zero values mean no filter.
type CategoryFilter struct {
	AccountID string
	Currency  string
}

type AccountContribution struct {
	AccountID   string  `json:"accountId"`
	AccountName string  `json:"accountName"`
	Total       float64 `json:"total"`
}

type CategoryContribution struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// CurrencyContribution flags a contribution made in a currency other than
// the goal's own.
type CurrencyContribution struct {
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount"`
	CurrencyCode  string    `json:"currencyCode"`
}

type GoalSummary struct {
	GoalID        string    `json:"goalId"`
	Name          string    `json:"name"`
	CurrentAmount float64   `json:"currentAmount"`
	TargetAmount  float64   `json:"targetAmount"`
	TargetDate    time.Time `json:"targetDate"`

	// ProgressPercentage is deliberately unclamped: overfunded goals
	// report values above 100.
	ProgressPercentage float64 `json:"progressPercentage"`

	ContributionCount  int                    `json:"contributionCount"`
	TotalContributions float64                `json:"totalContributions"`
	ByAccount          []AccountContribution  `json:"byAccount"`
	ByCategory         []CategoryContribution `json:"byCategory"`
	CrossCurrency      []CurrencyContribution `json:"crossCurrency"`

	// ProjectedCompletion is nil when the goal is already funded, has no
	// target date, or shows no contribution flow to extrapolate from.
	ProjectedCompletion *time.Time `json:"projectedCompletion,omitempty"`
}

type BillPayment struct {
	TransactionID string                 `json:"transactionId"`
	Date          time.Time              `json:"date"`
	Amount        float64                `json:"amount"`
	Status        core.TransactionStatus `json:"status"`
}

type BillSummary struct {
	BillID       string          `json:"billId"`
	Name         string          `json:"name"`
	Amount       float64         `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	DueDate      time.Time       `json:"dueDate"`
	NextDueDate  time.Time       `json:"nextDueDate"`
	Status       BillStatus      `json:"status"`
	Payments     []BillPayment   `json:"payments"`
	Monthly      []MonthlyAmount `json:"monthly"`
}

// AmortizationPoint is one month of the simplified payoff trend. Remaining
// reflects the balance after the month's final payment.
type AmortizationPoint struct {
	Month     string  `json:"month"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
}

type LiabilitySummary struct {
	LiabilityID          string              `json:"liabilityId"`
	Name                 string              `json:"name"`
	OriginalAmount       float64             `json:"originalAmount"`
	RemainingAmount      float64             `json:"remainingAmount"`
	CompletionPercentage float64             `json:"completionPercentage"`
	TotalPrincipalPaid   float64             `json:"totalPrincipalPaid"`
	TotalInterestPaid    float64             `json:"totalInterestPaid"`
	NextPaymentAmount    float64             `json:"nextPaymentAmount"`
	NextPaymentDate      time.Time           `json:"nextPaymentDate"`
	Trend                []AmortizationPoint `json:"trend"`
}

type BudgetSummary struct {
	BudgetID           string       `json:"budgetId"`
	Category           string       `json:"category"`
	MonthlyLimit       float64      `json:"monthlyLimit"`
	Spent              float64      `json:"spent"`
	Remaining          float64      `json:"remaining"`
	ProgressPercentage float64      `json:"progressPercentage"`
	Status             BudgetStatus `json:"status"`
	DailyAverage       float64      `json:"dailyAverage"`
	ProjectedMonthly   float64      `json:"projectedMonthly"`
}

// MonthlyFlow is one month of an account's activity. RunningBalance starts
// from the account's current balance and accumulates each month's net in
// ascending month order.
type MonthlyFlow struct {
	Month          string  `json:"month"`
	Income         float64 `json:"income"`
	Expenses       float64 `json:"expenses"`
	Net            float64 `json:"net"`
	RunningBalance float64 `json:"runningBalance"`
}

type AccountSummary struct {
	AccountID          string             `json:"accountId"`
	Name               string             `json:"name"`
	Type               core.AccountType   `json:"type"`
	Balance            float64            `json:"balance"`
	CurrencyCode       string             `json:"currencyCode"`
	Income             float64            `json:"income"`
	Expenses           float64            `json:"expenses"`
	NetFlow            float64            `json:"netFlow"`
	TransactionCount   int                `json:"transactionCount"`
	AverageTransaction float64            `json:"averageTransaction"`
	Categories         []CategorySummary  `json:"categories"`
	Monthly            []MonthlyFlow      `json:"monthly"`
	TopTransactions    []core.Transaction `json:"topTransactions"`
}

type Event struct {
	Date   time.Time  `json:"date"`
	Title  string     `json:"title"`
	Kind   EventKind  `json:"kind"`
	Color  EventColor `json:"color"`
	Amount float64    `json:"amount"`
	RefID  string     `json:"refId"`
}

type DashboardSummary struct {
	Currency           string             `json:"currency"`
	TotalIncome        float64            `json:"totalIncome"`
	TotalExpenses      float64            `json:"totalExpenses"`
	NetIncome          float64            `json:"netIncome"`
	SavingsRate        float64            `json:"savingsRate"`
	UpcomingBills      []core.Bill        `json:"upcomingBills"`
	RecentTransactions []core.Transaction `json:"recentTransactions"`
	TopCategories      []CategorySummary  `json:"topCategories"`
	AccountCount       int                `json:"accountCount"`
	ActiveGoalCount    int                `json:"activeGoalCount"`
	BudgetCount        int                `json:"budgetCount"`
}

// ComponentScore is one normalized sub-metric of the health report. Score
// is in [0,100]; Ratio is the raw basis before normalization (months of
// coverage, debt-to-income, savings fraction, and so on).
type ComponentScore struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Ratio  float64 `json:"ratio"`
}

type HealthReport struct {
	OverallScore int    `json:"overallScore"`
	Grade        string `json:"grade"`
	Rating       string `json:"rating"`
	Risk         string `json:"risk"`
	Currency     string `json:"currency"`

	Liquidity     ComponentScore `json:"liquidity"`
	DebtToIncome  ComponentScore `json:"debtToIncome"`
	SavingsRate   ComponentScore `json:"savingsRate"`
	EmergencyFund ComponentScore `json:"emergencyFund"`
	BillPayment   ComponentScore `json:"billPayment"`
	GoalProgress  ComponentScore `json:"goalProgress"`

	Recommendations []string `json:"recommendations"`
}
