package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit_card"
	Investment AccountType = "investment"
	Cash       AccountType = "cash"
	Loan       AccountType = "loan"
)

const (
	WeeklyBudget  BudgetPeriod = "weekly"
	MonthlyBudget BudgetPeriod = "monthly"
	YearlyBudget  BudgetPeriod = "yearly"
)

const (
	IncomeCategory  CategoryType = "income"
	ExpenseCategory CategoryType = "expense"
)

// FallbackCategory is the grouping bucket for transactions that carry an
// empty category string. The transaction itself keeps its original value.
const FallbackCategory = "Other"

type (
	TransactionType   string
	TransactionStatus string
	AccountType       string
	BudgetPeriod      string
	CategoryType      string

	Transaction struct {
		ID               string            `json:"id"`
		Date             time.Time         `json:"date"`
		Description      string            `json:"description"`
		Amount           float64           `json:"amount"` // non-negative magnitude, sign carried by Type
		Type             TransactionType   `json:"type"`
		Category         string            `json:"category"`
		AccountID        string            `json:"accountId"`
		CurrencyCode     string            `json:"currencyCode"`
		TransferToID     string            `json:"transferToAccountId,omitempty"`
		GoalID           string            `json:"goalId,omitempty"`
		BillID           string            `json:"billId,omitempty"`
		LiabilityID      string            `json:"liabilityId,omitempty"`
		OriginalAmount   float64           `json:"originalAmount,omitempty"`
		OriginalCurrency string            `json:"originalCurrency,omitempty"`
		Status           TransactionStatus `json:"status"`
	}

	Account struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		Type         AccountType `json:"type"`
		Balance      float64     `json:"balance"` // signed
		CurrencyCode string      `json:"currencyCode"`
		Hidden       bool        `json:"hidden"`
	}

	Goal struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		CurrentAmount float64   `json:"currentAmount"`
		TargetAmount  float64   `json:"targetAmount"`
		TargetDate    time.Time `json:"targetDate"`
		Category      string    `json:"category"`
		CurrencyCode  string    `json:"currencyCode"`
	}

	Bill struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Amount       float64   `json:"amount"`
		CurrencyCode string    `json:"currencyCode"`
		DueDate      time.Time `json:"dueDate"`
		NextDueDate  time.Time `json:"nextDueDate"`
		IsPaid       bool      `json:"isPaid"`
		AccountID    string    `json:"accountId"`
	}

	Liability struct {
		ID              string    `json:"id"`
		Name            string    `json:"name"`
		OriginalAmount  float64   `json:"originalAmount"`
		RemainingAmount float64   `json:"remainingAmount"`
		CurrencyCode    string    `json:"currencyCode"`
		MonthlyPayment  float64   `json:"monthlyPayment"`
		DueDate         time.Time `json:"dueDate"`
	}

	Budget struct {
		ID           string       `json:"id"`
		Category     string       `json:"category"`
		MonthlyLimit float64      `json:"monthlyLimit"`
		Period       BudgetPeriod `json:"period"`
	}

	Category struct {
		ID       string       `json:"id"`
		Name     string       `json:"name"`
		Type     CategoryType `json:"type"`
		ParentID string       `json:"parentId,omitempty"`
	}
)

var (
	ErrEmptyID        = errors.New("empty id")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidType    = errors.New("invalid type")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidTarget  = errors.New("invalid target amount")
	ErrInvalidLimit   = errors.New("invalid monthly limit")
	ErrInvalidPeriod  = errors.New("invalid budget period")
	ErrEmptyCurrency  = errors.New("empty currency code")
	ErrInvalidBalance = errors.New("invalid original amount")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	default:
		return false
	}
}

func (a AccountType) IsValid() bool {
	switch a {
	case Checking, Savings, CreditCard, Investment, Cash, Loan:
		return true
	default:
		return false
	}
}

// Liquid reports whether balances of this account type count toward
// liquid assets.
func (a AccountType) Liquid() bool {
	switch a {
	case Checking, Savings, Cash:
		return true
	default:
		return false
	}
}

func (p BudgetPeriod) IsValid() bool {
	switch p {
	case WeeklyBudget, MonthlyBudget, YearlyBudget:
		return true
	default:
		return false
	}
}

func (c CategoryType) IsValid() bool {
	switch c {
	case IncomeCategory, ExpenseCategory:
		return true
	default:
		return false
	}
}

// GroupCategory returns the category bucket the transaction aggregates
// under: its own category, or FallbackCategory when blank.
func (t Transaction) GroupCategory() string {
	if strings.TrimSpace(t.Category) == "" {
		return FallbackCategory
	}
	return t.Category
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if strings.TrimSpace(t.CurrencyCode) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(a.CurrencyCode) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (l Liability) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if l.OriginalAmount <= 0 {
		return ErrInvalidBalance
	}
	if l.RemainingAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyName
	}
	if b.MonthlyLimit <= 0 {
		return ErrInvalidLimit
	}
	if !b.Period.IsValid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}
