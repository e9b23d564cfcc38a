package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/core"
	"finpulse/internal/log"
)

// SeedDemo loads a small realistic dataset for demos and local development.
// Idempotent: it only runs against an empty transactions table.
func (s *Store) SeedDemo(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return fmt.Errorf("check transactions count: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "Demo seed skipped, data already present",
			log.FieldOperation, log.OpSeed, "transactions", count)
		return nil
	}

	now := time.Now().UTC()
	daysAgo := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	checking := core.Account{ID: uuid.NewString(), Name: "Everyday Checking", Type: core.Checking, Balance: 4350.25, CurrencyCode: "USD"}
	savings := core.Account{ID: uuid.NewString(), Name: "High-Yield Savings", Type: core.Savings, Balance: 12800, CurrencyCode: "USD"}
	card := core.Account{ID: uuid.NewString(), Name: "Travel Card", Type: core.CreditCard, Balance: -640.80, CurrencyCode: "USD"}
	for _, a := range []core.Account{checking, savings, card} {
		if err := s.InsertAccount(ctx, a); err != nil {
			return err
		}
	}

	food := core.Category{ID: uuid.NewString(), Name: "Food & Dining", Type: core.ExpenseCategory}
	restaurants := core.Category{ID: uuid.NewString(), Name: "Restaurants", Type: core.ExpenseCategory, ParentID: food.ID}
	coffee := core.Category{ID: uuid.NewString(), Name: "Coffee", Type: core.ExpenseCategory, ParentID: restaurants.ID}
	housing := core.Category{ID: uuid.NewString(), Name: "Housing", Type: core.ExpenseCategory}
	transport := core.Category{ID: uuid.NewString(), Name: "Transport", Type: core.ExpenseCategory}
	salary := core.Category{ID: uuid.NewString(), Name: "Salary", Type: core.IncomeCategory}
	for _, c := range []core.Category{food, restaurants, coffee, housing, transport, salary} {
		if err := s.InsertCategory(ctx, c); err != nil {
			return err
		}
	}

	emergency := core.Goal{ID: uuid.NewString(), Name: "Emergency Fund", CurrentAmount: 7500, TargetAmount: 15000, TargetDate: now.AddDate(1, 0, 0), Category: "Savings", CurrencyCode: "USD"}
	trip := core.Goal{ID: uuid.NewString(), Name: "Trip to Japan", CurrentAmount: 1800, TargetAmount: 4000, TargetDate: now.AddDate(0, 8, 0), Category: "Travel", CurrencyCode: "USD"}
	for _, g := range []core.Goal{emergency, trip} {
		if err := s.InsertGoal(ctx, g); err != nil {
			return err
		}
	}

	rent := core.Bill{ID: uuid.NewString(), Name: "Rent", Amount: 1500, CurrencyCode: "USD", DueDate: daysAgo(3), NextDueDate: daysAgo(-27), IsPaid: true, AccountID: checking.ID}
	internet := core.Bill{ID: uuid.NewString(), Name: "Internet", Amount: 60, CurrencyCode: "USD", DueDate: daysAgo(-4), AccountID: checking.ID}
	for _, b := range []core.Bill{rent, internet} {
		if err := s.InsertBill(ctx, b); err != nil {
			return err
		}
	}

	carLoan := core.Liability{ID: uuid.NewString(), Name: "Car Loan", OriginalAmount: 18000, RemainingAmount: 12600, CurrencyCode: "USD", MonthlyPayment: 450, DueDate: daysAgo(-12)}
	if err := s.InsertLiability(ctx, carLoan); err != nil {
		return err
	}

	budgets := []core.Budget{
		{ID: uuid.NewString(), Category: "Food & Dining", MonthlyLimit: 600, Period: core.MonthlyBudget},
		{ID: uuid.NewString(), Category: "Transport", MonthlyLimit: 150, Period: core.MonthlyBudget},
	}
	for _, b := range budgets {
		if err := s.InsertBudget(ctx, b); err != nil {
			return err
		}
	}

	txs := []core.Transaction{
		{Date: daysAgo(58), Description: "Monthly salary", Amount: 4200, Type: core.Income, Category: "Salary", AccountID: checking.ID},
		{Date: daysAgo(56), Description: "Rent payment", Amount: 1500, Type: core.Expense, Category: "Housing", AccountID: checking.ID, BillID: rent.ID},
		{Date: daysAgo(49), Description: "Weekly groceries", Amount: 112.40, Type: core.Expense, Category: "Food & Dining", AccountID: checking.ID},
		{Date: daysAgo(45), Description: "Car loan payment", Amount: 450, Type: core.Expense, Category: "Transport", AccountID: checking.ID, LiabilityID: carLoan.ID},
		{Date: daysAgo(41), Description: "Trip to Japan savings", Amount: 300, Type: core.Expense, Category: "Savings", AccountID: checking.ID, GoalID: trip.ID},
		{Date: daysAgo(28), Description: "Monthly salary", Amount: 4200, Type: core.Income, Category: "Salary", AccountID: checking.ID},
		{Date: daysAgo(26), Description: "Rent payment", Amount: 1500, Type: core.Expense, Category: "Housing", AccountID: checking.ID, BillID: rent.ID},
		{Date: daysAgo(22), Description: "Dinner with friends", Amount: 58.90, Type: core.Expense, Category: "Restaurants", AccountID: card.ID},
		{Date: daysAgo(19), Description: "Morning coffee", Amount: 4.80, Type: core.Expense, Category: "Coffee", AccountID: card.ID},
		{Date: daysAgo(15), Description: "Car loan payment", Amount: 450, Type: core.Expense, Category: "Transport", AccountID: checking.ID, LiabilityID: carLoan.ID},
		{Date: daysAgo(12), Description: "Transfer to savings", Amount: 500, Type: core.Transfer, Category: "", AccountID: checking.ID, TransferToID: savings.ID},
		{Date: daysAgo(9), Description: "Weekly groceries", Amount: 96.15, Type: core.Expense, Category: "Food & Dining", AccountID: checking.ID},
		{Date: daysAgo(5), Description: "Subway pass", Amount: 45, Type: core.Expense, Category: "Transport", AccountID: checking.ID},
		{Date: daysAgo(2), Description: "Freelance invoice", Amount: 650, Type: core.Income, Category: "Salary", AccountID: checking.ID},
	}
	for _, t := range txs {
		t.ID = uuid.NewString()
		t.CurrencyCode = "USD"
		t.Status = core.StatusCompleted
		if err := s.InsertTransaction(ctx, t); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "Demo data seeded",
		log.FieldOperation, log.OpSeed,
		"transactions", len(txs),
		"accounts", 3,
		"goals", 2)

	return nil
}
