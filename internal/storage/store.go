// Package storage persists the seven snapshot collections behind a thin
// database/sql layer. The same SQL runs on SQLite and Postgres: types stay
// on the TEXT/REAL/INTEGER subset both dialects share, timestamps are
// RFC 3339 strings, and $N placeholders bind positionally on both drivers.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"finpulse/internal/config"
	"finpulse/internal/core"
	"finpulse/internal/log"
)

type Store struct {
	db     *sql.DB
	driver string
	logger *log.Logger
}

// Open connects, pings, and migrates before handing the store out.
func Open(cfg *config.Config, logger *log.Logger) (*Store, error) {
	dsn := cfg.PostgresDSN
	if cfg.StorageDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = cfg.SQLiteDBPath
	}

	db, err := sql.Open(sqlDriverName(cfg.StorageDriver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.StorageDriver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(cfg.StorageDriver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:     db,
		driver: cfg.StorageDriver,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports backend reachability for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadSnapshot reads every collection into one immutable view.
func (s *Store) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	var err error

	if snap.Transactions, err = s.loadTransactions(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Accounts, err = s.loadAccounts(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Goals, err = s.loadGoals(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Bills, err = s.loadBills(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Liabilities, err = s.loadLiabilities(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Budgets, err = s.loadBudgets(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Categories, err = s.loadCategories(ctx); err != nil {
		return core.Snapshot{}, err
	}

	s.logger.DebugContext(ctx, "Snapshot loaded",
		log.FieldOperation, log.OpLoad,
		"transactions", len(snap.Transactions),
		"accounts", len(snap.Accounts),
		"goals", len(snap.Goals),
		"bills", len(snap.Bills),
		"liabilities", len(snap.Liabilities),
		"budgets", len(snap.Budgets),
		"categories", len(snap.Categories))

	return snap, nil
}

func (s *Store) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, type, category, account_id,
		       currency_code, transfer_to_account_id, goal_id, bill_id,
		       liability_id, original_amount, original_currency, status
		FROM transactions
		ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, typ, status string
		if err := rows.Scan(&t.ID, &date, &t.Description, &t.Amount, &typ,
			&t.Category, &t.AccountID, &t.CurrencyCode, &t.TransferToID,
			&t.GoalID, &t.BillID, &t.LiabilityID, &t.OriginalAmount,
			&t.OriginalCurrency, &status); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.Type = core.TransactionType(typ)
		t.Status = core.TransactionStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) loadAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, balance, currency_code, hidden
		FROM accounts
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var typ string
		var hidden int64
		if err := rows.Scan(&a.ID, &a.Name, &typ, &a.Balance, &a.CurrencyCode, &hidden); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		a.Hidden = hidden != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) loadGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, current_amount, target_amount, target_date, category, currency_code
		FROM goals
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		var targetDate string
		if err := rows.Scan(&g.ID, &g.Name, &g.CurrentAmount, &g.TargetAmount,
			&targetDate, &g.Category, &g.CurrencyCode); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if g.TargetDate, err = parseTime(targetDate); err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) loadBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, currency_code, due_date, next_due_date, is_paid, account_id
		FROM bills
		ORDER BY due_date, id`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		var b core.Bill
		var dueDate, nextDueDate string
		var isPaid int64
		if err := rows.Scan(&b.ID, &b.Name, &b.Amount, &b.CurrencyCode,
			&dueDate, &nextDueDate, &isPaid, &b.AccountID); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if b.DueDate, err = parseTime(dueDate); err != nil {
			return nil, fmt.Errorf("bill %s: %w", b.ID, err)
		}
		if b.NextDueDate, err = parseTime(nextDueDate); err != nil {
			return nil, fmt.Errorf("bill %s: %w", b.ID, err)
		}
		b.IsPaid = isPaid != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) loadLiabilities(ctx context.Context) ([]core.Liability, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, original_amount, remaining_amount, currency_code, monthly_payment, due_date
		FROM liabilities
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query liabilities: %w", err)
	}
	defer rows.Close()

	var out []core.Liability
	for rows.Next() {
		var l core.Liability
		var dueDate string
		if err := rows.Scan(&l.ID, &l.Name, &l.OriginalAmount, &l.RemainingAmount,
			&l.CurrencyCode, &l.MonthlyPayment, &dueDate); err != nil {
			return nil, fmt.Errorf("scan liability: %w", err)
		}
		if l.DueDate, err = parseTime(dueDate); err != nil {
			return nil, fmt.Errorf("liability %s: %w", l.ID, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) loadBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, monthly_limit, period
		FROM budgets
		ORDER BY category, id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var period string
		if err := rows.Scan(&b.ID, &b.Category, &b.MonthlyLimit, &period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Period = core.BudgetPeriod(period)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) loadCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, parent_id
		FROM categories
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.ParentID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, description, amount, type, category,
			account_id, currency_code, transfer_to_account_id, goal_id, bill_id,
			liability_id, original_amount, original_currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, fmtTime(t.Date), t.Description, t.Amount, string(t.Type), t.Category,
		t.AccountID, t.CurrencyCode, t.TransferToID, t.GoalID, t.BillID,
		t.LiabilityID, t.OriginalAmount, t.OriginalCurrency, string(t.Status))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) InsertAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validate account: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, balance, currency_code, hidden)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Name, string(a.Type), a.Balance, a.CurrencyCode, boolToInt(a.Hidden))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Store) InsertGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("validate goal: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, current_amount, target_amount, target_date, category, currency_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.Name, g.CurrentAmount, g.TargetAmount, fmtTime(g.TargetDate), g.Category, g.CurrencyCode)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (s *Store) InsertBill(ctx context.Context, b core.Bill) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate bill: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (id, name, amount, currency_code, due_date, next_due_date, is_paid, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Name, b.Amount, b.CurrencyCode, fmtTime(b.DueDate), fmtTime(b.NextDueDate),
		boolToInt(b.IsPaid), b.AccountID)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (s *Store) InsertLiability(ctx context.Context, l core.Liability) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validate liability: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO liabilities (id, name, original_amount, remaining_amount, currency_code, monthly_payment, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.Name, l.OriginalAmount, l.RemainingAmount, l.CurrencyCode, l.MonthlyPayment, fmtTime(l.DueDate))
	if err != nil {
		return fmt.Errorf("insert liability: %w", err)
	}
	return nil
}

func (s *Store) InsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate budget: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, category, monthly_limit, period)
		VALUES ($1, $2, $3, $4)`,
		b.ID, b.Category, b.MonthlyLimit, string(b.Period))
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (s *Store) InsertCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate category: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, parent_id)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, string(c.Type), c.ParentID)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// fmtTime stores timestamps as RFC 3339 UTC strings; the zero time becomes
// the empty string so optional dates survive the round trip.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
