// Package storage is the SQLite persistence gateway. It implements the
// finance store ports plus the sync queue the worker drains.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"finbook/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || len(tags) == 0 {
		return nil
	}
	return tags
}

const transactionColumns = `id, amount_cents, kind, category, subcategory,
	account_id, description, date, tags, recurring, recurring_interval`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t        core.Transaction
		cents    int64
		kind     string
		date     string
		tags     string
		interval string
	)
	err := row.Scan(&t.ID, &cents, &kind, &t.Category, &t.Subcategory,
		&t.AccountID, &t.Description, &date, &tags, &t.Recurring, &interval)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.CentsOf(cents)
	t.Kind = core.TransactionKind(kind)
	t.Tags = decodeTags(tags)
	t.RecurringInterval = core.RecurrenceInterval(interval)
	t.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, userID string, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, amount_cents, kind, category,
		   subcategory, account_id, description, date, tags, recurring,
		   recurring_interval, synced)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.ID, userID, t.Amount.Cents, string(t.Kind), t.Category,
		t.Subcategory, t.AccountID, t.Description, t.Date.String(),
		encodeTags(t.Tags), t.Recurring, string(t.RecurringInterval))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID string, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET amount_cents = ?, kind = ?, category = ?,
		   subcategory = ?, account_id = ?, description = ?, date = ?,
		   tags = ?, recurring = ?, recurring_interval = ?, synced = 0
		 WHERE user_id = ? AND id = ?`,
		t.Amount.Cents, string(t.Kind), t.Category, t.Subcategory,
		t.AccountID, t.Description, t.Date.String(), encodeTags(t.Tags),
		t.Recurring, string(t.RecurringInterval), userID, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction", id)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, balance_cents, currency, institution, active
		 FROM accounts WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a     core.Account
			cents int64
			typ   string
		)
		if err := rows.Scan(&a.ID, &a.Name, &typ, &cents, &a.Currency, &a.Institution, &a.Active); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		a.Balance = core.CentsOf(cents)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	var (
		a     core.Account
		cents int64
		typ   string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, balance_cents, currency, institution, active
		 FROM accounts WHERE user_id = ? AND id = ?`, userID, id).
		Scan(&a.ID, &a.Name, &typ, &cents, &a.Currency, &a.Institution, &a.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	a.Type = core.AccountType(typ)
	a.Balance = core.CentsOf(cents)
	return a, nil
}

func (r *SQLiteRepository) InsertAccount(ctx context.Context, userID string, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, type, balance_cents,
		   currency, institution, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, userID, a.Name, string(a.Type), a.Balance.Cents,
		a.Currency, a.Institution, a.Active)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID string, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, currency = ?,
		   institution = ?, active = ?
		 WHERE user_id = ? AND id = ?`,
		a.Name, string(a.Type), a.Currency, a.Institution, a.Active,
		userID, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "account", a.ID)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, "account", id)
}

func (r *SQLiteRepository) ApplyBalanceDelta(ctx context.Context, userID, id string, delta core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ?
		 WHERE user_id = ? AND id = ?`, delta.Cents, userID, id)
	if err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}
	return requireRow(res, "account", id)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, limit_cents, spent_cents, period, alert_threshold
		 FROM budgets WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b            core.Budget
			limit, spent int64
			period       string
		)
		if err := rows.Scan(&b.ID, &b.Category, &limit, &spent, &period, &b.AlertThreshold); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Limit = core.CentsOf(limit)
		b.Spent = core.CentsOf(spent)
		b.Period = core.BudgetPeriod(period)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	var (
		b            core.Budget
		limit, spent int64
		period       string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, category, limit_cents, spent_cents, period, alert_threshold
		 FROM budgets WHERE user_id = ? AND id = ?`, userID, id).
		Scan(&b.ID, &b.Category, &limit, &spent, &period, &b.AlertThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.Limit = core.CentsOf(limit)
	b.Spent = core.CentsOf(spent)
	b.Period = core.BudgetPeriod(period)
	return b, nil
}

func (r *SQLiteRepository) InsertBudget(ctx context.Context, userID string, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_cents,
		   spent_cents, period, alert_threshold)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, userID, b.Category, b.Limit.Cents, b.Spent.Cents,
		string(b.Period), b.AlertThreshold)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, userID string, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, limit_cents = ?, spent_cents = ?,
		   period = ?, alert_threshold = ?
		 WHERE user_id = ? AND id = ?`,
		b.Category, b.Limit.Cents, b.Spent.Cents, string(b.Period),
		b.AlertThreshold, userID, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireRow(res, "budget", b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res, "budget", id)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, current_cents, deadline, category, completed
		 FROM goals WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var (
		g               core.Goal
		target, current int64
		deadline        string
	)
	if err := row.Scan(&g.ID, &g.Name, &target, &current, &deadline, &g.Category, &g.Completed); err != nil {
		return core.Goal{}, err
	}
	g.TargetAmount = core.CentsOf(target)
	g.CurrentAmount = core.CentsOf(current)
	if deadline != "" {
		parsed, err := core.ParseDate(deadline)
		if err != nil {
			return core.Goal{}, fmt.Errorf("parse stored deadline %q: %w", deadline, err)
		}
		g.Deadline = parsed
	}
	return g, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, target_cents, current_cents, deadline, category, completed
		 FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, userID string, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, name, target_cents, current_cents,
		   deadline, category, completed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, userID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.Deadline.String(), g.Category, g.Completed)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, userID string, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_cents = ?, current_cents = ?,
		   deadline = ?, category = ?, completed = ?
		 WHERE user_id = ? AND id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.Deadline.String(), g.Category, g.Completed, userID, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res, "goal", g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res, "goal", id)
}

// ListUnsyncedTransactions returns transactions awaiting the sheet
// mirror, oldest first.
func (r *SQLiteRepository) ListUnsyncedTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE user_id = ? AND synced = 0
		 ORDER BY created_at LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query unsynced transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unsynced transactions: %w", err)
	}
	return out, nil
}

// MarkTransactionSynced records a successful mirror of the transaction.
func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, userID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1 WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, core.ErrNotFound)
	}
	return nil
}
