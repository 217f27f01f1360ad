package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finbook/internal/core"
)

const user = "test-user"

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finbook.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction(id string, date core.Date, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Amount:      core.CentsOf(cents),
		Kind:        core.Expense,
		Category:    "Food & Dining",
		Subcategory: "Groceries",
		AccountID:   "acc-1",
		Description: "weekly shop",
		Date:        date,
		Tags:        []string{"weekly", "food"},
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := sampleTransaction("t1", core.NewDate(2026, 8, 15), -4200)
	in.Recurring = true
	in.RecurringInterval = "monthly"
	if err := repo.InsertTransaction(ctx, user, in); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetTransaction(ctx, user, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != -4200 || got.Kind != core.Expense {
		t.Errorf("amount/kind = %d/%s", got.Amount.Cents, got.Kind)
	}
	if got.Date.String() != "2026-08-15" {
		t.Errorf("date = %s, want 2026-08-15", got.Date)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "weekly" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !got.Recurring || got.RecurringInterval != "monthly" {
		t.Errorf("recurring fields = %v/%s", got.Recurring, got.RecurringInterval)
	}

	got.Description = "updated"
	got.Amount = core.CentsOf(-5000)
	if err := repo.UpdateTransaction(ctx, user, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.GetTransaction(ctx, user, "t1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Description != "updated" || got.Amount.Cents != -5000 {
		t.Errorf("update not persisted: %+v", got)
	}

	if err := repo.DeleteTransaction(ctx, user, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, user, "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestTransactionListOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, item := range []core.Transaction{
		sampleTransaction("older", core.NewDate(2026, 7, 1), -100),
		sampleTransaction("newest", core.NewDate(2026, 8, 20), -200),
		sampleTransaction("middle", core.NewDate(2026, 8, 5), -300),
	} {
		if err := repo.InsertTransaction(ctx, user, item); err != nil {
			t.Fatalf("insert %s: %v", item.ID, err)
		}
	}

	out, err := repo.ListTransactions(ctx, user)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("listing = %d entries, want 3", len(out))
	}
	if out[0].ID != "newest" || out[2].ID != "older" {
		t.Errorf("order = %s, %s, %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestUserScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.InsertTransaction(ctx, "alice", sampleTransaction("t1", core.NewDate(2026, 8, 1), -100)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "bob", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user get = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "bob", "t1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user delete = %v, want ErrNotFound", err)
	}
}

func TestAccountBalanceDelta(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.InsertAccount(ctx, user, core.Account{
		ID:       "acc-1",
		Name:     "Main",
		Type:     core.Checking,
		Balance:  core.CentsOf(10000),
		Currency: "USD",
		Active:   true,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.ApplyBalanceDelta(ctx, user, "acc-1", core.CentsOf(-2500)); err != nil {
		t.Fatalf("delta: %v", err)
	}
	a, err := repo.GetAccount(ctx, user, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Balance.Cents != 7500 {
		t.Errorf("balance = %d, want 7500", a.Balance.Cents)
	}

	if err := repo.ApplyBalanceDelta(ctx, user, "missing", core.CentsOf(1)); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delta on missing account = %v, want ErrNotFound", err)
	}
}

func TestBudgetAndGoalRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	b := core.Budget{
		ID:             "b1",
		Category:       "Travel",
		Limit:          core.CentsOf(50000),
		Spent:          core.CentsOf(0),
		Period:         core.PeriodYearly,
		AlertThreshold: 75,
	}
	if err := repo.InsertBudget(ctx, user, b); err != nil {
		t.Fatalf("insert budget: %v", err)
	}
	gotB, err := repo.GetBudget(ctx, user, "b1")
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if gotB.Period != core.PeriodYearly || gotB.AlertThreshold != 75 {
		t.Errorf("budget = %+v", gotB)
	}

	g := core.Goal{
		ID:            "g1",
		Name:          "House deposit",
		TargetAmount:  core.CentsOf(5000000),
		CurrentAmount: core.CentsOf(1200000),
		Deadline:      core.NewDate(2027, 6, 30),
	}
	if err := repo.InsertGoal(ctx, user, g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}
	gotG, err := repo.GetGoal(ctx, user, "g1")
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if gotG.Deadline.String() != "2027-06-30" {
		t.Errorf("deadline = %s, want 2027-06-30", gotG.Deadline)
	}
	if gotG.Completed {
		t.Error("goal stored as completed")
	}

	if err := repo.DeleteGoal(ctx, user, "g1"); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := repo.GetGoal(ctx, user, "g1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get deleted goal = %v, want ErrNotFound", err)
	}
}

func TestUnsyncedLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2"} {
		if err := repo.InsertTransaction(ctx, user, sampleTransaction(id, core.NewDate(2026, 8, 1), -100)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	pending, err := repo.ListUnsyncedTransactions(ctx, user, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := repo.MarkTransactionSynced(ctx, user, "t1"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, err = repo.ListUnsyncedTransactions(ctx, user, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "t2" {
		t.Errorf("pending after mark = %+v", pending)
	}

	// An update flips the record back to unsynced.
	t1, err := repo.GetTransaction(ctx, user, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t1.Description = "edited"
	if err := repo.UpdateTransaction(ctx, user, t1); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, err = repo.ListUnsyncedTransactions(ctx, user, 10)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending after update = %d, want 2", len(pending))
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "finbook.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening against the same file must not fail on already-applied
	// migrations.
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	repo.Close()
}
