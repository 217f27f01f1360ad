// Package finance is the only write path for ledger entities. It applies
// the amount sign convention, keeps account balances consistent with the
// transactions referencing them, and refreshes derived fields after every
// mutation.
package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

// ErrAccountHasTransactions blocks hard-deleting an account while live
// transactions still reference it. Deactivate instead.
var ErrAccountHasTransactions = errors.New("account still has transactions")

const (
	EntityTransaction = "transaction"
	EntityAccount     = "account"
	EntityBudget      = "budget"
	EntityGoal        = "goal"
)

// Service coordinates entity mutations across the persistence gateway and
// the async sync pipeline.
type Service struct {
	store  Store
	events Publisher
	userID string
}

// NewService creates the mutation coordinator. events may be nil, which
// disables sync publication.
func NewService(store Store, events Publisher, userID string) *Service {
	return &Service{
		store:  store,
		events: events,
		userID: userID,
	}
}

// applySignConvention stores expenses negative and income positive,
// regardless of the sign the caller supplied.
func applySignConvention(t core.Transaction) core.Transaction {
	magnitude := t.Amount.Abs()
	if t.Kind == core.Expense {
		t.Amount = magnitude.Neg()
	} else {
		t.Amount = magnitude
	}
	return t
}

// CreateTransaction validates the input, applies the sign convention,
// assigns an identifier, persists the record and applies its balance
// effect to the referenced account. The referenced account must exist.
func (s *Service) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = applySignConvention(t)
	t.ID = uuid.NewString()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if _, err := s.store.GetAccount(ctx, s.userID, t.AccountID); err != nil {
		return core.Transaction{}, fmt.Errorf("account %s: %w", t.AccountID, err)
	}

	if err := s.store.InsertTransaction(ctx, s.userID, t); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := s.store.ApplyBalanceDelta(ctx, s.userID, t.AccountID, t.Amount); err != nil {
		// The record and the balance must move together. Roll the insert
		// back so the caller never sees a transaction with no balance
		// effect.
		if delErr := s.store.DeleteTransaction(ctx, s.userID, t.ID); delErr != nil {
			slog.ErrorContext(ctx, "Rollback of transaction insert failed",
				"id", t.ID,
				"error", delErr)
		}
		return core.Transaction{}, fmt.Errorf("apply balance effect: %w", err)
	}

	s.publishSync(ctx, EntityTransaction, t.ID)

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"type", string(t.Kind),
		"amount_cents", t.Amount.Cents,
		"account_id", t.AccountID,
		"category", t.Category)

	return t, nil
}

// UpdateTransaction replaces a transaction and re-applies its balance
// effect: the old amount is reversed on the old account and the new
// amount applied to the new one. A plain overwrite would break the
// account balance invariant.
func (s *Service) UpdateTransaction(ctx context.Context, id string, updated core.Transaction) (core.Transaction, error) {
	old, err := s.store.GetTransaction(ctx, s.userID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, err)
	}

	updated.ID = old.ID
	updated = applySignConvention(updated)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if updated.AccountID != old.AccountID {
		if _, err := s.store.GetAccount(ctx, s.userID, updated.AccountID); err != nil {
			return core.Transaction{}, fmt.Errorf("account %s: %w", updated.AccountID, err)
		}
	}

	if err := s.store.UpdateTransaction(ctx, s.userID, updated); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	if old.AccountID == updated.AccountID {
		delta := updated.Amount.Sub(old.Amount)
		if delta.Cents != 0 {
			if err := s.store.ApplyBalanceDelta(ctx, s.userID, old.AccountID, delta); err != nil {
				return core.Transaction{}, s.restoreAfterBalanceFailure(ctx, old, err)
			}
		}
	} else {
		if err := s.store.ApplyBalanceDelta(ctx, s.userID, old.AccountID, old.Amount.Neg()); err != nil {
			return core.Transaction{}, s.restoreAfterBalanceFailure(ctx, old, err)
		}
		if err := s.store.ApplyBalanceDelta(ctx, s.userID, updated.AccountID, updated.Amount); err != nil {
			// Undo the reversal on the old account so the failed move
			// leaves both balances where they started.
			if reErr := s.store.ApplyBalanceDelta(ctx, s.userID, old.AccountID, old.Amount); reErr != nil {
				slog.ErrorContext(ctx, "Re-apply of old account balance failed",
					"id", old.ID,
					"account_id", old.AccountID,
					"error", reErr)
			}
			return core.Transaction{}, s.restoreAfterBalanceFailure(ctx, old, err)
		}
	}

	s.publishSync(ctx, EntityTransaction, updated.ID)
	return updated, nil
}

func (s *Service) restoreAfterBalanceFailure(ctx context.Context, old core.Transaction, cause error) error {
	if err := s.store.UpdateTransaction(ctx, s.userID, old); err != nil {
		slog.ErrorContext(ctx, "Restore of transaction after balance failure failed",
			"id", old.ID,
			"error", err)
	}
	return fmt.Errorf("apply balance effect: %w", cause)
}

// DeleteTransaction reverses the transaction's balance effect on its
// account and removes the record. The reversal happens even when the
// account has since been deactivated; only a fully missing account is
// skipped, with the condition logged.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.store.GetTransaction(ctx, s.userID, id)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", id, err)
	}

	if err := s.store.DeleteTransaction(ctx, s.userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.store.ApplyBalanceDelta(ctx, s.userID, t.AccountID, t.Amount.Neg()); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Account gone, skipping balance reversal",
				"transaction_id", id,
				"account_id", t.AccountID)
		} else {
			return fmt.Errorf("reverse balance effect: %w", err)
		}
	}

	s.publishDelete(ctx, EntityTransaction, id)

	slog.InfoContext(ctx, "Transaction deleted",
		"id", id,
		"amount_cents", t.Amount.Cents,
		"account_id", t.AccountID)

	return nil
}

// ListTransactions returns all transactions, ordered by date descending.
func (s *Service) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, s.userID)
}

// GetTransaction returns one transaction by id.
func (s *Service) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, s.userID, id)
}

// CreateAccount creates an account with its explicit opening balance.
func (s *Service) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	a.Active = true
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.InsertAccount(ctx, s.userID, a); err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	s.publishSync(ctx, EntityAccount, a.ID)
	slog.InfoContext(ctx, "Account created",
		"id", a.ID,
		"name", a.Name,
		"currency", a.Currency,
		"opening_balance_cents", a.Balance.Cents)
	return a, nil
}

// UpdateAccount replaces account fields. The balance is not writable
// here; it moves only through transaction mutations.
func (s *Service) UpdateAccount(ctx context.Context, id string, updated core.Account) (core.Account, error) {
	current, err := s.store.GetAccount(ctx, s.userID, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("account %s: %w", id, err)
	}
	updated.ID = current.ID
	updated.Balance = current.Balance
	if err := updated.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.UpdateAccount(ctx, s.userID, updated); err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	s.publishSync(ctx, EntityAccount, id)
	return updated, nil
}

// DeactivateAccount soft-deletes: the account and its historical
// transactions stay readable, but it drops out of active listings.
func (s *Service) DeactivateAccount(ctx context.Context, id string) error {
	a, err := s.store.GetAccount(ctx, s.userID, id)
	if err != nil {
		return fmt.Errorf("account %s: %w", id, err)
	}
	a.Active = false
	if err := s.store.UpdateAccount(ctx, s.userID, a); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	s.publishSync(ctx, EntityAccount, id)
	return nil
}

// DeleteAccount hard-removes an account. Blocked while live transactions
// still reference it, so the ledger never dangles.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.store.GetAccount(ctx, s.userID, id); err != nil {
		return fmt.Errorf("account %s: %w", id, err)
	}

	transactions, err := s.store.ListTransactions(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for _, t := range transactions {
		if t.AccountID == id {
			return fmt.Errorf("account %s: %w", id, ErrAccountHasTransactions)
		}
	}

	if err := s.store.DeleteAccount(ctx, s.userID, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.publishDelete(ctx, EntityAccount, id)
	return nil
}

// ListAccounts returns accounts, optionally filtering out deactivated
// ones.
func (s *Service) ListAccounts(ctx context.Context, includeInactive bool) ([]core.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if includeInactive {
		return accounts, nil
	}
	active := accounts[:0]
	for _, a := range accounts {
		if a.Active {
			active = append(active, a)
		}
	}
	return active, nil
}

// GetAccount returns one account by id.
func (s *Service) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return s.store.GetAccount(ctx, s.userID, id)
}

// CreateBudget creates a budget with spent initialized to zero. Spent is
// never ground truth; reads recompute it from transactions.
func (s *Service) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	b.Spent = core.Money{}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.InsertBudget(ctx, s.userID, b); err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	s.publishSync(ctx, EntityBudget, b.ID)
	return b, nil
}

// UpdateBudget replaces budget fields, keeping spent a derived value.
func (s *Service) UpdateBudget(ctx context.Context, id string, updated core.Budget) (core.Budget, error) {
	current, err := s.store.GetBudget(ctx, s.userID, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, err)
	}
	updated.ID = current.ID
	updated.Spent = current.Spent
	if err := updated.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.UpdateBudget(ctx, s.userID, updated); err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	s.publishSync(ctx, EntityBudget, id)
	return updated, nil
}

// DeleteBudget removes a budget.
func (s *Service) DeleteBudget(ctx context.Context, id string) error {
	if err := s.store.DeleteBudget(ctx, s.userID, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	s.publishDelete(ctx, EntityBudget, id)
	return nil
}

// ListBudgets returns budgets with spent freshly recomputed from the
// transactions in the budget's current period (pull model: the stored
// column is only a cache).
func (s *Service) ListBudgets(ctx context.Context, now time.Time) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return budgets, nil
	}

	transactions, err := s.store.ListTransactions(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	monthly := ledger.CategorySpending(transactions, now.Year(), int(now.Month()))
	yearly := ledger.CategorySpendingYear(transactions, now.Year())

	for i := range budgets {
		if budgets[i].Period == core.PeriodYearly {
			budgets[i].Spent = yearly[budgets[i].Category]
		} else {
			budgets[i].Spent = monthly[budgets[i].Category]
		}
	}
	return budgets, nil
}

// CreateGoal creates a goal; current amount defaults to zero and the
// completion flag is derived before the write.
func (s *Service) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID = uuid.NewString()
	g.Completed = g.CurrentAmount.Cents >= g.TargetAmount.Cents
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.InsertGoal(ctx, s.userID, g); err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	s.publishSync(ctx, EntityGoal, g.ID)
	return g, nil
}

// UpdateGoal replaces goal fields and recomputes the completion flag, so
// it always equals current >= target after the write.
func (s *Service) UpdateGoal(ctx context.Context, id string, updated core.Goal) (core.Goal, error) {
	current, err := s.store.GetGoal(ctx, s.userID, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, err)
	}
	updated.ID = current.ID
	updated.Completed = updated.CurrentAmount.Cents >= updated.TargetAmount.Cents
	if err := updated.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.store.UpdateGoal(ctx, s.userID, updated); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	s.publishSync(ctx, EntityGoal, id)
	return updated, nil
}

// DeleteGoal removes a goal.
func (s *Service) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, s.userID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.publishDelete(ctx, EntityGoal, id)
	return nil
}

// ListGoals returns all goals.
func (s *Service) ListGoals(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx, s.userID)
}

func (s *Service) publishSync(ctx context.Context, entity, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishSync(ctx, entity, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"entity", entity,
			"id", id,
			"error", err)
	}
}

func (s *Service) publishDelete(ctx context.Context, entity, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishDelete(ctx, entity, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"entity", entity,
			"id", id,
			"error", err)
	}
}
