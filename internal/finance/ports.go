package finance

import (
	"context"

	"finbook/internal/core"
)

// Ports for the persistence gateway. Every collection is keyed by the
// owning user; no particular query language is assumed. Transactions are
// listed ordered by date descending.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
		InsertTransaction(ctx context.Context, userID string, t core.Transaction) error
		UpdateTransaction(ctx context.Context, userID string, t core.Transaction) error
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	AccountStore interface {
		ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
		GetAccount(ctx context.Context, userID, id string) (core.Account, error)
		InsertAccount(ctx context.Context, userID string, a core.Account) error
		UpdateAccount(ctx context.Context, userID string, a core.Account) error
		DeleteAccount(ctx context.Context, userID, id string) error
		// ApplyBalanceDelta adjusts an account balance by a signed amount.
		// The increment must match what a full recompute over live
		// transactions would produce.
		ApplyBalanceDelta(ctx context.Context, userID, id string, delta core.Money) error
	}

	BudgetStore interface {
		ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
		GetBudget(ctx context.Context, userID, id string) (core.Budget, error)
		InsertBudget(ctx context.Context, userID string, b core.Budget) error
		UpdateBudget(ctx context.Context, userID string, b core.Budget) error
		DeleteBudget(ctx context.Context, userID, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
		InsertGoal(ctx context.Context, userID string, g core.Goal) error
		UpdateGoal(ctx context.Context, userID string, g core.Goal) error
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// Store is the full persistence gateway contract.
	Store interface {
		TransactionStore
		AccountStore
		BudgetStore
		GoalStore
	}

	// Publisher emits async mutation events for the sync pipeline. A nil
	// publisher disables sync; failures are logged and never fail the
	// originating request.
	Publisher interface {
		PublishSync(ctx context.Context, entity, id string) error
		PublishDelete(ctx context.Context, entity, id string) error
	}
)
