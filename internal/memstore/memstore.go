// Package memstore is an in-memory persistence gateway. It backs the
// default data backend and the service tests; semantics mirror the SQLite
// gateway, including date-descending transaction listings.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"finbook/internal/core"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string]map[string]core.Transaction // userID -> id -> record
	accounts     map[string]map[string]core.Account
	budgets      map[string]map[string]core.Budget
	goals        map[string]map[string]core.Goal
	unsynced     map[string]map[string]bool // userID -> transaction id
}

func New() *Store {
	return &Store{
		transactions: make(map[string]map[string]core.Transaction),
		accounts:     make(map[string]map[string]core.Account),
		budgets:      make(map[string]map[string]core.Budget),
		goals:        make(map[string]map[string]core.Goal),
		unsynced:     make(map[string]map[string]bool),
	}
}

func bucket[T any](m map[string]map[string]T, userID string) map[string]T {
	b, ok := m[userID]
	if !ok {
		b = make(map[string]T)
		m[userID] = b
	}
	return b
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.transactions, userID)
	out := make([]core.Transaction, 0, len(b))
	for _, t := range b {
		t.Tags = core.CloneTags(t.Tags)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := bucket(s.transactions, userID)[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	t.Tags = core.CloneTags(t.Tags)
	return t, nil
}

func (s *Store) InsertTransaction(_ context.Context, userID string, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Tags = core.CloneTags(t.Tags)
	bucket(s.transactions, userID)[t.ID] = t
	bucket(s.unsynced, userID)[t.ID] = true
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, userID string, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.transactions, userID)
	if _, ok := b[t.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	t.Tags = core.CloneTags(t.Tags)
	b[t.ID] = t
	bucket(s.unsynced, userID)[t.ID] = true
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.transactions, userID)
	if _, ok := b[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	delete(b, id)
	delete(bucket(s.unsynced, userID), id)
	return nil
}

func (s *Store) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.accounts, userID)
	out := make([]core.Account, 0, len(b))
	for _, a := range b {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, userID, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := bucket(s.accounts, userID)[id]
	if !ok {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) InsertAccount(_ context.Context, userID string, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.accounts, userID)[a.ID] = a
	return nil
}

func (s *Store) UpdateAccount(_ context.Context, userID string, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.accounts, userID)
	if _, ok := b[a.ID]; !ok {
		return fmt.Errorf("account %s: %w", a.ID, core.ErrNotFound)
	}
	b[a.ID] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.accounts, userID)
	if _, ok := b[id]; !ok {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	delete(b, id)
	return nil
}

func (s *Store) ApplyBalanceDelta(_ context.Context, userID, id string, delta core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.accounts, userID)
	a, ok := b[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	a.Balance = a.Balance.Add(delta)
	b[id] = a
	return nil
}

func (s *Store) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.budgets, userID)
	out := make([]core.Budget, 0, len(b))
	for _, item := range b {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, userID, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := bucket(s.budgets, userID)[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return item, nil
}

func (s *Store) InsertBudget(_ context.Context, userID string, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.budgets, userID)[b.ID] = b
	return nil
}

func (s *Store) UpdateBudget(_ context.Context, userID string, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := bucket(s.budgets, userID)
	if _, ok := m[b.ID]; !ok {
		return fmt.Errorf("budget %s: %w", b.ID, core.ErrNotFound)
	}
	m[b.ID] = b
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := bucket(s.budgets, userID)
	if _, ok := m[id]; !ok {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	delete(m, id)
	return nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := bucket(s.goals, userID)
	out := make([]core.Goal, 0, len(b))
	for _, g := range b {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := bucket(s.goals, userID)[id]
	if !ok {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	return g, nil
}

func (s *Store) InsertGoal(_ context.Context, userID string, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket(s.goals, userID)[g.ID] = g
	return nil
}

func (s *Store) UpdateGoal(_ context.Context, userID string, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := bucket(s.goals, userID)
	if _, ok := m[g.ID]; !ok {
		return fmt.Errorf("goal %s: %w", g.ID, core.ErrNotFound)
	}
	m[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := bucket(s.goals, userID)
	if _, ok := m[id]; !ok {
		return fmt.Errorf("goal %s: %w", id, core.ErrNotFound)
	}
	delete(m, id)
	return nil
}

// ListUnsyncedTransactions returns transactions not yet mirrored to the
// sheet, oldest first, up to limit.
func (s *Store) ListUnsyncedTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	pending := make([]string, 0, len(bucket(s.unsynced, userID)))
	for id := range bucket(s.unsynced, userID) {
		pending = append(pending, id)
	}
	s.mu.Unlock()

	sort.Strings(pending)
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	out := make([]core.Transaction, 0, len(pending))
	for _, id := range pending {
		t, err := s.GetTransaction(ctx, userID, id)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// MarkTransactionSynced clears the pending flag for a transaction.
func (s *Store) MarkTransactionSynced(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(bucket(s.unsynced, userID), id)
	return nil
}
