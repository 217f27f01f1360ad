package finance

import (
	"context"
	"fmt"

	"finbook/internal/core"
	"finbook/internal/ledger"
)

// Summary is the dashboard snapshot for one calendar month.
type Summary struct {
	Year             int
	Month            int
	TotalBalance     core.Money
	MonthlyIncome    core.Money
	MonthlyExpenses  core.Money
	CategorySpending map[string]core.Money
}

// Summary computes the month's aggregates from a fresh snapshot of
// accounts and transactions.
func (s *Service) Summary(ctx context.Context, year, month int) (Summary, error) {
	accounts, err := s.store.ListAccounts(ctx, s.userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list accounts: %w", err)
	}
	transactions, err := s.store.ListTransactions(ctx, s.userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	return Summary{
		Year:             year,
		Month:            month,
		TotalBalance:     ledger.TotalBalance(accounts, true),
		MonthlyIncome:    ledger.MonthlyIncome(transactions, year, month),
		MonthlyExpenses:  ledger.MonthlyExpenses(transactions, year, month),
		CategorySpending: ledger.CategorySpending(transactions, year, month),
	}, nil
}

// Series produces the zero-filled monthly trend series for the inclusive
// date range.
func (s *Service) Series(ctx context.Context, start, end core.Date) ([]ledger.MonthSummary, error) {
	transactions, err := s.store.ListTransactions(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.MonthlySeries(transactions, start, end), nil
}
