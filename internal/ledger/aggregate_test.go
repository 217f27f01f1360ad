package ledger

import (
	"testing"

	"finbook/internal/core"
)

func expense(cents int64, category string, year, month int) core.Transaction {
	return core.Transaction{
		Kind:     core.Expense,
		Amount:   core.CentsOf(-cents),
		Category: category,
		Date:     core.NewDate(year, month, 10),
	}
}

func income(cents int64, year, month int) core.Transaction {
	return core.Transaction{
		Kind:     core.Income,
		Amount:   core.CentsOf(cents),
		Category: "Income",
		Date:     core.NewDate(year, month, 1),
	}
}

func TestTotalBalance(t *testing.T) {
	accounts := []core.Account{
		{ID: "a", Balance: core.CentsOf(10000), Active: true},
		{ID: "b", Balance: core.CentsOf(-2500), Active: true},
		{ID: "c", Balance: core.CentsOf(5000), Active: false},
	}

	if got := TotalBalance(accounts, true); got.Cents != 12500 {
		t.Errorf("TotalBalance(all) = %d, want 12500", got.Cents)
	}
	if got := TotalBalance(accounts, false); got.Cents != 7500 {
		t.Errorf("TotalBalance(active) = %d, want 7500", got.Cents)
	}
}

func TestMonthlyTotals(t *testing.T) {
	transactions := []core.Transaction{
		income(300000, 2026, 8),
		expense(12000, "Food & Dining", 2026, 8),
		expense(8000, "Transportation", 2026, 8),
		// Different month and different year must be ignored.
		expense(99900, "Food & Dining", 2026, 7),
		expense(77700, "Food & Dining", 2025, 8),
		income(55500, 2025, 8),
	}

	if got := MonthlyIncome(transactions, 2026, 8); got.Cents != 300000 {
		t.Errorf("MonthlyIncome = %d, want 300000", got.Cents)
	}
	if got := MonthlyExpenses(transactions, 2026, 8); got.Cents != 20000 {
		t.Errorf("MonthlyExpenses = %d, want 20000", got.Cents)
	}
}

func TestCategorySpending(t *testing.T) {
	transactions := []core.Transaction{
		expense(12000, "Food & Dining", 2026, 8),
		expense(3000, "Food & Dining", 2026, 8),
		expense(8000, "Transportation", 2026, 8),
		// Case-sensitive: "food" is a distinct key.
		expense(500, "food", 2026, 8),
		income(100000, 2026, 8),
	}

	spending := CategorySpending(transactions, 2026, 8)
	if got := spending["Food & Dining"].Cents; got != 15000 {
		t.Errorf("Food & Dining = %d, want 15000", got)
	}
	if got := spending["food"].Cents; got != 500 {
		t.Errorf("food = %d, want 500", got)
	}
	if _, ok := spending["Income"]; ok {
		t.Error("income transactions must not appear in category spending")
	}

	// Sum over all categories equals the month's expenses.
	var sum core.Money
	for _, v := range spending {
		sum = sum.Add(v)
	}
	if expenses := MonthlyExpenses(transactions, 2026, 8); sum.Cents != expenses.Cents {
		t.Errorf("category sum = %d, monthly expenses = %d", sum.Cents, expenses.Cents)
	}
}

func TestCategorySpendingYear(t *testing.T) {
	transactions := []core.Transaction{
		expense(1000, "Travel", 2026, 1),
		expense(2000, "Travel", 2026, 12),
		expense(9000, "Travel", 2025, 6),
	}
	spending := CategorySpendingYear(transactions, 2026)
	if got := spending["Travel"].Cents; got != 3000 {
		t.Errorf("Travel = %d, want 3000", got)
	}
}

func TestConsumptionPercentUnclamped(t *testing.T) {
	tests := []struct {
		name  string
		spent int64
		limit int64
		want  float64
	}{
		{name: "half", spent: 10000, limit: 20000, want: 50},
		{name: "at threshold", spent: 18000, limit: 20000, want: 90},
		{name: "over limit stays raw", spent: 120000, limit: 100000, want: 120},
		{name: "zero limit", spent: 5000, limit: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConsumptionPercent(core.CentsOf(tt.spent), core.CentsOf(tt.limit))
			if got != tt.want {
				t.Errorf("ConsumptionPercent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClampPercent(t *testing.T) {
	if got := ClampPercent(150); got != 100 {
		t.Errorf("ClampPercent(150) = %v, want 100", got)
	}
	if got := ClampPercent(42.5); got != 42.5 {
		t.Errorf("ClampPercent(42.5) = %v, want 42.5", got)
	}
	if got := ClampPercent(-1); got != 0 {
		t.Errorf("ClampPercent(-1) = %v, want 0", got)
	}
}
