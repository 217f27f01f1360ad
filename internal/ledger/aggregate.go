// Package ledger computes derived state from snapshots of the four entity
// collections. Every function here is pure: all inputs are passed
// explicitly and nothing is mutated, so calls are safe to repeat and to
// run concurrently.
package ledger

import (
	"finbook/internal/core"
)

// TotalBalance sums account balances. Inactive accounts are included by
// default; pass includeInactive=false to restrict the sum to active ones.
func TotalBalance(accounts []core.Account, includeInactive bool) core.Money {
	var total core.Money
	for _, a := range accounts {
		if !includeInactive && !a.Active {
			continue
		}
		total = total.Add(a.Balance)
	}
	return total
}

// MonthlyIncome sums income transactions dated in the given year and month.
func MonthlyIncome(transactions []core.Transaction, year, month int) core.Money {
	var total core.Money
	for _, t := range transactions {
		if t.Kind == core.Income && t.InMonth(year, month) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// MonthlyExpenses sums the magnitude of expense transactions dated in the
// given year and month.
func MonthlyExpenses(transactions []core.Transaction, year, month int) core.Money {
	var total core.Money
	for _, t := range transactions {
		if t.Kind == core.Expense && t.InMonth(year, month) {
			total = total.Add(t.Magnitude())
		}
	}
	return total
}

// CategorySpending maps category to expense magnitude for the given month.
// Category strings are preserved verbatim, case-sensitive. Income
// transactions never appear, so the sum over all categories equals
// MonthlyExpenses for the same month.
func CategorySpending(transactions []core.Transaction, year, month int) map[string]core.Money {
	spending := make(map[string]core.Money)
	for _, t := range transactions {
		if t.Kind != core.Expense || !t.InMonth(year, month) {
			continue
		}
		spending[t.Category] = spending[t.Category].Add(t.Magnitude())
	}
	return spending
}

// CategorySpendingYear is CategorySpending over a full calendar year,
// used for yearly budget periods.
func CategorySpendingYear(transactions []core.Transaction, year int) map[string]core.Money {
	spending := make(map[string]core.Money)
	for _, t := range transactions {
		if t.Kind != core.Expense || t.Date.Year() != year {
			continue
		}
		spending[t.Category] = spending[t.Category].Add(t.Magnitude())
	}
	return spending
}

// ConsumptionPercent is the raw, unclamped budget consumption percentage.
// Threshold and over-budget checks must use this value; a budget at 150%
// must still read as 150, not 100. Returns 0 for a non-positive limit.
func ConsumptionPercent(spent, limit core.Money) float64 {
	if limit.Cents <= 0 {
		return 0
	}
	return float64(spent.Cents) / float64(limit.Cents) * 100
}

// GoalProgressPercent is the raw, unclamped goal progress percentage.
// Completion checks compare amounts directly, not this value.
func GoalProgressPercent(current, target core.Money) float64 {
	if target.Cents <= 0 {
		return 0
	}
	return float64(current.Cents) / float64(target.Cents) * 100
}

// ClampPercent caps a raw percentage at 100 for progress-bar rendering.
// Display only: never feed the clamped value back into threshold logic.
func ClampPercent(p float64) float64 {
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
