package ledger

import (
	"finbook/internal/core"
)

// MonthSummary is one point of a trend series.
type MonthSummary struct {
	Year     int
	Month    int // 1-12
	Income   core.Money
	Expenses core.Money
}

// MonthlySeries produces one entry per calendar month in the inclusive
// start-to-end range, ordered chronologically ascending. Months with no
// transactions are zero-filled. Transactions outside the range are
// ignored; an inverted range yields an empty series.
func MonthlySeries(transactions []core.Transaction, start, end core.Date) []MonthSummary {
	first := start.Year()*12 + start.Month() - 1
	last := end.Year()*12 + end.Month() - 1
	if last < first {
		return nil
	}

	series := make([]MonthSummary, 0, last-first+1)
	index := make(map[int]int, last-first+1)
	for m := first; m <= last; m++ {
		index[m] = len(series)
		series = append(series, MonthSummary{Year: m / 12, Month: m%12 + 1})
	}

	for _, t := range transactions {
		key := t.Date.Year()*12 + t.Date.Month() - 1
		i, ok := index[key]
		if !ok {
			continue
		}
		switch t.Kind {
		case core.Income:
			series[i].Income = series[i].Income.Add(t.Amount)
		case core.Expense:
			series[i].Expenses = series[i].Expenses.Add(t.Magnitude())
		}
	}

	return series
}

// LastSixMonthsRange returns the default report window: the first day of
// the month five months before the given date through that date's month.
func LastSixMonthsRange(today core.Date) (start, end core.Date) {
	m := today.Year()*12 + today.Month() - 1 - 5
	return core.NewDate(m/12, m%12+1, 1), core.NewDate(today.Year(), today.Month(), 1)
}
