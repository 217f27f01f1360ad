package ledger

import (
	"testing"

	"finbook/internal/core"
)

func TestMonthlySeries(t *testing.T) {
	transactions := []core.Transaction{
		income(100000, 2026, 3),
		expense(40000, "Bills & Utilities", 2026, 3),
		expense(10000, "Food & Dining", 2026, 5),
		// Outside the window.
		expense(99999, "Travel", 2026, 8),
	}

	series := MonthlySeries(transactions, core.NewDate(2026, 2, 1), core.NewDate(2026, 5, 28))
	if len(series) != 4 {
		t.Fatalf("series length = %d, want 4", len(series))
	}

	// February has no data but must still be present, zero-filled.
	if series[0].Year != 2026 || series[0].Month != 2 {
		t.Errorf("series[0] = %d-%d, want 2026-2", series[0].Year, series[0].Month)
	}
	if series[0].Income.Cents != 0 || series[0].Expenses.Cents != 0 {
		t.Errorf("series[0] not zero-filled: %+v", series[0])
	}

	if series[1].Income.Cents != 100000 || series[1].Expenses.Cents != 40000 {
		t.Errorf("series[1] = %+v, want income 100000 expenses 40000", series[1])
	}
	if series[3].Expenses.Cents != 10000 {
		t.Errorf("series[3].Expenses = %d, want 10000", series[3].Expenses.Cents)
	}
}

func TestMonthlySeriesAcrossYearBoundary(t *testing.T) {
	series := MonthlySeries(nil, core.NewDate(2025, 11, 1), core.NewDate(2026, 2, 1))
	if len(series) != 4 {
		t.Fatalf("series length = %d, want 4", len(series))
	}
	want := []struct{ y, m int }{{2025, 11}, {2025, 12}, {2026, 1}, {2026, 2}}
	for i, w := range want {
		if series[i].Year != w.y || series[i].Month != w.m {
			t.Errorf("series[%d] = %d-%d, want %d-%d", i, series[i].Year, series[i].Month, w.y, w.m)
		}
	}
}

func TestMonthlySeriesInvertedRange(t *testing.T) {
	series := MonthlySeries(nil, core.NewDate(2026, 5, 1), core.NewDate(2026, 2, 1))
	if len(series) != 0 {
		t.Errorf("inverted range: length = %d, want 0", len(series))
	}
}

func TestLastSixMonthsRange(t *testing.T) {
	start, end := LastSixMonthsRange(core.NewDate(2026, 2, 15))
	if start.Year() != 2025 || start.Month() != 9 || start.Day() != 1 {
		t.Errorf("start = %s, want 2025-09-01", start)
	}
	if end.Year() != 2026 || end.Month() != 2 {
		t.Errorf("end = %s, want 2026-02", end)
	}
}
