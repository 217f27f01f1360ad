package currency

import (
	"math"
	"testing"

	"finbook/internal/core"
)

func TestConvertSameCurrency(t *testing.T) {
	got := Convert(core.CentsOf(12345), "USD", "USD", map[string]float64{})
	if !got.Converted || got.Approximate {
		t.Errorf("identity conversion flags = %+v, want converted and exact", got)
	}
	if got.Amount.Cents != 12345 {
		t.Errorf("identity conversion changed amount: %d", got.Amount.Cents)
	}
}

func TestConvertBothRatesKnown(t *testing.T) {
	rates := map[string]float64{"USD": 1, "EUR": 0.9}

	got := Convert(core.CentsOf(10000), "USD", "EUR", rates)
	if !got.Converted || got.Approximate {
		t.Fatalf("flags = %+v, want converted and exact", got)
	}
	if got.Amount.Cents != 9000 {
		t.Errorf("100 USD -> EUR = %d cents, want 9000", got.Amount.Cents)
	}

	// Non-base pair goes through the shared base.
	rates["GBP"] = 0.8
	got = Convert(core.CentsOf(9000), "EUR", "GBP", rates)
	if got.Amount.Cents != 8000 {
		t.Errorf("90 EUR -> GBP = %d cents, want 8000", got.Amount.Cents)
	}
}

func TestConvertRoundTripTolerance(t *testing.T) {
	rates := map[string]float64{"USD": 1, "EUR": 0.9137, "JPY": 147.33}

	for _, cents := range []int64{1, 99, 12345, 9999999} {
		there := Convert(core.CentsOf(cents), "USD", "EUR", rates)
		back := Convert(there.Amount, "EUR", "USD", rates)
		if diff := math.Abs(float64(back.Amount.Cents - cents)); diff > 1 {
			t.Errorf("round trip of %d drifted by %v cents", cents, diff)
		}
	}
}

func TestConvertSingleRateFallback(t *testing.T) {
	rates := map[string]float64{"EUR": 0.9}

	got := Convert(core.CentsOf(10000), "XAU", "EUR", rates)
	if !got.Converted {
		t.Fatal("fallback conversion should report converted")
	}
	if !got.Approximate {
		t.Error("fallback conversion must be flagged approximate")
	}
	if got.Amount.Cents != 9000 {
		t.Errorf("fallback = %d cents, want 9000", got.Amount.Cents)
	}
}

func TestConvertNoRatesKnown(t *testing.T) {
	got := Convert(core.CentsOf(10000), "XAU", "XAG", map[string]float64{"USD": 1})
	if got.Converted {
		t.Error("unknown pair should not report converted")
	}
	if got.Amount.Cents != 10000 {
		t.Errorf("unknown pair changed amount: %d", got.Amount.Cents)
	}
}

func TestConvertZeroFromRate(t *testing.T) {
	// A zero source rate cannot be divided through; it behaves like an
	// unknown source with the single-rate fallback.
	rates := map[string]float64{"BAD": 0, "EUR": 0.9}
	got := Convert(core.CentsOf(10000), "BAD", "EUR", rates)
	if !got.Approximate {
		t.Error("zero from-rate should fall back to approximate conversion")
	}
}
