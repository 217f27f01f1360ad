// Package currency converts and formats monetary amounts for display.
//
// A rate table maps currency codes to rates expressed as units of that
// currency per one unit of a common base. Conversion is pure: the target
// currency and the rate snapshot are passed in explicitly, never read from
// ambient configuration.
package currency

import (
	"math"

	"finbook/internal/core"
)

// Conversion is the outcome of a Convert call. Approximate is set when
// only the target rate was known and the single-rate fallback was used;
// callers should surface that, not swallow it. Converted is false when
// neither rate was known and the amount passed through unchanged.
type Conversion struct {
	Amount      core.Money
	Converted   bool
	Approximate bool
}

// Convert translates an amount from one currency to another using the
// given rate snapshot.
//
//   - Same currency: returned unchanged.
//   - Both rates known: amount / rates[from] * rates[to].
//   - Only the target rate known: amount * rates[to], flagged approximate.
//   - Neither known: returned unchanged, Converted false.
func Convert(amount core.Money, from, to string, rates map[string]float64) Conversion {
	if from == to {
		return Conversion{Amount: amount, Converted: true}
	}

	fromRate, fromKnown := rates[from]
	toRate, toKnown := rates[to]

	switch {
	case fromKnown && toKnown && fromRate != 0:
		units := amount.Units() / fromRate * toRate
		return Conversion{Amount: roundToCents(units), Converted: true}
	case toKnown:
		units := amount.Units() * toRate
		return Conversion{Amount: roundToCents(units), Converted: true, Approximate: true}
	default:
		return Conversion{Amount: amount}
	}
}

func roundToCents(units float64) core.Money {
	return core.CentsOf(int64(math.Round(units * 100)))
}
