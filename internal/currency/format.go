package currency

import (
	"fmt"
	"strconv"

	"finbook/internal/core"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"KRW": "₩",
	"INR": "₹",
	"BRL": "R$",
	"CHF": "CHF ",
	"CAD": "CA$",
	"AUD": "A$",
}

// zeroMinorUnits lists currencies with no minor unit; they render with no
// decimal places, rounding the cent component half-up.
var zeroMinorUnits = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// Format renders an amount with the currency's symbol and minor-unit
// convention: two decimals for most codes, none for currencies without
// minor units. Unknown codes fall back to "CODE 12.34".
func Format(m core.Money, code string) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}

	var body string
	if zeroMinorUnits[code] {
		body = strconv.FormatInt((cents+50)/100, 10)
	} else {
		body = fmt.Sprintf("%d.%02d", cents/100, cents%100)
	}

	prefix, known := symbols[code]
	if !known {
		prefix = code + " "
	}
	if neg {
		return "-" + prefix + body
	}
	return prefix + body
}
