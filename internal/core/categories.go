package core

// DefaultCategories seeds the category picker. Categories are free-form
// strings; this list is a convenience, not a constraint, and no referential
// integrity ties budgets, goals or transactions to it.
var DefaultCategories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Income",
	"Investments",
	"Other",
}

// supportedCurrencies are the currency codes accounts may be denominated
// in. Rate tables may carry more codes than this; these are the ones the
// validation layer accepts on account creation.
var supportedCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"JPY": true,
	"CHF": true,
	"CAD": true,
	"AUD": true,
	"SEK": true,
	"NOK": true,
	"PLN": true,
	"KRW": true,
	"INR": true,
	"BRL": true,
}

// SupportedCurrency reports whether code is accepted for accounts.
func SupportedCurrency(code string) bool {
	return supportedCurrencies[code]
}

// SupportedCurrencies lists the accepted codes in no particular order.
func SupportedCurrencies() []string {
	out := make([]string, 0, len(supportedCurrencies))
	for code := range supportedCurrencies {
		out = append(out, code)
	}
	return out
}
