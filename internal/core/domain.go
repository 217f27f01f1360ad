package core

import (
	"strings"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

const (
	Weekly  RecurrenceInterval = "weekly"
	Monthly RecurrenceInterval = "monthly"
	Yearly  RecurrenceInterval = "yearly"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	Credit     AccountType = "credit"
	Investment AccountType = "investment"
	Cash       AccountType = "cash"
)

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

type (
	TransactionKind    string
	RecurrenceInterval string
	AccountType        string
	BudgetPeriod       string

	// Transaction is a single ledger entry. Amount carries the sign
	// convention: income positive, expense negative. The sign is applied by
	// the finance service at write time, never re-derived by readers.
	Transaction struct {
		ID                string             `json:"id"`
		Amount            Money              `json:"amount_cents"`
		Kind              TransactionKind    `json:"type"`
		Category          string             `json:"category"`
		Subcategory       string             `json:"subcategory,omitempty"`
		AccountID         string             `json:"account_id"`
		Description       string             `json:"description"`
		Date              Date               `json:"date"`
		Tags              []string           `json:"tags,omitempty"`
		Recurring         bool               `json:"recurring"`
		RecurringInterval RecurrenceInterval `json:"recurring_interval,omitempty"`
	}

	// Account balance equals the opening balance plus the signed sum of all
	// live transactions referencing it.
	Account struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Type        AccountType `json:"type"`
		Balance     Money       `json:"balance_cents"`
		Currency    string      `json:"currency"`
		Institution string      `json:"institution,omitempty"`
		Active      bool        `json:"active"`
	}

	// Budget.Spent is a cache of an aggregation over transactions; the
	// authoritative value is always recomputed before it is shown.
	Budget struct {
		ID             string       `json:"id"`
		Category       string       `json:"category"`
		Limit          Money        `json:"limit_cents"`
		Spent          Money        `json:"spent_cents"`
		Period         BudgetPeriod `json:"period"`
		AlertThreshold float64      `json:"alert_threshold"` // percentage, 0-100
	}

	// Goal.Completed must equal CurrentAmount >= TargetAmount after every
	// write to either field.
	Goal struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		TargetAmount  Money  `json:"target_cents"`
		CurrentAmount Money  `json:"current_cents"`
		Deadline      Date   `json:"deadline,omitempty"` // zero when not set
		Category      string `json:"category,omitempty"`
		Completed     bool   `json:"completed"`
	}
)

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (i RecurrenceInterval) Valid() bool {
	return i == Weekly || i == Monthly || i == Yearly
}

func (t AccountType) Valid() bool {
	return t == Checking || t == Savings || t == Credit || t == Investment || t == Cash
}

func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return &ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	if t.Amount.Cents == 0 {
		return &ValidationError{Field: "amount", Reason: "must be non-zero"}
	}
	if t.Kind == Income && t.Amount.Cents < 0 {
		return &ValidationError{Field: "amount", Reason: "income must be positive"}
	}
	if t.Kind == Expense && t.Amount.Cents > 0 {
		return &ValidationError{Field: "amount", Reason: "expense must be stored negative"}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(t.Category) == "" {
		return &ValidationError{Field: "category", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return &ValidationError{Field: "account_id", Reason: "cannot be empty"}
	}
	if err := t.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Reason: err.Error()}
	}
	if t.Recurring && !t.RecurringInterval.Valid() {
		return &ValidationError{Field: "recurring_interval", Reason: "must be weekly, monthly or yearly"}
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if !a.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "unknown account type"}
	}
	if !SupportedCurrency(a.Currency) {
		return &ValidationError{Field: "currency", Reason: "unsupported currency code"}
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return &ValidationError{Field: "category", Reason: "cannot be empty"}
	}
	if b.Limit.Cents <= 0 {
		return &ValidationError{Field: "limit", Reason: "must be positive"}
	}
	if !b.Period.Valid() {
		return &ValidationError{Field: "period", Reason: "must be monthly or yearly"}
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return &ValidationError{Field: "alert_threshold", Reason: "must be between 0 and 100"}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if g.TargetAmount.Cents <= 0 {
		return &ValidationError{Field: "target_amount", Reason: "must be positive"}
	}
	if g.CurrentAmount.Cents < 0 {
		return &ValidationError{Field: "current_amount", Reason: "cannot be negative"}
	}
	if !g.Deadline.IsZero() {
		if err := g.Deadline.Validate(); err != nil {
			return &ValidationError{Field: "deadline", Reason: err.Error()}
		}
	}
	return nil
}

// InMonth reports whether the transaction's own date falls in the given
// calendar month. Both year and month are compared so the same month of
// different years is never merged.
func (t Transaction) InMonth(year, month int) bool {
	return t.Date.Year() == year && t.Date.Month() == month
}

// Magnitude is the unsigned amount, used for expense displays.
func (t Transaction) Magnitude() Money {
	return t.Amount.Abs()
}

// CloneTags returns a defensive copy of the tag list.
func CloneTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
