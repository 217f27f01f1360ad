// Package export builds and parses full-ledger snapshots. Snapshots are
// versioned so older files can be recognized and rejected or migrated.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finbook/internal/core"
	"finbook/internal/finance"
)

// SchemaVersion identifies the current snapshot layout.
const SchemaVersion = 1

// Document is a complete point-in-time snapshot of a user's ledger.
type Document struct {
	SchemaVersion int                `json:"schema_version"`
	ExportedAt    time.Time          `json:"exported_at"`
	Transactions  []core.Transaction `json:"transactions"`
	Accounts      []core.Account     `json:"accounts"`
	Budgets       []core.Budget      `json:"budgets"`
	Goals         []core.Goal        `json:"goals"`
}

// Build collects every entity for the user into a snapshot document.
func Build(ctx context.Context, store finance.Store, userID string, now time.Time) (Document, error) {
	transactions, err := store.ListTransactions(ctx, userID)
	if err != nil {
		return Document{}, fmt.Errorf("list transactions: %w", err)
	}
	accounts, err := store.ListAccounts(ctx, userID)
	if err != nil {
		return Document{}, fmt.Errorf("list accounts: %w", err)
	}
	budgets, err := store.ListBudgets(ctx, userID)
	if err != nil {
		return Document{}, fmt.Errorf("list budgets: %w", err)
	}
	goals, err := store.ListGoals(ctx, userID)
	if err != nil {
		return Document{}, fmt.Errorf("list goals: %w", err)
	}

	return Document{
		SchemaVersion: SchemaVersion,
		ExportedAt:    now.UTC(),
		Transactions:  transactions,
		Accounts:      accounts,
		Budgets:       budgets,
		Goals:         goals,
	}, nil
}

// Marshal renders the document as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return raw, nil
}

// Decode parses a snapshot and rejects unknown schema versions.
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if doc.SchemaVersion != SchemaVersion {
		return Document{}, fmt.Errorf("unsupported snapshot schema version %d", doc.SchemaVersion)
	}
	return doc, nil
}
