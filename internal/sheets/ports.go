package sheets

import (
	"context"

	"finbook/internal/core"
)

// Ports for the spreadsheet mirror.
type (
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	TransactionRemover interface {
		RemoveTransaction(ctx context.Context, id string) error
	}

	// Mirror is the full spreadsheet contract the worker drives.
	Mirror interface {
		TransactionAppender
		TransactionRemover
	}
)
