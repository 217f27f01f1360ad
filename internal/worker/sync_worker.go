// Package worker mirrors transactions from the ledger store to a
// spreadsheet. It is driven by queue messages, with a periodic catch-up
// pass over rows the queue may have missed.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/finance"
	"finbook/internal/sheets"
)

// SyncQueue is the storage surface the worker needs: record lookup plus
// the pending-sync bookkeeping.
type SyncQueue interface {
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	ListUnsyncedTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
	MarkTransactionSynced(ctx context.Context, userID, id string) error
}

// SyncWorker handles synchronization of transactions to the spreadsheet
// mirror.
type SyncWorker struct {
	queue     SyncQueue
	mirror    sheets.Mirror
	userID    string
	batchSize int
}

func NewSyncWorker(queue SyncQueue, mirror sheets.Mirror, userID string, batchSize int) *SyncWorker {
	return &SyncWorker{
		queue:     queue,
		mirror:    mirror,
		userID:    userID,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches a queue message to the sync or delete path.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.EventMessage) error {
	switch msg.Type {
	case amqp.TypeSync:
		return w.HandleSyncMessage(ctx, msg)
	case amqp.TypeDelete:
		return w.HandleDeleteMessage(ctx, msg)
	default:
		slog.WarnContext(ctx, "Unknown message type, dropping",
			"type", msg.Type,
			"entity", msg.Entity,
			"id", msg.ID)
		return nil
	}
}

// HandleSyncMessage mirrors one transaction. Only transactions have a
// spreadsheet representation; other entities are acknowledged unchanged.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EventMessage) error {
	if msg.Entity != finance.EntityTransaction {
		slog.DebugContext(ctx, "Entity has no sheet representation, skipping",
			"entity", msg.Entity,
			"id", msg.ID)
		return nil
	}

	t, err := w.queue.GetTransaction(ctx, w.userID, msg.ID)
	if err != nil {
		// The record may have been deleted between publish and consume.
		// The delete message will handle the mirror side.
		slog.WarnContext(ctx, "Transaction gone before sync, skipping",
			"id", msg.ID,
			"error", err)
		return nil
	}

	return w.mirrorTransaction(ctx, t)
}

// HandleDeleteMessage removes the mirrored row for a deleted transaction.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EventMessage) error {
	if msg.Entity != finance.EntityTransaction {
		return nil
	}

	if err := w.mirror.RemoveTransaction(ctx, msg.ID); err != nil {
		return fmt.Errorf("remove transaction from sheet: %w", err)
	}

	slog.InfoContext(ctx, "Removed transaction from sheet", "id", msg.ID)
	return nil
}

// ProcessPending mirrors transactions the queue missed. This is the
// backup path for lost messages and worker downtime.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.queue.ListUnsyncedTransactions(ctx, w.userID, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.mirrorTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", t.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains a larger pending batch once at worker start, to
// recover from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.queue.ListUnsyncedTransactions(ctx, w.userID, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unsynced transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, t := range pending {
		if err := w.mirrorTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

func (w *SyncWorker) mirrorTransaction(ctx context.Context, t core.Transaction) error {
	// Remove any previous row first so updates do not duplicate.
	if err := w.mirror.RemoveTransaction(ctx, t.ID); err != nil {
		return fmt.Errorf("remove stale row: %w", err)
	}

	ref, err := w.mirror.AppendTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.queue.MarkTransactionSynced(ctx, w.userID, t.ID); err != nil {
		// The mirror write worked; the row will simply be re-synced later.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", t.ID,
		"sheet_ref", ref,
		"description", t.Description,
		"amount_cents", t.Amount.Cents)

	return nil
}
