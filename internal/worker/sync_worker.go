// Package worker replays locally saved transactions against the remote
// store. It consumes queue messages and also sweeps the database for rows
// still marked pending, so nothing is lost when messages are dropped.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/storage"
)

// RemoteStore is the slice of the remote client the worker needs.
type RemoteStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    RemoteStore
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, remote RemoteStore, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		remote:    remote,
		batchSize: batchSize,
	}
}

// HandleSyncMessage pushes one local transaction to the remote store and
// records the outcome on the row.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	t, err := w.storage.GetTransaction(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Row deleted locally before the sync ran; nothing to replay.
		slog.WarnContext(ctx, "Transaction gone before sync, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.pushTransaction(ctx, t)
}

// HandleDeleteMessage removes the matching transaction from the remote
// store. The local row is already gone, so matching runs on the carried
// row data. A missing remote row counts as success.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID, "name", msg.Name)

	remote, err := w.remote.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list remote transactions: %w", err)
	}

	for _, t := range remote {
		if t.Name == msg.Name &&
			t.Amount.Cents == msg.AmountCents &&
			t.Date.String() == msg.Date &&
			string(t.Type) == msg.Type {
			if err := w.remote.DeleteTransaction(ctx, t.ID); err != nil {
				return fmt.Errorf("delete remote transaction %d: %w", t.ID, err)
			}
			slog.InfoContext(ctx, "Deleted transaction from remote store",
				"local_id", msg.ID, "remote_id", t.ID)
			return nil
		}
	}

	slog.WarnContext(ctx, "No matching remote transaction for delete",
		"id", msg.ID, "name", msg.Name, "date", msg.Date)
	return nil
}

// ProcessPendingTransactions replays rows still marked pending. This is the
// backup path for messages lost between publish and consume.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending transaction", "id", p.ID, "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", err)
			}
			continue
		}
		if err := w.pushTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction", "id", p.ID, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck runs one pending sweep when the worker boots, clearing
// any backlog from downtime before live consumption begins.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup sync check")
	return w.ProcessPendingTransactions(ctx)
}

func (w *SyncWorker) pushTransaction(ctx context.Context, t core.Transaction) error {
	local := t.ID
	t.ID = 0 // remote assigns its own id
	if _, err := w.remote.AddTransaction(ctx, t); err != nil {
		if markErr := w.storage.MarkSyncError(ctx, local); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", local, "error", markErr)
		}
		return fmt.Errorf("push transaction to remote: %w", err)
	}
	if err := w.storage.MarkSynced(ctx, local); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction synced to remote store", "id", local)
	return nil
}
