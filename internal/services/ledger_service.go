// Package services orchestrates writes across the local database and the
// sync queue. Local persistence is authoritative; queue publishes are best
// effort and never fail a request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/storage"
)

// Publisher is the slice of the queue client the service needs.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id int64) error
	PublishTransactionDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error
	Close() error
}

// LedgerService saves transactions locally and queues them for replay to
// the remote store. It satisfies the transaction store port, so handlers
// use it interchangeably with the plain backends.
type LedgerService struct {
	storage   *storage.SQLiteRepository
	publisher Publisher
}

func NewLedgerService(storage *storage.SQLiteRepository, publisher Publisher) *LedgerService {
	return &LedgerService{
		storage:   storage,
		publisher: publisher,
	}
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx)
}

// AddTransaction saves locally first, then queues the sync. A failed
// publish is logged and left to the pending sweep.
func (s *LedgerService) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := s.storage.AddTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSync(ctx, saved.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", saved.ID, "error", err)
	}

	return saved, nil
}

// DeleteTransaction removes the local row, then queues the remote removal. The
// delete message carries the row data because the local copy is gone.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := s.publishDelete(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *LedgerService) ListRecurringPayments(ctx context.Context) ([]core.RecurringPayment, error) {
	return s.storage.ListRecurringPayments(ctx)
}

func (s *LedgerService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx)
}

func (s *LedgerService) UpdateBudgetSpent(ctx context.Context, id int64, spent core.Money) (core.Budget, error) {
	return s.storage.UpdateBudgetSpent(ctx, id, spent)
}

func (s *LedgerService) publishSync(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Queue client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id)
}

func (s *LedgerService) publishDelete(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Queue client not available, skipping delete message")
		return nil
	}
	msg := amqp.NewTransactionDeleteMessage(t.ID, t.Name, t.Amount.Cents, t.Date.String(), string(t.Type))
	return s.publisher.PublishTransactionDelete(ctx, msg)
}

// Close closes the database and the queue connection.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("queue: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
