package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"khata/internal/amqp"
	"khata/internal/core"
	"khata/internal/storage"
)

type fakeRemote struct {
	rows    []core.Transaction
	nextID  int64
	addErr  error
	deleted []int64
}

func (r *fakeRemote) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	return append([]core.Transaction(nil), r.rows...), nil
}

func (r *fakeRemote) AddTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if r.addErr != nil {
		return core.Transaction{}, r.addErr
	}
	r.nextID++
	t.ID = r.nextID
	r.rows = append(r.rows, t)
	return t, nil
}

func (r *fakeRemote) DeleteTransaction(_ context.Context, id int64) error {
	for i, t := range r.rows {
		if t.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return errors.New("remote row not found")
}

func testRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository, name string, cents int64, date string) core.Transaction {
	t.Helper()
	d, _ := core.ParseDate(date)
	saved, err := repo.AddTransaction(context.Background(), core.Transaction{
		Name:     name,
		Category: core.DefaultCategory,
		Account:  "Cash",
		Amount:   core.Money{Cents: cents},
		Date:     d,
		Type:     core.Expense,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return saved
}

func TestHandleSyncMessagePushesAndMarks(t *testing.T) {
	repo := testRepo(t)
	remote := &fakeRemote{}
	w := NewSyncWorker(repo, remote, 10)
	ctx := context.Background()

	saved := seedExpense(t, repo, "Groceries", -30293, "2026-01-14")

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(saved.ID)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(remote.rows) != 1 || remote.rows[0].Name != "Groceries" {
		t.Fatalf("remote rows = %+v", remote.rows)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %+v, want empty after sync", pending)
	}
}

func TestHandleSyncMessageMissingRowIsDropped(t *testing.T) {
	w := NewSyncWorker(testRepo(t), &fakeRemote{}, 10)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(999)); err != nil {
		t.Fatalf("missing row should not error: %v", err)
	}
}

func TestHandleSyncMessageRemoteFailureMarksError(t *testing.T) {
	repo := testRepo(t)
	remote := &fakeRemote{addErr: errors.New("remote down")}
	w := NewSyncWorker(repo, remote, 10)
	ctx := context.Background()

	saved := seedExpense(t, repo, "Groceries", -30293, "2026-01-14")

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(saved.ID)); err == nil {
		t.Fatal("expected error when remote push fails")
	}

	// Errored rows stay in the pending sweep for retry.
	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %+v, want the errored row", pending)
	}
}

func TestHandleDeleteMessageMatchesOnRowData(t *testing.T) {
	repo := testRepo(t)
	d, _ := core.ParseDate("2026-01-14")
	remote := &fakeRemote{
		nextID: 2,
		rows: []core.Transaction{
			{ID: 1, Name: "Other", Amount: core.Money{Cents: -100}, Date: d, Type: core.Expense},
			{ID: 2, Name: "Groceries", Amount: core.Money{Cents: -30293}, Date: d, Type: core.Expense},
		},
	}
	w := NewSyncWorker(repo, remote, 10)

	msg := amqp.NewTransactionDeleteMessage(7, "Groceries", -30293, "2026-01-14", "expense")
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleDeleteMessage: %v", err)
	}
	if len(remote.deleted) != 1 || remote.deleted[0] != 2 {
		t.Errorf("deleted = %v, want [2]", remote.deleted)
	}
}

func TestHandleDeleteMessageNoMatchSucceeds(t *testing.T) {
	w := NewSyncWorker(testRepo(t), &fakeRemote{}, 10)
	msg := amqp.NewTransactionDeleteMessage(7, "Nothing", -1, "2026-01-01", "expense")
	if err := w.HandleDeleteMessage(context.Background(), msg); err != nil {
		t.Fatalf("delete without remote match should succeed: %v", err)
	}
}

func TestProcessPendingTransactions(t *testing.T) {
	repo := testRepo(t)
	remote := &fakeRemote{}
	w := NewSyncWorker(repo, remote, 10)
	ctx := context.Background()

	seedExpense(t, repo, "first", -100, "2026-01-10")
	seedExpense(t, repo, "second", -200, "2026-01-11")

	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("ProcessPendingTransactions: %v", err)
	}
	if len(remote.rows) != 2 {
		t.Fatalf("remote rows = %d, want 2", len(remote.rows))
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %+v, want empty", pending)
	}

	// A second sweep is a no-op.
	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(remote.rows) != 2 {
		t.Errorf("remote rows after second sweep = %d, want 2", len(remote.rows))
	}
}
