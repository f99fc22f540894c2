package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"khata/internal/core"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "khata.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func expense(name string, cents int64, date string) core.Transaction {
	d, _ := core.ParseDate(date)
	return core.Transaction{
		Name:     name,
		Category: core.DefaultCategory,
		Account:  "Cash",
		Amount:   core.Money{Cents: cents},
		Date:     d,
		Type:     core.Expense,
	}
}

func TestAddAndListOrdering(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		expense("older", -1000, "2026-01-10"),
		expense("newest", -2000, "2026-01-15"),
		expense("same day first", -300, "2026-01-12"),
		expense("same day second", -400, "2026-01-12"),
	} {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction(%s): %v", tx.Name, err)
		}
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	names := make([]string, len(got))
	for i, tx := range got {
		names[i] = tx.Name
	}
	want := []string{"newest", "same day first", "same day second", "older"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	repo := testRepo(t)
	bad := expense("positive expense", 500, "2026-01-10")
	if _, err := repo.AddTransaction(context.Background(), bad); !errors.Is(err, core.ErrSignMismatch) {
		t.Fatalf("err = %v, want ErrSignMismatch", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, expense("to delete", -100, "2026-01-10"))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSyncStateLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, expense("pending", -100, "2026-01-10"))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	pending, err := repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != saved.ID {
		t.Fatalf("pending = %+v, want single row id %d", pending, saved.ID)
	}

	if err := repo.MarkSynced(ctx, saved.ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after MarkSynced = %+v, want empty", pending)
	}

	// Rows marked as errored come back for retry.
	if err := repo.MarkSyncError(ctx, saved.ID); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}
	pending, err = repo.GetPendingSyncTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncTransactions: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending after MarkSyncError = %+v, want one row", pending)
	}
}

func TestGetTransaction(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	saved, err := repo.AddTransaction(ctx, expense("lookup", -750, "2026-01-10"))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	got, err := repo.GetTransaction(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Name != "lookup" || got.Amount.Cents != -750 {
		t.Errorf("got = %+v", got)
	}
	if _, err := repo.GetTransaction(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestBudgets(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.db.ExecContext(ctx, `
		INSERT INTO budgets (name, spent_cents, limit_cents, icon) VALUES
		('Transportation', 120000, 500000, 'car'),
		('Food & Dining', 302900, 800000, 'utensils')`); err != nil {
		t.Fatalf("seed budgets: %v", err)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 2 || budgets[0].Name != "Food & Dining" {
		t.Fatalf("budgets = %+v, want name-ascending order", budgets)
	}

	updated, err := repo.UpdateBudgetSpent(ctx, budgets[0].ID, core.Money{Cents: 400000})
	if err != nil {
		t.Fatalf("UpdateBudgetSpent: %v", err)
	}
	if updated.Spent.Cents != 400000 {
		t.Errorf("spent = %d, want 400000", updated.Spent.Cents)
	}
	if _, err := repo.UpdateBudgetSpent(ctx, 404, core.Money{Cents: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing budget err = %v, want ErrNotFound", err)
	}
}
