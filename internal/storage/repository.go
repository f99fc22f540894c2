// Package storage is the local sqlite persistence layer. Writes land here
// first; a sync_state column tracks which rows still have to be replayed
// against the remote store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"khata/internal/core"
	"khata/internal/datastore"

	_ "modernc.org/sqlite"
)

// ErrNotFound aliases the shared backend sentinel so callers can match
// either name.
var ErrNotFound = datastore.ErrNotFound

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions returns every transaction, newest date first. Rows saved
// on the same day keep insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, account, amount_cents, date, type
		FROM transactions
		ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (name, category, account, amount_cents, date, type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Category, t.Account, t.Amount.Cents, t.Date.String(), string(t.Type))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved to sqlite",
		"id", t.ID,
		"name", t.Name,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetTransaction fetches a single row by id, used by the sync worker to
// replay a pending write against the remote store.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, account, amount_cents, date, type
		FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListRecurringPayments(ctx context.Context) ([]core.RecurringPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, frequency, renew_date, amount_cents, icon
		FROM recurring_payments
		ORDER BY renew_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recurring payments: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringPayment
	for rows.Next() {
		var (
			p        core.RecurringPayment
			renewRaw string
			cents    int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Frequency, &renewRaw, &cents, &p.Icon); err != nil {
			return nil, fmt.Errorf("list recurring payments: %w", err)
		}
		date, err := core.ParseDate(renewRaw)
		if err != nil {
			return nil, fmt.Errorf("list recurring payments: row %d: %w", p.ID, err)
		}
		p.RenewDate = date
		p.Amount = core.Money{Cents: cents}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recurring payments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, spent_cents, limit_cents, icon
		FROM budgets
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b            core.Budget
			spent, limit int64
		)
		if err := rows.Scan(&b.ID, &b.Name, &spent, &limit, &b.Icon); err != nil {
			return nil, fmt.Errorf("list budgets: %w", err)
		}
		b.Spent = core.Money{Cents: spent}
		b.Limit = core.Money{Cents: limit}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateBudgetSpent(ctx context.Context, id int64, spent core.Money) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET spent_cents = ? WHERE id = ?`, spent.Cents, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}
	if n == 0 {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, spent_cents, limit_cents, icon FROM budgets WHERE id = ?`, id)
	var (
		b      core.Budget
		sc, lc int64
	)
	if err := row.Scan(&b.ID, &b.Name, &sc, &lc, &b.Icon); err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}
	b.Spent = core.Money{Cents: sc}
	b.Limit = core.Money{Cents: lc}
	return b, nil
}

// PendingSyncTransaction is the minimal row shape queued for replay.
type PendingSyncTransaction struct {
	ID        int64
	CreatedAt time.Time
}

// GetPendingSyncTransactions returns rows not yet confirmed on the remote
// store, oldest first, capped at limit.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at
		FROM transactions
		WHERE sync_state != 'synced'
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("get pending sync transactions: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transactions SET sync_state = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transactions SET sync_state = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		cents   int64
		dateRaw string
		typeRaw string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Category, &t.Account, &cents, &dateRaw, &typeRaw); err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(dateRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row %d: %w", t.ID, err)
	}
	t.Amount = core.Money{Cents: cents}
	t.Date = date
	t.Type = core.EntryType(typeRaw)
	return t, nil
}
