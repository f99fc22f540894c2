package datastore

import (
	"context"
	"errors"

	"khata/internal/core"
)

// ErrNotFound is returned by any backend when the addressed record does not
// exist.
var ErrNotFound = errors.New("record not found")

// Ports for the data backends. The aggregation engine and the HTTP layer
// depend on these, never on a concrete store: demo mode, the local sqlite
// store and the hosted table API all plug in behind the same interfaces.
type (
	TransactionStore interface {
		// ListTransactions returns the ledger, most recent date first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// AddTransaction stores a new entry and returns it with its assigned id.
		AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// DeleteTransaction removes an entry by id.
		DeleteTransaction(ctx context.Context, id int64) error
	}

	RecurringStore interface {
		// ListRecurringPayments returns payments ordered by renew date.
		ListRecurringPayments(ctx context.Context) ([]core.RecurringPayment, error)
	}

	BudgetStore interface {
		// ListBudgets returns budgets ordered by name.
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		// UpdateBudgetSpent overwrites the stored consumption of a budget.
		UpdateBudgetSpent(ctx context.Context, id int64, spent core.Money) (core.Budget, error)
	}

	// Store bundles the three collections one backend provides.
	Store interface {
		TransactionStore
		RecurringStore
		BudgetStore
	}
)
