// Package memory is the in-process data backend. It is what the app runs on
// when no hosted service is configured (demo mode) and what the tests use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"khata/internal/core"
	"khata/internal/datastore"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	txs      []core.Transaction
	payments []core.RecurringPayment
	budgets  []core.Budget
}

// New returns an empty store.
func New() *Store {
	return &Store{nextID: 1}
}

// NewSeeded returns a store preloaded with the demo dataset.
func NewSeeded() *Store {
	s := New()
	s.txs = sampleTransactions()
	s.payments = samplePayments()
	s.budgets = sampleBudgets()
	for _, t := range s.txs {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// ListTransactions returns a copy of the ledger sorted by date descending;
// entries on the same day keep their insertion order.
func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Transaction(nil), s.txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date)
	})
	return out, nil
}

// AddTransaction validates, assigns a fresh id and stores the entry.
func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.txs = append(s.txs, t)
	return t, nil
}

// DeleteTransaction removes an entry by id.
func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.txs {
		if t.ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %d: %w", id, datastore.ErrNotFound)
}

// ListRecurringPayments returns payments ordered by renew date ascending.
func (s *Store) ListRecurringPayments(_ context.Context) ([]core.RecurringPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.RecurringPayment(nil), s.payments...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RenewDate.Before(out[j].RenewDate)
	})
	return out, nil
}

// ListBudgets returns budgets ordered by name.
func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Budget(nil), s.budgets...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// UpdateBudgetSpent overwrites the stored consumption of a budget.
func (s *Store) UpdateBudgetSpent(_ context.Context, id int64, spent core.Money) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.budgets {
		if s.budgets[i].ID == id {
			s.budgets[i].Spent = spent
			return s.budgets[i], nil
		}
	}
	return core.Budget{}, fmt.Errorf("budget %d: %w", id, datastore.ErrNotFound)
}

func sampleTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Name: "Eggs", Category: "Food & Dining", Account: "SBI", Amount: core.Money{Cents: -6000}, Date: core.NewDate(2026, 1, 14), Type: core.Expense},
		{ID: 2, Name: "Income", Category: "Income", Account: "Cash", Amount: core.Money{Cents: 200000}, Date: core.NewDate(2026, 1, 14), Type: core.Income},
		{ID: 3, Name: "Om Sai Chinese", Category: "Food & Dining", Account: "SBI", Amount: core.Money{Cents: -10000}, Date: core.NewDate(2026, 1, 13), Type: core.Expense},
		{ID: 4, Name: "Valet Parking", Category: "Transportation", Account: "SBI", Amount: core.Money{Cents: -5000}, Date: core.NewDate(2026, 1, 13), Type: core.Expense},
		{ID: 5, Name: "Zepto", Category: "Healthcare & Medical", Account: "SBI", Amount: core.Money{Cents: -59800}, Date: core.NewDate(2026, 1, 13), Type: core.Expense},
		{ID: 6, Name: "TIMEZONE ENTERTAINMENT PVT...", Category: "Entertainment", Account: "SBI", Amount: core.Money{Cents: -200000}, Date: core.NewDate(2026, 1, 13), Type: core.Expense},
		{ID: 7, Name: "Mohib Medical Store", Category: "Healthcare & Medical", Account: "SBI", Amount: core.Money{Cents: -53000}, Date: core.NewDate(2026, 1, 13), Type: core.Expense},
		{ID: 8, Name: "Starbucks", Category: "Food & Dining", Account: "SBI", Amount: core.Money{Cents: -20000}, Date: core.NewDate(2026, 1, 13), Type: core.Expense},
		{ID: 9, Name: "SHREE VRUNDAVANVIHARI STORE", Category: "Groceries", Account: "SBI", Amount: core.Money{Cents: -11000}, Date: core.NewDate(2026, 1, 10), Type: core.Expense},
		{ID: 10, Name: "Spice Franky Nation", Category: "Food & Dining", Account: "PNB Visa", Amount: core.Money{Cents: -30293}, Date: core.NewDate(2026, 1, 10), Type: core.Expense},
		{ID: 11, Name: "Salary", Category: "Income", Account: "SBI", Amount: core.Money{Cents: 12074414}, Date: core.NewDate(2026, 1, 1), Type: core.Income},
	}
}

func samplePayments() []core.RecurringPayment {
	return []core.RecurringPayment{
		{ID: 1, Name: "Birla MF", Frequency: "Monthly", RenewDate: core.NewDate(2026, 1, 22), Amount: core.Money{Cents: 500000}},
		{ID: 2, Name: "ICICI Prudential MF", Frequency: "Monthly", RenewDate: core.NewDate(2026, 1, 22), Amount: core.Money{Cents: 250000}},
		{ID: 3, Name: "Mirae MF", Frequency: "Monthly", RenewDate: core.NewDate(2026, 1, 22), Amount: core.Money{Cents: 250000}},
		{ID: 4, Name: "Claude Pro", Frequency: "Monthly", RenewDate: core.NewDate(2026, 1, 23), Amount: core.Money{Cents: 199900}},
		{ID: 5, Name: "ChatGPT Plus", Frequency: "Monthly", RenewDate: core.NewDate(2026, 1, 24), Amount: core.Money{Cents: 199900}},
		{ID: 6, Name: "Apple One", Frequency: "Monthly", RenewDate: core.NewDate(2026, 2, 6), Amount: core.Money{Cents: 19500}},
	}
}

func sampleBudgets() []core.Budget {
	return []core.Budget{
		{ID: 1, Name: "Food & Dining", Spent: core.Money{Cents: 587012}, Limit: core.Money{Cents: 800000}},
		{ID: 2, Name: "Transportation", Spent: core.Money{Cents: 275307}, Limit: core.Money{Cents: 300000}},
		{ID: 3, Name: "Entertainment", Spent: core.Money{Cents: 200000}, Limit: core.Money{Cents: 200000}},
		{ID: 4, Name: "Healthcare", Spent: core.Money{Cents: 229400}, Limit: core.Money{Cents: 300000}},
	}
}
