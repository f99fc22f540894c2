package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"khata/internal/core"
	"khata/internal/datastore"
	"khata/internal/ledger"
)

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	const key = "ledger"
	if view, ok := s.ledgerCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	view := buildLedgerView(txs)
	s.ledgerCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

// createTransactionRequest is the write payload. Amount is an unsigned
// decimal string; the sign is derived from the type.
type createTransactionRequest struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Account  string `json:"account"`
	Date     string `json:"date"`
	Type     string `json:"type"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	entryType := core.EntryType(strings.TrimSpace(req.Type))
	if req.Type == "" {
		entryType = core.Expense
	}
	if !entryType.Valid() {
		writeError(w, http.StatusBadRequest, "invalid type, expected 'expense' or 'income'")
		return
	}
	if entryType == core.Expense {
		cents = -cents
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = core.DefaultCategory
	}

	date := core.Today()
	if strings.TrimSpace(req.Date) != "" {
		date, err = core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	t := core.Transaction{
		Name:     strings.TrimSpace(req.Name),
		Category: category,
		Account:  strings.TrimSpace(req.Account),
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Type:     entryType,
	}

	saved, err := s.store.AddTransaction(r.Context(), t)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.invalidateViews()
	slog.InfoContext(r.Context(), "Transaction created",
		"id", saved.ID,
		"name", saved.Name,
		"amount_cents", saved.Amount.Cents,
		"category", saved.Category)

	writeJSON(w, http.StatusCreated, buildTransactionView(saved))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateViews()
	slog.InfoContext(r.Context(), "Transaction deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := start.String() + "|" + end.String()
	if view, ok := s.reviewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, view)
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load review")
		return
	}

	view := buildReviewView(txs, start, end)
	s.reviewCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ListRecurringPayments(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list recurring payments", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load recurring payments")
		return
	}
	writeJSON(w, http.StatusOK, buildRecurringView(payments, core.Today()))
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "stored"
	}
	if view != "stored" && view != "derived" {
		writeError(w, http.StatusBadRequest, "invalid view, expected 'stored' or 'derived'")
		return
	}

	budgets, err := s.store.ListBudgets(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list budgets", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load budgets")
		return
	}

	if view == "derived" {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load budgets")
			return
		}
		budgets = ledger.DerivedBudgets(budgets, txs)
	}

	writeJSON(w, http.StatusOK, buildBudgetsView(view, budgets))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrEmptyName,
		core.ErrInvalidType,
		core.ErrSignMismatch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
