// Package supabase is the thin CRUD client for the hosted table API. It
// carries no logic of its own: each call maps one-to-one onto a REST query
// against a table, and failures surface as a single wrapped error.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"khata/internal/core"
)

const (
	transactionsTable = "transactions"
	recurringTable    = "recurring_payments"
	budgetsTable      = "budgets"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the hosted service at baseURL authenticated with
// the anon API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// transactionRow is the remote shape of a transaction. Amount arrives as a
// decimal in text form and needs explicit coercion on read.
type transactionRow struct {
	ID       int64           `json:"id,omitempty"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Account  string          `json:"account"`
	Amount   json.RawMessage `json:"amount"`
	Date     string          `json:"date"`
	Type     string          `json:"type"`
}

type recurringRow struct {
	ID        int64           `json:"id,omitempty"`
	Name      string          `json:"name"`
	Frequency string          `json:"frequency"`
	RenewDate string          `json:"renew_date"`
	Amount    json.RawMessage `json:"amount"`
	Icon      string          `json:"icon,omitempty"`
}

type budgetRow struct {
	ID     int64           `json:"id,omitempty"`
	Name   string          `json:"name"`
	Spent  json.RawMessage `json:"spent"`
	Budget json.RawMessage `json:"budget"`
	Icon   string          `json:"icon,omitempty"`
}

// ListTransactions fetches all rows ordered by date descending.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var rows []transactionRow
	if err := c.get(ctx, transactionsTable, url.Values{"select": {"*"}, "order": {"date.desc"}}, &rows); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list transactions: row %d: %w", r.ID, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// AddTransaction inserts a row and returns the stored record with its
// assigned id.
func (c *Client) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	row := transactionRow{
		Name:     t.Name,
		Category: t.Category,
		Account:  t.Account,
		Amount:   cents2raw(t.Amount),
		Date:     t.Date.String(),
		Type:     string(t.Type),
	}
	var created []transactionRow
	if err := c.post(ctx, transactionsTable, row, &created); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	if len(created) == 0 {
		return core.Transaction{}, fmt.Errorf("add transaction: empty response")
	}
	return created[0].toDomain()
}

// DeleteTransaction removes a row by id.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	if err := c.delete(ctx, transactionsTable, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// ListRecurringPayments fetches payments ordered by renew date ascending.
func (c *Client) ListRecurringPayments(ctx context.Context) ([]core.RecurringPayment, error) {
	var rows []recurringRow
	if err := c.get(ctx, recurringTable, url.Values{"select": {"*"}, "order": {"renew_date.asc"}}, &rows); err != nil {
		return nil, fmt.Errorf("list recurring payments: %w", err)
	}
	out := make([]core.RecurringPayment, 0, len(rows))
	for _, r := range rows {
		amount, err := rawCents(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("list recurring payments: row %d: %w", r.ID, err)
		}
		date, err := core.ParseDate(r.RenewDate)
		if err != nil {
			return nil, fmt.Errorf("list recurring payments: row %d: %w", r.ID, err)
		}
		out = append(out, core.RecurringPayment{
			ID:        r.ID,
			Name:      r.Name,
			Frequency: r.Frequency,
			RenewDate: date,
			Amount:    core.Money{Cents: amount},
			Icon:      r.Icon,
		})
	}
	return out, nil
}

// ListBudgets fetches budgets ordered by name.
func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var rows []budgetRow
	if err := c.get(ctx, budgetsTable, url.Values{"select": {"*"}, "order": {"name.asc"}}, &rows); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, r := range rows {
		b, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list budgets: row %d: %w", r.ID, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// UpdateBudgetSpent patches the stored consumption of a budget.
func (c *Client) UpdateBudgetSpent(ctx context.Context, id int64, spent core.Money) (core.Budget, error) {
	var updated []budgetRow
	patch := map[string]json.RawMessage{"spent": cents2raw(spent)}
	if err := c.patch(ctx, budgetsTable, id, patch, &updated); err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}
	if len(updated) == 0 {
		return core.Budget{}, fmt.Errorf("update budget %d: not found", id)
	}
	return updated[0].toDomain()
}

func (r transactionRow) toDomain() (core.Transaction, error) {
	cents, err := rawCents(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Account:  r.Account,
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Type:     core.EntryType(r.Type),
	}, nil
}

func (r budgetRow) toDomain() (core.Budget, error) {
	spent, err := rawCents(r.Spent)
	if err != nil {
		return core.Budget{}, err
	}
	limit, err := rawCents(r.Budget)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		ID:    r.ID,
		Name:  r.Name,
		Spent: core.Money{Cents: spent},
		Limit: core.Money{Cents: limit},
		Icon:  r.Icon,
	}, nil
}

// rawCents coerces a JSON number or numeric string ("-60", "302.93") into
// cents. Zero and signed values are legal on the wire even though local
// submissions are validated more strictly.
func rawCents(raw json.RawMessage) (int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	s = strings.Trim(s, `"`)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	if s == "" {
		return 0, fmt.Errorf("malformed amount %q", raw)
	}
	if isZeroDecimal(s) {
		return 0, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", raw, err)
	}
	if neg {
		cents = -cents
	}
	return cents, nil
}

func isZeroDecimal(s string) bool {
	for _, r := range s {
		if r != '0' && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

func cents2raw(m core.Money) json.RawMessage {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10)
	if cents%100 != 0 {
		s += fmt.Sprintf(".%02d", cents%100)
	}
	if neg {
		s = "-" + s
	}
	return json.RawMessage(s)
}

func (c *Client) get(ctx context.Context, table string, query url.Values, into any) error {
	return c.do(ctx, http.MethodGet, c.tableURL(table, query), nil, into)
}

func (c *Client) post(ctx context.Context, table string, body any, into any) error {
	return c.do(ctx, http.MethodPost, c.tableURL(table, nil), body, into)
}

func (c *Client) patch(ctx context.Context, table string, id int64, body any, into any) error {
	q := url.Values{"id": {"eq." + strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodPatch, c.tableURL(table, q), body, into)
}

func (c *Client) delete(ctx context.Context, table string, id int64) error {
	q := url.Values{"id": {"eq." + strconv.FormatInt(id, 10)}}
	return c.do(ctx, http.MethodDelete, c.tableURL(table, q), nil, nil)
}

func (c *Client) tableURL(table string, query url.Values) string {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawurl string, body, into any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawurl, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if into != nil && method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawurl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, rawurl, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if into == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
