package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense EntryType = "expense"
	Income  EntryType = "income"
)

type (
	EntryType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry. Amount is signed: negative for
	// expenses, positive for income, and the sign must agree with Type.
	Transaction struct {
		ID       int64
		Name     string
		Category string
		Account  string
		Amount   Money
		Date     Date
		Type     EntryType
	}

	// RecurringPayment is a scheduled future charge, not a ledger entry.
	RecurringPayment struct {
		ID        int64
		Name      string
		Frequency string
		RenewDate Date
		Amount    Money
		Icon      string
	}

	// Budget is a per-category spending ceiling. Spent is stored
	// independently; it is not reconciled against the transaction log.
	Budget struct {
		ID    int64
		Name  string
		Spent Money
		Limit Money
		Icon  string
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidType   = errors.New("invalid entry type")
	ErrSignMismatch  = errors.New("amount sign does not match entry type")
)

// Categories is the fixed expense taxonomy. "Income" marks inflows.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Healthcare & Medical",
	"Entertainment",
	"Subscriptions",
	"Groceries",
	"Shopping",
	"Bills & Utilities",
	"Income",
}

// DefaultCategory is applied when a submission leaves the category blank.
const DefaultCategory = "Food & Dining"

var categoryColors = map[string]string{
	"Food & Dining":        "#f59e0b",
	"Transportation":       "#3b82f6",
	"Healthcare & Medical": "#ef4444",
	"Entertainment":        "#a855f7",
	"Subscriptions":        "#06b6d4",
	"Groceries":            "#22c55e",
	"Shopping":             "#ec4899",
	"Bills & Utilities":    "#64748b",
	"Income":               "#10b981",
}

// CategoryColor returns the display color for a category, with a neutral
// fallback for labels outside the fixed taxonomy.
func CategoryColor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	return "#9ca3af"
}

// KnownCategory reports whether name is part of the fixed taxonomy.
func KnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (t EntryType) Valid() bool {
	return t == Expense || t == Income
}

// NewDate creates a Date at midnight UTC. Transactions carry no
// time-of-day semantics.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the wire format YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the wire format YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// DayLabel renders the short human label day groups are keyed by, e.g. "Wed, Jan 14".
func (d Date) DayLabel() string {
	return d.Format("Mon, Jan 2")
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	t := d.AddDate(0, 0, 1)
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Before reports whether d falls on an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// SameDay reports whether two dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.YearDay() == o.YearDay()
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if t.Type == Expense && t.Amount.Cents > 0 {
		return ErrSignMismatch
	}
	if t.Type == Income && t.Amount.Cents < 0 {
		return ErrSignMismatch
	}
	return nil
}

func (p RecurringPayment) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return p.RenewDate.Validate()
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Limit.Cents < 0 || b.Spent.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
