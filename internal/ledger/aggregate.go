// Package ledger is the derived-financial-aggregation engine: pure functions
// that turn a flat transaction log into the grouped, totaled and
// percentage-normalized view models the screens render.
//
// Every function here is deterministic, side-effect free and safe to
// recompute in full after any change to the underlying collection. Malformed
// rows (e.g. a sign that disagrees with the entry type) are passed through
// as-is; validation happens at the write path, not here.
package ledger

import (
	"math"
	"sort"

	"khata/internal/core"
)

// Summary holds the headline totals for a transaction collection.
// Expense is a magnitude; Net = Income - Expense.
type Summary struct {
	Income  core.Money
	Expense core.Money
	Net     core.Money
}

// DayGroup is one calendar day of the ledger, most recent day first in the
// slice returned by GroupByDate.
type DayGroup struct {
	Label        string
	Date         core.Date
	Transactions []core.Transaction
}

// CategoryTotal is one row of the category breakdown. Percent is the share
// of total expense, half-up rounded to an integer.
type CategoryTotal struct {
	Name    string
	Color   string
	Amount  core.Money
	Percent int
}

// DayAmount is one point of the daily-spending series.
type DayAmount struct {
	Date   core.Date
	Amount core.Money
}

// Totals sums the collection into income, expense magnitude and net flow.
// An empty collection yields all zeros.
func Totals(txs []core.Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Expense = s.Expense.Abs()
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// GroupByDate buckets transactions by calendar day, labeled "Mon, Jan 2".
// Groups come back in descending date order; within a day the original
// insertion order is preserved. No entry is ever dropped or duplicated.
func GroupByDate(txs []core.Transaction) []DayGroup {
	var groups []DayGroup
	index := map[string]int{}
	for _, t := range txs {
		key := t.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Label: t.Date.DayLabel(), Date: t.Date})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[j].Date.Before(groups[i].Date)
	})
	return groups
}

// CategoryTotals sums expense magnitudes per category, descending by amount.
// Categories with no expense rows are omitted; ties keep first-seen order.
// With zero total expense every Percent is 0 rather than NaN.
func CategoryTotals(txs []core.Transaction) []CategoryTotal {
	var rows []CategoryTotal
	index := map[string]int{}
	var total int64
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		amt := t.Amount.Abs().Cents
		total += amt
		i, ok := index[t.Category]
		if !ok {
			i = len(rows)
			index[t.Category] = i
			rows = append(rows, CategoryTotal{Name: t.Category, Color: core.CategoryColor(t.Category)})
		}
		rows[i].Amount.Cents += amt
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.Cents > rows[j].Amount.Cents
	})
	for i := range rows {
		rows[i].Percent = percentOf(rows[i].Amount.Cents, total)
	}
	return rows
}

// percentOf returns part/whole as a half-up rounded integer percentage,
// defined as 0 when the whole is zero.
func percentOf(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int((part*100 + whole/2) / whole)
}

// DailySpending produces the gap-filled expense series between two inclusive
// dates: exactly end-start+1 points, zero for days with no spending. It does
// not look at the clock.
func DailySpending(txs []core.Transaction, start, end core.Date) []DayAmount {
	byDay := map[string]int64{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		byDay[t.Date.String()] += t.Amount.Abs().Cents
	}
	var series []DayAmount
	for d := start; !end.Before(d); d = d.Next() {
		series = append(series, DayAmount{
			Date:   d,
			Amount: core.Money{Cents: byDay[d.String()]},
		})
	}
	return series
}

// Tier classifies budget consumption for display.
type Tier string

const (
	TierSafe    Tier = "safe"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

// BudgetStatus is the rendered state of one budget. Percent is unclamped
// (and +Inf for a zero-limit budget with spending); FillPercent is clamped
// to [0,100] for progress-bar widths.
type BudgetStatus struct {
	Budget      core.Budget
	Percent     float64
	FillPercent float64
	Tier        Tier
	Remaining   core.Money
	OverBy      core.Money
}

// Status computes consumption for a single budget. A zero (or negative)
// limit is always the danger tier: there is nothing to spend against, so any
// spending is over budget by its full amount.
func Status(b core.Budget) BudgetStatus {
	st := BudgetStatus{Budget: b, Remaining: b.Limit.Sub(b.Spent)}

	if b.Limit.Cents <= 0 {
		st.Tier = TierDanger
		if b.Spent.Cents > 0 {
			st.Percent = math.Inf(1)
			st.FillPercent = 100
			st.OverBy = b.Spent.Abs()
		}
		return st
	}

	st.Percent = float64(b.Spent.Cents) / float64(b.Limit.Cents) * 100
	st.FillPercent = math.Min(math.Max(st.Percent, 0), 100)
	switch {
	case st.Percent >= 100:
		st.Tier = TierDanger
	case st.Percent >= 70:
		st.Tier = TierWarning
	default:
		st.Tier = TierSafe
	}
	if st.Remaining.Cents < 0 {
		st.OverBy = st.Remaining.Abs()
	}
	return st
}

// Statuses maps Status over a budget collection, preserving order.
func Statuses(bs []core.Budget) []BudgetStatus {
	out := make([]BudgetStatus, len(bs))
	for i, b := range bs {
		out[i] = Status(b)
	}
	return out
}

// DerivedBudgets returns a copy of the budgets with Spent recomputed from
// the transaction log (expense magnitudes matched by category name). The
// stored Spent field is not touched; callers pick whichever view they want.
func DerivedBudgets(bs []core.Budget, txs []core.Transaction) []core.Budget {
	spent := map[string]int64{}
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		spent[t.Category] += t.Amount.Abs().Cents
	}
	out := make([]core.Budget, len(bs))
	for i, b := range bs {
		b.Spent = core.Money{Cents: spent[b.Name]}
		out[i] = b
	}
	return out
}
