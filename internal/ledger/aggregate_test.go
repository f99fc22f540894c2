package ledger

import (
	"math"
	"testing"

	"khata/internal/core"
)

func tx(id int64, name, category string, cents int64, date core.Date, typ core.EntryType) core.Transaction {
	return core.Transaction{ID: id, Name: name, Category: category, Account: "SBI", Amount: core.Money{Cents: cents}, Date: date, Type: typ}
}

func sampleLedger() []core.Transaction {
	return []core.Transaction{
		tx(1, "Eggs", "Food & Dining", -6000, core.NewDate(2026, 1, 14), core.Expense),
		tx(2, "Income", "Income", 200000, core.NewDate(2026, 1, 14), core.Income),
		tx(3, "Om Sai Chinese", "Food & Dining", -10000, core.NewDate(2026, 1, 13), core.Expense),
		tx(4, "Valet Parking", "Transportation", -5000, core.NewDate(2026, 1, 13), core.Expense),
		tx(5, "Zepto", "Healthcare & Medical", -59800, core.NewDate(2026, 1, 13), core.Expense),
		tx(6, "Salary", "Income", 12074414, core.NewDate(2026, 1, 1), core.Income),
	}
}

func TestTotals(t *testing.T) {
	s := Totals(sampleLedger())
	if s.Income.Cents != 12274414 {
		t.Fatalf("income = %d", s.Income.Cents)
	}
	if s.Expense.Cents != 80800 {
		t.Fatalf("expense = %d", s.Expense.Cents)
	}
	if s.Net.Cents != s.Income.Cents-s.Expense.Cents {
		t.Fatalf("net %d != income - expense", s.Net.Cents)
	}
}

func TestTotalsEmpty(t *testing.T) {
	s := Totals(nil)
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Net.Cents != 0 {
		t.Fatalf("empty collection must produce zero totals, got %+v", s)
	}
}

// The concrete scenario from the product brief: one -60 expense and one
// +2000 income on the same day.
func TestTotalsConcreteScenario(t *testing.T) {
	txs := []core.Transaction{
		tx(1, "Eggs", "Food", -6000, core.NewDate(2026, 1, 14), core.Expense),
		tx(2, "Income", "Income", 200000, core.NewDate(2026, 1, 14), core.Income),
	}
	s := Totals(txs)
	if s.Income.Cents != 200000 || s.Expense.Cents != 6000 || s.Net.Cents != 194000 {
		t.Fatalf("got %+v", s)
	}
	cats := CategoryTotals(txs)
	if len(cats) != 1 {
		t.Fatalf("expected one category, got %d", len(cats))
	}
	if cats[0].Name != "Food" || cats[0].Amount.Cents != 6000 || cats[0].Percent != 100 {
		t.Fatalf("got %+v", cats[0])
	}
}

func TestGroupByDateOrderAndCompleteness(t *testing.T) {
	txs := sampleLedger()
	groups := GroupByDate(txs)

	if len(groups) != 3 {
		t.Fatalf("expected 3 day groups, got %d", len(groups))
	}
	// Most recent day first.
	for i := 1; i < len(groups); i++ {
		if groups[i-1].Date.Before(groups[i].Date) {
			t.Fatalf("groups not in descending date order at %d", i)
		}
	}
	if groups[0].Label != "Wed, Jan 14" {
		t.Fatalf("label = %q", groups[0].Label)
	}

	// Flattening restores the collection as a multiset, and same-day
	// entries keep their original relative order.
	var flat []core.Transaction
	for _, g := range groups {
		flat = append(flat, g.Transactions...)
	}
	if len(flat) != len(txs) {
		t.Fatalf("grouping dropped or duplicated entries: %d != %d", len(flat), len(txs))
	}
	seen := map[int64]bool{}
	for _, e := range flat {
		if seen[e.ID] {
			t.Fatalf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true
	}
	jan13 := groups[1]
	want := []int64{3, 4, 5}
	for i, e := range jan13.Transactions {
		if e.ID != want[i] {
			t.Fatalf("same-day order changed: got id %d at %d", e.ID, i)
		}
	}
}

func TestCategoryTotals(t *testing.T) {
	cats := CategoryTotals(sampleLedger())

	// Income rows never appear; neither do categories without expenses.
	for _, c := range cats {
		if c.Name == "Income" {
			t.Fatalf("income leaked into category breakdown")
		}
		if c.Amount.Cents == 0 {
			t.Fatalf("zero-expense category %q must be omitted", c.Name)
		}
	}
	// Strictly descending by amount (no equal sums in this fixture).
	for i := 1; i < len(cats); i++ {
		if cats[i].Amount.Cents > cats[i-1].Amount.Cents {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
	if cats[0].Name != "Healthcare & Medical" || cats[0].Amount.Cents != 59800 {
		t.Fatalf("top category = %+v", cats[0])
	}
	// Percentages: 59800/80800=74%, 16000/80800=20%, 5000/80800=6%.
	wantPct := map[string]int{"Healthcare & Medical": 74, "Food & Dining": 20, "Transportation": 6}
	for _, c := range cats {
		if c.Percent != wantPct[c.Name] {
			t.Fatalf("%s percent = %d, want %d", c.Name, c.Percent, wantPct[c.Name])
		}
		if c.Color == "" {
			t.Fatalf("%s has no color", c.Name)
		}
	}
}

func TestCategoryTotalsTieBreak(t *testing.T) {
	d := core.NewDate(2026, 2, 1)
	txs := []core.Transaction{
		tx(1, "a", "Shopping", -5000, d, core.Expense),
		tx(2, "b", "Groceries", -5000, d, core.Expense),
	}
	cats := CategoryTotals(txs)
	if cats[0].Name != "Shopping" || cats[1].Name != "Groceries" {
		t.Fatalf("equal sums must keep first-seen order, got %q then %q", cats[0].Name, cats[1].Name)
	}
}

func TestCategoryTotalsZeroExpense(t *testing.T) {
	txs := []core.Transaction{
		tx(1, "Salary", "Income", 200000, core.NewDate(2026, 1, 1), core.Income),
	}
	if cats := CategoryTotals(txs); len(cats) != 0 {
		t.Fatalf("expected no rows, got %+v", cats)
	}
}

func TestDailySpendingGapFilled(t *testing.T) {
	start := core.NewDate(2026, 1, 1)
	end := core.NewDate(2026, 1, 15)
	series := DailySpending(sampleLedger(), start, end)

	if len(series) != 15 {
		t.Fatalf("expected 15 points, got %d", len(series))
	}
	if !series[0].Date.SameDay(start) || !series[14].Date.SameDay(end) {
		t.Fatalf("series bounds wrong: %v .. %v", series[0].Date, series[14].Date)
	}
	var sum int64
	for _, p := range series {
		sum += p.Amount.Cents
	}
	if sum != 80800 {
		t.Fatalf("series sum = %d, want total expense 80800", sum)
	}
	// Jan 2 has no spending and must still be present, at zero.
	if series[1].Amount.Cents != 0 {
		t.Fatalf("silent day not zero: %d", series[1].Amount.Cents)
	}
	// Jan 13 collects all three expenses of that day.
	if series[12].Amount.Cents != 74800 {
		t.Fatalf("Jan 13 = %d, want 74800", series[12].Amount.Cents)
	}
}

func TestDailySpendingSingleDay(t *testing.T) {
	d := core.NewDate(2026, 3, 5)
	series := DailySpending(nil, d, d)
	if len(series) != 1 || series[0].Amount.Cents != 0 {
		t.Fatalf("single-day empty range: %+v", series)
	}
}

func TestBudgetStatusTiers(t *testing.T) {
	cases := []struct {
		name      string
		spent     int64
		limit     int64
		tier      Tier
		remaining int64
		overBy    int64
	}{
		{"half spent", 5000, 10000, TierSafe, 5000, 0},
		{"warning at 75", 7500, 10000, TierWarning, 2500, 0},
		{"warning boundary", 7000, 10000, TierWarning, 3000, 0},
		{"exactly consumed", 10000, 10000, TierDanger, 0, 0},
		{"over budget", 15000, 10000, TierDanger, -5000, 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := Status(core.Budget{Name: "Food & Dining", Spent: core.Money{Cents: tc.spent}, Limit: core.Money{Cents: tc.limit}})
			if st.Tier != tc.tier {
				t.Fatalf("tier = %s, want %s", st.Tier, tc.tier)
			}
			if st.Remaining.Cents != tc.remaining {
				t.Fatalf("remaining = %d, want %d", st.Remaining.Cents, tc.remaining)
			}
			if st.OverBy.Cents != tc.overBy {
				t.Fatalf("overBy = %d, want %d", st.OverBy.Cents, tc.overBy)
			}
			if st.FillPercent < 0 || st.FillPercent > 100 {
				t.Fatalf("fill percent out of range: %f", st.FillPercent)
			}
		})
	}
}

func TestBudgetStatusZeroLimit(t *testing.T) {
	st := Status(core.Budget{Name: "Entertainment", Spent: core.Money{Cents: 4200}, Limit: core.Money{}})
	if st.Tier != TierDanger {
		t.Fatalf("zero-limit budget must be danger, got %s", st.Tier)
	}
	if !math.IsInf(st.Percent, 1) {
		t.Fatalf("percent = %f, want +Inf", st.Percent)
	}
	if st.FillPercent != 100 {
		t.Fatalf("fill = %f, want 100", st.FillPercent)
	}
	if st.OverBy.Cents != 4200 {
		t.Fatalf("overBy = %d, want the full spent amount", st.OverBy.Cents)
	}

	// Nothing spent against a zero limit: still danger, but no NaN and no
	// over-budget amount.
	idle := Status(core.Budget{Name: "Entertainment"})
	if idle.Tier != TierDanger || idle.Percent != 0 || idle.OverBy.Cents != 0 {
		t.Fatalf("idle zero-limit budget: %+v", idle)
	}
}

func TestDerivedBudgets(t *testing.T) {
	budgets := []core.Budget{
		{ID: 1, Name: "Food & Dining", Spent: core.Money{Cents: 587012}, Limit: core.Money{Cents: 800000}},
		{ID: 2, Name: "Shopping", Spent: core.Money{Cents: 99}, Limit: core.Money{Cents: 100000}},
	}
	derived := DerivedBudgets(budgets, sampleLedger())

	if derived[0].Spent.Cents != 16000 {
		t.Fatalf("derived food spend = %d, want 16000", derived[0].Spent.Cents)
	}
	// No matching expenses: derived spend is zero regardless of the stored value.
	if derived[1].Spent.Cents != 0 {
		t.Fatalf("derived shopping spend = %d, want 0", derived[1].Spent.Cents)
	}
	// The stored view is untouched.
	if budgets[0].Spent.Cents != 587012 {
		t.Fatalf("stored budget mutated")
	}
}

// Adding then deleting the same transaction restores aggregation outputs.
func TestRoundTripRestoresAggregates(t *testing.T) {
	base := sampleLedger()
	before := Totals(base)
	beforeCats := CategoryTotals(base)

	withNew := append(append([]core.Transaction{}, base...),
		tx(99, "Starbucks", "Food & Dining", -20000, core.NewDate(2026, 1, 15), core.Expense))
	if Totals(withNew) == before {
		t.Fatalf("adding a transaction must change totals")
	}

	var after []core.Transaction
	for _, e := range withNew {
		if e.ID != 99 {
			after = append(after, e)
		}
	}
	if Totals(after) != before {
		t.Fatalf("totals not restored: %+v vs %+v", Totals(after), before)
	}
	afterCats := CategoryTotals(after)
	if len(afterCats) != len(beforeCats) {
		t.Fatalf("category rows not restored")
	}
	for i := range beforeCats {
		if afterCats[i] != beforeCats[i] {
			t.Fatalf("category %d differs after round trip: %+v vs %+v", i, afterCats[i], beforeCats[i])
		}
	}
}
