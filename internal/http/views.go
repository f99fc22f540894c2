package http

import (
	"khata/internal/core"
	"khata/internal/ledger"
)

// View models returned by the JSON API. Amounts carry both raw cents and a
// formatted rupee string so clients never re-implement currency display.

type SummaryView struct {
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	NetCents     int64  `json:"net_cents"`
	Income       string `json:"income"`
	Expense      string `json:"expense"`
	Net          string `json:"net"`
}

type TransactionView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Account     string `json:"account,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Type        string `json:"type"`
}

type DayView struct {
	Label        string            `json:"label"`
	Date         string            `json:"date"`
	Transactions []TransactionView `json:"transactions"`
}

type LedgerView struct {
	Summary SummaryView `json:"summary"`
	Days    []DayView   `json:"days"`
}

type CategoryView struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Percent     int    `json:"percent"`
}

type DayPointView struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amount_cents"`
}

type ReviewView struct {
	Start             string         `json:"start"`
	End               string         `json:"end"`
	Totals            SummaryView    `json:"totals"`
	DailyAverageCents int64          `json:"daily_average_cents"`
	DailyAverage      string         `json:"daily_average"`
	Categories        []CategoryView `json:"categories"`
	Daily             []DayPointView `json:"daily"`
}

type PaymentView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Frequency   string `json:"frequency"`
	RenewDate   string `json:"renew_date"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Icon        string `json:"icon,omitempty"`
}

type RenewalView struct {
	Payment   PaymentView `json:"payment"`
	NextDate  string      `json:"next_date"`
	DaysUntil int         `json:"days_until"`
}

type RecurringView struct {
	Payments          []PaymentView `json:"payments"`
	Upcoming          []RenewalView `json:"upcoming"`
	MonthlyTotalCents int64         `json:"monthly_total_cents"`
	MonthlyTotal      string        `json:"monthly_total"`
}

// BudgetView clamps consumption for display: progress bars cap at 100 and a
// zero-limit budget with spending reads as fully consumed.
type BudgetView struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Icon           string `json:"icon,omitempty"`
	SpentCents     int64  `json:"spent_cents"`
	LimitCents     int64  `json:"limit_cents"`
	Spent          string `json:"spent"`
	Limit          string `json:"limit"`
	Percent        int    `json:"percent"`
	FillPercent    int    `json:"fill_percent"`
	Tier           string `json:"tier"`
	RemainingCents int64  `json:"remaining_cents"`
	Remaining      string `json:"remaining"`
	OverByCents    int64  `json:"over_by_cents"`
	OverBy         string `json:"over_by"`
}

type BudgetsView struct {
	View    string       `json:"view"`
	Budgets []BudgetView `json:"budgets"`
}

func buildSummaryView(s ledger.Summary) SummaryView {
	return SummaryView{
		IncomeCents:  s.Income.Cents,
		ExpenseCents: s.Expense.Cents,
		NetCents:     s.Net.Cents,
		Income:       core.FormatINR(s.Income),
		Expense:      core.FormatINR(s.Expense),
		Net:          signedINR(s.Net),
	}
}

func buildTransactionView(t core.Transaction) TransactionView {
	return TransactionView{
		ID:          t.ID,
		Name:        t.Name,
		Category:    t.Category,
		Color:       core.CategoryColor(t.Category),
		Account:     t.Account,
		AmountCents: t.Amount.Cents,
		Amount:      signedINR(t.Amount),
		Date:        t.Date.String(),
		Type:        string(t.Type),
	}
}

func buildLedgerView(txs []core.Transaction) LedgerView {
	days := ledger.GroupByDate(txs)
	view := LedgerView{
		Summary: buildSummaryView(ledger.Totals(txs)),
		Days:    make([]DayView, 0, len(days)),
	}
	for _, day := range days {
		dv := DayView{
			Label:        day.Label,
			Date:         day.Date.String(),
			Transactions: make([]TransactionView, 0, len(day.Transactions)),
		}
		for _, t := range day.Transactions {
			dv.Transactions = append(dv.Transactions, buildTransactionView(t))
		}
		view.Days = append(view.Days, dv)
	}
	return view
}

func buildReviewView(txs []core.Transaction, start, end core.Date) ReviewView {
	inRange := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.Before(start) || end.Before(t.Date) {
			continue
		}
		inRange = append(inRange, t)
	}

	daily := ledger.DailySpending(inRange, start, end)
	totals := ledger.Totals(inRange)
	avg := core.Money{}
	if len(daily) > 0 {
		avg.Cents = totals.Expense.Cents / int64(len(daily))
	}

	view := ReviewView{
		Start:             start.String(),
		End:               end.String(),
		Totals:            buildSummaryView(totals),
		DailyAverageCents: avg.Cents,
		DailyAverage:      core.FormatINR(avg),
	}
	for _, c := range ledger.CategoryTotals(inRange) {
		view.Categories = append(view.Categories, CategoryView{
			Name:        c.Name,
			Color:       c.Color,
			AmountCents: c.Amount.Cents,
			Amount:      core.FormatINR(c.Amount),
			Percent:     c.Percent,
		})
	}
	for _, p := range daily {
		view.Daily = append(view.Daily, DayPointView{
			Date:        p.Date.String(),
			AmountCents: p.Amount.Cents,
		})
	}
	return view
}

func buildPaymentView(p core.RecurringPayment) PaymentView {
	return PaymentView{
		ID:          p.ID,
		Name:        p.Name,
		Frequency:   p.Frequency,
		RenewDate:   p.RenewDate.String(),
		AmountCents: p.Amount.Cents,
		Amount:      core.FormatINR(p.Amount),
		Icon:        p.Icon,
	}
}

func buildRecurringView(payments []core.RecurringPayment, today core.Date) RecurringView {
	view := RecurringView{Payments: make([]PaymentView, 0, len(payments))}
	var total int64
	for _, p := range payments {
		view.Payments = append(view.Payments, buildPaymentView(p))
		total += p.Amount.Cents
	}
	view.MonthlyTotalCents = total
	view.MonthlyTotal = core.FormatINR(core.Money{Cents: total})

	for _, r := range ledger.UpcomingRenewals(payments, today) {
		view.Upcoming = append(view.Upcoming, RenewalView{
			Payment:   buildPaymentView(r.Payment),
			NextDate:  r.NextDate.String(),
			DaysUntil: r.DaysUntil,
		})
	}
	return view
}

func buildBudgetView(st ledger.BudgetStatus) BudgetView {
	b := st.Budget
	view := BudgetView{
		ID:             b.ID,
		Name:           b.Name,
		Icon:           b.Icon,
		SpentCents:     b.Spent.Cents,
		LimitCents:     b.Limit.Cents,
		Spent:          core.FormatINR(b.Spent),
		Limit:          core.FormatINR(b.Limit),
		FillPercent:    int(st.FillPercent),
		Tier:           string(st.Tier),
		RemainingCents: st.Remaining.Cents,
		Remaining:      signedINR(st.Remaining),
		OverByCents:    st.OverBy.Cents,
		OverBy:         core.FormatINR(st.OverBy),
	}
	// Half-up integer percent; a zero-limit budget with spending shows 100.
	if b.Limit.Cents > 0 {
		view.Percent = int((b.Spent.Cents*100 + b.Limit.Cents/2) / b.Limit.Cents)
	} else if b.Spent.Cents > 0 {
		view.Percent = 100
	}
	return view
}

func buildBudgetsView(name string, budgets []core.Budget) BudgetsView {
	view := BudgetsView{View: name, Budgets: make([]BudgetView, 0, len(budgets))}
	for _, st := range ledger.Statuses(budgets) {
		view.Budgets = append(view.Budgets, buildBudgetView(st))
	}
	return view
}

// signedINR prefixes negative amounts with a minus; FormatINR itself only
// renders magnitudes.
func signedINR(m core.Money) string {
	if m.Cents < 0 {
		return "-" + core.FormatINR(m)
	}
	return core.FormatINR(m)
}
