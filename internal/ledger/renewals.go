package ledger

import (
	"sort"
	"strings"

	"khata/internal/core"
)

// Renewal annotates a recurring payment with its next charge date relative
// to a reference day.
type Renewal struct {
	Payment   core.RecurringPayment
	NextDate  core.Date
	DaysUntil int
}

// UpcomingRenewals projects each recurring payment onto its next renewal on
// or after today and returns them soonest-first (ties keep input order).
// A renew date already in the past is rolled forward by the payment's
// frequency; an unrecognized frequency leaves the stored date as-is.
func UpcomingRenewals(payments []core.RecurringPayment, today core.Date) []Renewal {
	out := make([]Renewal, 0, len(payments))
	for _, p := range payments {
		next := nextRenewal(p, today)
		out = append(out, Renewal{
			Payment:   p,
			NextDate:  next,
			DaysUntil: daysBetween(today, next),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextDate.Before(out[j].NextDate)
	})
	return out
}

func nextRenewal(p core.RecurringPayment, today core.Date) core.Date {
	d := p.RenewDate
	if d.IsZero() {
		return d
	}
	var years, months, days int
	switch strings.ToLower(strings.TrimSpace(p.Frequency)) {
	case "daily":
		days = 1
	case "weekly":
		days = 7
	case "monthly":
		months = 1
	case "yearly", "annual", "annually":
		years = 1
	default:
		return d
	}
	// Bounded roll-forward; a date decades stale is left where the loop
	// stops rather than spinning.
	for i := 0; i < 1200 && d.Before(today); i++ {
		t := d.AddDate(years, months, days)
		d = core.NewDate(t.Year(), int(t.Month()), t.Day())
	}
	return d
}

func daysBetween(from, to core.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}
