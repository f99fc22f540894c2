package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"khata/internal/core"
)

// parseRange reads start and end query parameters, defaulting to the
// current month so far (first of the month through today).
func parseRange(r *http.Request) (start, end core.Date, err error) {
	now := time.Now().UTC()
	start = core.NewDate(now.Year(), int(now.Month()), 1)
	end = core.NewDate(now.Year(), int(now.Month()), now.Day())

	if v := strings.TrimSpace(r.URL.Query().Get("start")); v != "" {
		start, err = core.ParseDate(v)
		if err != nil {
			return start, end, errors.New("invalid start date, expected YYYY-MM-DD")
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end")); v != "" {
		end, err = core.ParseDate(v)
		if err != nil {
			return start, end, errors.New("invalid end date, expected YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return start, end, errors.New("end date precedes start date")
	}
	return start, end, nil
}
