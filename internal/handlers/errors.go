package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/ledger"
	"github.com/diewo77/tailorledger/internal/window"
)

// writeCoreError maps the ledger error taxonomy onto HTTP codes. Store
// internals never leak: a consistency fault is reported only as the
// operation not having happened.
func writeCoreError(w http.ResponseWriter, err error) {
	var ve *ledger.ValidationError
	var cue *ledger.CategoryInUseError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, ledger.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.As(err, &cue):
		httpx.JSONError(w, http.StatusConflict, "category_in_use", map[string]any{"name": cue.Name, "count": cue.UsageCount})
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "operation_failed", nil)
	}
}

// monthFromQuery resolves the month/year selection, defaulting to the
// current month on absent or junk values.
func monthFromQuery(r *http.Request, now time.Time) window.Month {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, year = window.Clamp(month, year, now)
	return window.MonthRange(month, year)
}

// pageFromQuery resolves the 1-based page number.
func pageFromQuery(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// monthNav is the prev/current/next navigation block shared by every
// month-paged listing.
type monthNav struct {
	Current   string `json:"current"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	PrevMonth int    `json:"prev_month"`
	PrevYear  int    `json:"prev_year"`
	NextMonth int    `json:"next_month"`
	NextYear  int    `json:"next_year"`
}

func navFor(m window.Month) monthNav {
	pm, py, nm, ny := window.Adjacent(m.Month, m.Year)
	return monthNav{
		Current:   window.Label(m.Month, m.Year),
		Month:     m.Month,
		Year:      m.Year,
		PrevMonth: pm,
		PrevYear:  py,
		NextMonth: nm,
		NextYear:  ny,
	}
}

func idFromQuery(r *http.Request, name string) (uint, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}
