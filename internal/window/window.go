// Package window computes the calendar-month boundaries behind every paged
// list view: one month per page, then offset pagination inside it.
package window

import (
	"fmt"
	"time"
)

// PerPage is the fixed page size for all month-scoped listings.
const PerPage = 50

// Month is a calendar month selection with its inclusive query range.
type Month struct {
	Month int
	Year  int
	Start time.Time // first day 00:00:00
	End   time.Time // last day 23:59:59
}

// MonthRange builds the inclusive [Start, End] range for (month, year).
func MonthRange(month, year int) Month {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return Month{Month: month, Year: year, Start: start, End: end}
}

// Adjacent returns the previous and next (month, year) pairs with rollover
// at the Jan/Dec boundary.
func Adjacent(month, year int) (prevMonth, prevYear, nextMonth, nextYear int) {
	prevMonth, prevYear = month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}
	nextMonth, nextYear = month+1, year
	if nextMonth == 13 {
		nextMonth, nextYear = 1, year+1
	}
	return
}

// Label renders the month for display, e.g. "January 2025".
func Label(month, year int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// Clamp falls back to now's month on out-of-range input so bad query
// parameters never 500 a listing.
func Clamp(month, year int, now time.Time) (int, int) {
	if month < 1 || month > 12 || year < 1 {
		return int(now.Month()), now.Year()
	}
	return month, year
}

// Offset converts a 1-based page number to a row offset.
func Offset(page int) int {
	if page < 2 {
		return 0
	}
	return (page - 1) * PerPage
}
