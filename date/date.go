// Package date handles calendar days. Ledger segments are named after the UTC
// day of their entries and history is filtered by ranges of days.
package date

import (
	"fmt"
	"time"
)

// layout is lenient on reading, "2025-7-1" is accepted. Dates are always
// written with two digit months and days.
const layout = "2006-1-2"

// Date is a calendar day. The zero Date is used for open range bounds.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New returns the day, normalized the way time.Date does: New(2025, 2, 29) is
// the first of March.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Of returns the UTC day of t.
func Of(t time.Time) Date { return New(t.UTC().Date()) }

// Today is the current UTC day.
func Today() Date { return Of(time.Now()) }

// Parse reads a day in the YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return Of(t), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Start is midnight UTC of the day.
func (d Date) Start() time.Time { return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC) }

func (d Date) IsZero() bool { return d == Date{} }

// Add moves by n days, backward when negative.
func (d Date) Add(n int) Date { return New(d.year, d.month, d.day+n) }

func (d Date) Before(o Date) bool { return d.compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.compare(o) > 0 }

func (d Date) compare(o Date) int {
	switch {
	case d.year != o.year:
		return d.year - o.year
	case d.month != o.month:
		return int(d.month - o.month)
	default:
		return d.day - o.day
	}
}

func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day) }
