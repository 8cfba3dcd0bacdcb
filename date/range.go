package date

import (
	"fmt"
	"strings"
	"time"
)

// Range is a span of days, both ends included. A zero end leaves that side
// open and the zero Range contains every day.
type Range struct{ From, To Date }

// ParseRange reads "FROM..TO", where either side may be omitted, or a single
// day.
func ParseRange(s string) (Range, error) {
	from, to, found := strings.Cut(s, "..")
	if !found {
		d, err := Parse(s)
		return Range{d, d}, err
	}
	var r Range
	for _, b := range []struct {
		s string
		d *Date
	}{{from, &r.From}, {to, &r.To}} {
		if b.s == "" {
			continue
		}
		d, err := Parse(b.s)
		if err != nil {
			return Range{}, err
		}
		*b.d = d
	}
	if !r.From.IsZero() && r.To.Before(r.From) && !r.To.IsZero() {
		return Range{}, fmt.Errorf("invalid range %q: ends before it starts", s)
	}
	return r, nil
}

// Contains reports whether d falls within the range.
func (r Range) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	return r.To.IsZero() || !d.After(r.To)
}

// ContainsTime reports whether the UTC day of t falls within the range.
func (r Range) ContainsTime(t time.Time) bool { return r.Contains(Of(t)) }

func (r Range) String() string {
	bound := func(d Date) string {
		if d.IsZero() {
			return ""
		}
		return d.String()
	}
	if r.From == r.To && !r.From.IsZero() {
		return r.From.String()
	}
	return bound(r.From) + ".." + bound(r.To)
}

// Period is a calendar period: a day, a week starting on monday, a month, a
// quarter or a year.
type Period string

const (
	Day     Period = "day"
	Week    Period = "week"
	Month   Period = "month"
	Quarter Period = "quarter"
	Year    Period = "year"
)

// ParsePeriod accepts the noun or the adverb: "month" or "monthly".
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(s) {
	case "day", "daily", "today":
		return Day, nil
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "quarter", "quarterly":
		return Quarter, nil
	case "year", "yearly":
		return Year, nil
	}
	return "", fmt.Errorf("unknown period %q, want day, week, month, quarter or year", s)
}

// NewRange returns the period containing d.
func NewRange(d Date, p Period) Range {
	switch p {
	case Week:
		sinceMonday := (int(d.Start().Weekday()) + 6) % 7
		monday := d.Add(-sinceMonday)
		return Range{monday, monday.Add(6)}
	case Month:
		return Range{New(d.year, d.month, 1), New(d.year, d.month+1, 0)}
	case Quarter:
		first := (d.month-1)/3*3 + 1
		return Range{New(d.year, first, 1), New(d.year, first+3, 0)}
	case Year:
		return Range{New(d.year, time.January, 1), New(d.year, time.December, 31)}
	}
	return Range{d, d}
}
