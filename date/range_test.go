package date

import (
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	testCases := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{in: "2025-03-01", want: Range{New(2025, 3, 1), New(2025, 3, 1)}},
		{in: "2025-03-01..2025-03-31", want: Range{New(2025, 3, 1), New(2025, 3, 31)}},
		{in: "..2025-3-31", want: Range{To: New(2025, 3, 31)}},
		{in: "2025-03-01..", want: Range{From: New(2025, 3, 1)}},
		{in: "..", want: Range{}},
		{in: "2025-03-31..2025-03-01", wantErr: true},
		{in: "2025-03-01..soon", wantErr: true},
		{in: "yesterday", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRange(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseRange(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	open := Range{From: New(2025, 3, 1)}
	if open.Contains(New(2025, 2, 28)) {
		t.Errorf("%v contains the day before its start", open)
	}
	if !open.Contains(New(2030, 1, 1)) {
		t.Errorf("%v does not contain a later day", open)
	}
	if got, want := open.String(), "2025-03-01.."; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !(Range{}).ContainsTime(time.Now()) {
		t.Errorf("the zero range does not contain now")
	}
	day := Range{New(2025, 3, 1), New(2025, 3, 1)}
	if !day.ContainsTime(time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)) {
		t.Errorf("%v does not contain its last minute", day)
	}
}

func TestNewRange(t *testing.T) {
	testCases := []struct {
		name   string
		day    Date
		period Period
		want   string
	}{
		{"day", New(2025, 9, 8), Day, "2025-09-08"},
		{"wednesday", New(2025, 9, 10), Week, "2025-09-08..2025-09-14"},
		{"sunday", New(2025, 9, 14), Week, "2025-09-08..2025-09-14"},
		{"leap february", New(2024, 2, 15), Month, "2024-02-01..2024-02-29"},
		{"last quarter", New(2025, 12, 31), Quarter, "2025-10-01..2025-12-31"},
		{"year", New(2025, 9, 8), Year, "2025-01-01..2025-12-31"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewRange(tc.day, tc.period).String(); got != tc.want {
				t.Errorf("NewRange(%v, %v) = %s, want %s", tc.day, tc.period, got, tc.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"daily": Day, "week": Week, "Monthly": Month, "quarter": Quarter, "yearly": Year} {
		if got, err := ParsePeriod(in); err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Errorf("ParsePeriod(fortnight) succeeded, want an error")
	}
}
