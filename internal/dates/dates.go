// Package dates provides day-granularity calendar dates and the windows the
// ledger reports over (single day, Monday-based week, calendar month).
// Entries carry no time component, only a day.
package dates

import (
	"fmt"
	"time"
)

// Format is the display format used everywhere user-facing.
const Format = "02/01/2006"

// Date is a calendar day with no time component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromTime truncates t to its calendar day in t's location.
func FromTime(t time.Time) Date {
	return New(t.Date())
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return FromTime(time.Now().In(loc))
}

// time is the canonical representation of the day, midnight UTC.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Add returns the date i days later (earlier for negative i).
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool  { return d.time().After(x.time()) }
func (d Date) IsZero() bool       { return d == Date{} }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// String renders the date as DD/MM/YYYY.
func (d Date) String() string { return d.time().Format(Format) }

// Parse reads a DD/MM/YYYY date.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want DD/MM/YYYY: %w", s, err)
	}
	return FromTime(t), nil
}

// Range is an inclusive span of days.
type Range struct{ From, To Date }

// Contains reports whether date falls inside the range, boundaries included.
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

func (r Range) String() string { return r.From.String() + " - " + r.To.String() }

// WeekOf returns the Monday..Sunday week containing d. The week starts on
// Monday regardless of locale.
func WeekOf(d Date) Range {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	start := d.Add(-offset)
	return Range{From: start, To: start.Add(6)}
}

// MonthOf returns the first..last calendar day of the month containing d.
func MonthOf(d Date) Range {
	first := New(d.y, d.m, 1)
	return Range{From: first, To: first.Add(daysIn(d.y, d.m) - 1)}
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
