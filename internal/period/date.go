package period

import (
	"fmt"
	"time"
)

// Date truncates t to its calendar date in loc and returns midnight UTC of
// that date. All due-date arithmetic runs on values produced here.
func Date(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b (negative when b < a).
// Both arguments must come from Date.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

// MaxRangeDays bounds a report range to five years of days; cash-flow
// reports hold one row per day in memory.
const MaxRangeDays = 5 * 366

// NewRange validates and normalises an inclusive date range.
func NewRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: Date(from, nil), To: Date(to, nil)}
	if r.To.Before(r.From) {
		return DateRange{}, fmt.Errorf("%w: %s is before %s", ErrInvalidPeriod,
			r.To.Format(time.DateOnly), r.From.Format(time.DateOnly))
	}

	if days := DaysBetween(r.From, r.To) + 1; days > MaxRangeDays {
		return DateRange{}, fmt.Errorf("%w: range spans %d days, at most %d allowed", ErrInvalidPeriod, days, MaxRangeDays)
	}

	return r, nil
}

// ParseRange accepts either a billing month ("2025-04") or two ISO dates.
func ParseRange(month, from, to string) (DateRange, error) {
	if month != "" {
		p, err := Parse(month)
		if err != nil {
			return DateRange{}, err
		}

		return p.Range(), nil
	}

	if from == "" || to == "" {
		return DateRange{}, fmt.Errorf("%w: period or from/to are required", ErrInvalidPeriod)
	}

	f, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: from %q", ErrInvalidPeriod, from)
	}

	t, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: to %q", ErrInvalidPeriod, to)
	}

	return NewRange(f, t)
}

// Contains reports whether d's calendar date falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	d = Date(d, nil)
	return !d.Before(r.From) && !d.After(r.To)
}

// EndExclusive is the midnight after To, for half-open SQL filters.
func (r DateRange) EndExclusive() time.Time {
	return r.To.AddDate(0, 0, 1)
}

// Days lists every date in the range.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	return days
}

func (r DateRange) String() string {
	return "[" + r.From.Format(time.DateOnly) + ", " + r.To.Format(time.DateOnly) + "]"
}
