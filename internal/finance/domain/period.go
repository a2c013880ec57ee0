package domain

import "time"

// DateRange is inclusive on both ends. A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func Between(from, to time.Time) DateRange {
	return DateRange{From: from, To: to}
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

func (r DateRange) IsUnbounded() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// MonthRange spans the first to the last instant of the month containing t.
func MonthRange(t time.Time) DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return DateRange{From: start, To: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// WholeDays truncates d to full days.
func WholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
