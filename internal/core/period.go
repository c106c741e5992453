package core

import (
	"fmt"
	"time"
)

// Period is an inclusive time range covering one calendar month.
type Period struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// MonthPeriod returns the period of year/month in loc. End is the last
// millisecond of the month.
func MonthPeriod(year int, month time.Month, loc *time.Location) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, NewValidationError("month", "must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return Period{}, NewValidationError("year", "out of range")
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Period{Year: year, Month: month, Start: start, End: end}, nil
}

// PeriodOf returns the month period containing t.
func PeriodOf(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	p, _ := MonthPeriod(t.Year(), t.Month(), loc)
	return p
}

// Contains reports whether t falls in the period, both ends inclusive.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Key formats the period as yyyy-mm.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
