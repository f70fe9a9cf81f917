package domain

import (
	"fmt"
	"time"
)

// Period is the scheduling month (scheduling_period.month, YYYY-MM)
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a YYYY-MM month
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC of the first day of the month
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC of the first day of the following month
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the month
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && t.Before(p.End())
}

// Days lists every calendar day of the month
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := p.Start(); d.Before(p.End()); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekdayCounts returns how many times each ISO weekday occurs in the month.
// Index 0 is unused.
func (p Period) WeekdayCounts() [DaysPerWeek + 1]int {
	var counts [DaysPerWeek + 1]int
	for _, d := range p.Days() {
		counts[ISOWeekday(d)]++
	}
	return counts
}
