package domain

import (
	"fmt"
	"strings"
	"time"
)

// YearMonth identifies a calendar month
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM"
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return MonthOf(t), nil
}

// String returns "YYYY-MM", the literal prefix shared by all dates in the month
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Contains reports whether a YYYY-MM-DD date falls in the month
func (ym YearMonth) Contains(date string) bool {
	return len(date) >= 8 && strings.HasPrefix(date, ym.String()+"-")
}

// First returns the first day of the month
func (ym YearMonth) First() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns the last day of the month
func (ym YearMonth) Last() time.Time {
	return ym.First().AddDate(0, 1, -1)
}

// Next returns the following month
func (ym YearMonth) Next() YearMonth {
	return MonthOf(ym.First().AddDate(0, 1, 0))
}

// Prev returns the preceding month
func (ym YearMonth) Prev() YearMonth {
	return MonthOf(ym.First().AddDate(0, -1, 0))
}

// Days lists every day of the month
func (ym YearMonth) Days() []time.Time {
	last := ym.Last().Day()
	days := make([]time.Time, 0, last)
	for d := 1; d <= last; d++ {
		days = append(days, time.Date(ym.Year, ym.Month, d, 0, 0, 0, 0, time.UTC))
	}
	return days
}

// Weekdays counts the days of the month that are not Saturday or Sunday
func (ym YearMonth) Weekdays() int {
	n := 0
	for _, d := range ym.Days() {
		if IsWeekday(d) {
			n++
		}
	}
	return n
}

// IsWeekday reports whether t falls Monday through Friday
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
