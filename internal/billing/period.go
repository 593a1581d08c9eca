// Package billing holds the pure fee-ledger computations: billing period
// math, per-month payment classification and the flattened report rows.
// Nothing in this package touches storage.
package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

// monthIndex maps month abbreviations to their calendar position.
var monthIndex = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// MonthAbbrevs lists the twelve month labels in calendar order.
var MonthAbbrevs = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Period identifies one billing month.
type Period struct {
	Month     string `json:"month"`
	Year      int    `json:"year"`
	Key       string `json:"key"`
	SortValue int64  `json:"sort_value"`
}

// Time returns the first instant of the period in UTC.
func (p Period) Time() time.Time {
	return time.Date(p.Year, monthIndex[p.Month], 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats the ledger key for a billing month, e.g. "Jan_2025".
func MonthKey(month string, year int) string {
	return fmt.Sprintf("%s_%d", month, year)
}

// NewPeriod validates the month abbreviation and builds a Period.
func NewPeriod(month string, year int) (Period, error) {
	m, ok := monthIndex[month]
	if !ok {
		return Period{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown month %q", month))
	}
	t := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	return Period{Month: month, Year: year, Key: MonthKey(month, year), SortValue: t.Unix()}, nil
}

// PeriodOf floors a timestamp to its billing month.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	month := MonthAbbrevs[int(t.Month())-1]
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Month: month, Year: t.Year(), Key: MonthKey(month, t.Year()), SortValue: first.Unix()}
}

// ParseMonthKey splits a "<Mon>_<YYYY>" ledger key back into a Period.
func ParseMonthKey(key string) (Period, error) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return Period{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("malformed month key %q", key))
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("malformed month key %q", key))
	}
	return NewPeriod(parts[0], year)
}

// MonthRange enumerates billing months from the first to the second endpoint,
// both inclusive, in ascending chronological order. An inverted range fails
// fast rather than producing an empty or unbounded sequence.
func MonthRange(fromMonth string, fromYear int, toMonth string, toYear int) ([]Period, error) {
	from, err := NewPeriod(fromMonth, fromYear)
	if err != nil {
		return nil, err
	}
	to, err := NewPeriod(toMonth, toYear)
	if err != nil {
		return nil, err
	}
	if to.SortValue < from.SortValue {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("%s precedes %s", to.Key, from.Key))
	}

	var periods []Period
	for cursor := from.Time(); !cursor.After(to.Time()); cursor = cursor.AddDate(0, 1, 0) {
		periods = append(periods, PeriodOf(cursor))
	}
	return periods, nil
}
