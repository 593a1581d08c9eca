package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "Jan_2025", MonthKey("Jan", 2025))
	assert.Equal(t, "Dec_2024", MonthKey("Dec", 2024))
}

func TestNewPeriodRejectsUnknownMonth(t *testing.T) {
	_, err := NewPeriod("January", 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestParseMonthKey(t *testing.T) {
	p, err := ParseMonthKey("Mar_2025")
	require.NoError(t, err)
	assert.Equal(t, "Mar", p.Month)
	assert.Equal(t, 2025, p.Year)

	_, err = ParseMonthKey("2025")
	require.Error(t, err)
	_, err = ParseMonthKey("Month_abc")
	require.Error(t, err)
}

func TestPeriodOfFloorsToFirstOfMonth(t *testing.T) {
	p := PeriodOf(time.Date(2025, time.February, 17, 22, 45, 0, 0, time.UTC))
	assert.Equal(t, "Feb_2025", p.Key)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC).Unix(), p.SortValue)
}

func TestMonthRangeInclusiveAscending(t *testing.T) {
	periods, err := MonthRange("Nov", 2024, "Feb", 2025)
	require.NoError(t, err)
	require.Len(t, periods, 4)
	keys := make([]string, 0, len(periods))
	for _, p := range periods {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"Nov_2024", "Dec_2024", "Jan_2025", "Feb_2025"}, keys)
	for i := 1; i < len(periods); i++ {
		assert.Greater(t, periods[i].SortValue, periods[i-1].SortValue)
	}
}

func TestMonthRangeSingleMonth(t *testing.T) {
	periods, err := MonthRange("Jan", 2025, "Jan", 2025)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, "Jan_2025", periods[0].Key)
}

func TestMonthRangeInvertedFailsFast(t *testing.T) {
	_, err := MonthRange("Feb", 2025, "Nov", 2024)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidRange.Code, appErrors.FromError(err).Code)
}

func TestMonthRangeAcrossYears(t *testing.T) {
	periods, err := MonthRange("Jan", 2024, "Dec", 2025)
	require.NoError(t, err)
	assert.Len(t, periods, 24)
}
