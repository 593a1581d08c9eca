package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techfront-institute/academy-api/internal/billing"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type mockLedgerReport struct {
	rows  []billing.Row
	calls int
}

func (m *mockLedgerReport) Report(ctx context.Context, query LedgerQuery) ([]billing.Row, error) {
	m.calls++
	return m.rows, nil
}

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.values = nil
	return nil
}

func analyticsRows() []billing.Row {
	return []billing.Row{
		{MonthKey: "Feb_2025", Month: "Feb", Year: 2025, AgreedFee: 4500, Paid: 0, Balance: 4500, Label: billing.LabelUnpaid, SortValue: 20},
		{MonthKey: "Jan_2025", Month: "Jan", Year: 2025, AgreedFee: 4500, Paid: 4500, Balance: 0, Label: billing.LabelPaid, SortValue: 10},
		{MonthKey: "Jan_2025", Month: "Jan", Year: 2025, AgreedFee: 6000, Paid: 2000, Balance: 4000, Label: billing.LabelPartial, SortValue: 10},
	}
}

func TestMonthlyCollectionsAggregatesPerMonth(t *testing.T) {
	ledger := &mockLedgerReport{rows: analyticsRows()}
	svc := NewAnalyticsService(ledger, nil, time.Minute, false, nil)

	summary, err := svc.MonthlyCollections(context.Background(), LedgerQuery{
		FromMonth: "Jan", FromYear: 2025, ToMonth: "Feb", ToYear: 2025,
	})
	require.NoError(t, err)

	assert.EqualValues(t, 15000, summary.Expected)
	assert.EqualValues(t, 6500, summary.Collected)
	assert.EqualValues(t, 8500, summary.Outstanding)
	require.Len(t, summary.Months, 2)

	// oldest month first
	jan := summary.Months[0]
	assert.Equal(t, "Jan_2025", jan.MonthKey)
	assert.EqualValues(t, 10500, jan.Expected)
	assert.Equal(t, 1, jan.PaidRows)
	assert.Equal(t, 1, jan.PartialRows)

	feb := summary.Months[1]
	assert.Equal(t, "Feb_2025", feb.MonthKey)
	assert.Equal(t, 1, feb.UnpaidRows)
}

func TestMonthlyCollectionsWritesCacheWhenEnabled(t *testing.T) {
	cache := &memoryCache{}
	svc := NewAnalyticsService(&mockLedgerReport{rows: analyticsRows()}, cache, time.Minute, true, nil)

	_, err := svc.MonthlyCollections(context.Background(), LedgerQuery{
		FromMonth: "Jan", FromYear: 2025, ToMonth: "Feb", ToYear: 2025,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}
