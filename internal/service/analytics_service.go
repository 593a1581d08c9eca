package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/billing"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

const ledgerCachePrefix = "analytics:ledger"

type analyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type analyticsLedger interface {
	Report(ctx context.Context, query LedgerQuery) ([]billing.Row, error)
}

// MonthlyCollection is the aggregated fee intake for one billing month.
type MonthlyCollection struct {
	MonthKey    string `json:"month_key"`
	Month       string `json:"month"`
	Year        int    `json:"year"`
	Expected    int64  `json:"expected"`
	Collected   int64  `json:"collected"`
	Outstanding int64  `json:"outstanding"`
	PaidRows    int    `json:"paid_rows"`
	PartialRows int    `json:"partial_rows"`
	UnpaidRows  int    `json:"unpaid_rows"`
}

// CollectionSummary is the dashboard headline across the requested window.
type CollectionSummary struct {
	From        string              `json:"from"`
	To          string              `json:"to"`
	Expected    int64               `json:"expected"`
	Collected   int64               `json:"collected"`
	Outstanding int64               `json:"outstanding"`
	Months      []MonthlyCollection `json:"months"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// AnalyticsService aggregates the ledger report into dashboard figures. The
// result is cached in Redis and invalidated whenever the ledger changes.
type AnalyticsService struct {
	ledger  analyticsLedger
	cache   analyticsCache
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(ledger analyticsLedger, cache analyticsCache, ttl time.Duration, enabled bool, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{ledger: ledger, cache: cache, ttl: ttl, enabled: enabled, logger: logger}
}

// MonthlyCollections aggregates the report rows of the window per month,
// oldest month first.
func (s *AnalyticsService) MonthlyCollections(ctx context.Context, query LedgerQuery) (*CollectionSummary, error) {
	cacheKey := fmt.Sprintf("%s:%s_%d:%s_%d:%s:%s:%s",
		ledgerCachePrefix, query.FromMonth, query.FromYear, query.ToMonth, query.ToYear,
		query.Search, query.CourseID, query.Status)

	if s.enabled && s.cache != nil {
		var cached CollectionSummary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("analytics cache read failed", zap.Error(err))
		}
	}

	rows, err := s.ledger.Report(ctx, query)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*MonthlyCollection)
	order := make([]string, 0)
	for _, row := range rows {
		m, ok := byMonth[row.MonthKey]
		if !ok {
			m = &MonthlyCollection{MonthKey: row.MonthKey, Month: row.Month, Year: row.Year}
			byMonth[row.MonthKey] = m
			order = append(order, row.MonthKey)
		}
		m.Expected += row.AgreedFee
		m.Collected += row.Paid
		m.Outstanding += row.Balance
		switch row.Label {
		case billing.LabelPaid:
			m.PaidRows++
		case billing.LabelPartial:
			m.PartialRows++
		default:
			m.UnpaidRows++
		}
	}

	summary := &CollectionSummary{
		From:        billing.MonthKey(query.FromMonth, query.FromYear),
		To:          billing.MonthKey(query.ToMonth, query.ToYear),
		GeneratedAt: time.Now().UTC(),
	}
	// rows arrive newest first; walk the order backwards for oldest first
	for i := len(order) - 1; i >= 0; i-- {
		m := byMonth[order[i]]
		summary.Expected += m.Expected
		summary.Collected += m.Collected
		summary.Outstanding += m.Outstanding
		summary.Months = append(summary.Months, *m)
	}

	if s.enabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.ttl); err != nil {
			s.logger.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// InvalidateLedger drops every cached analytics payload. Called by the write
// side after any ledger mutation.
func (s *AnalyticsService) InvalidateLedger(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, ledgerCachePrefix+":*"); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}
