package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
)

// MockQuoteClient is a mock implementation of alphavantage.Client for testing.
// It returns predefined results instead of making actual API calls and is
// safe for concurrent use.
type MockQuoteClient struct {
	mu sync.Mutex

	DailyResult    alphavantage.Result[alphavantage.DailyClose]
	WeeklyResult   alphavantage.Result[[]alphavantage.SeriesPoint]
	OverviewResult alphavantage.Result[alphavantage.Overview]

	// OnDailyClose, if set, runs on every DailyClose call before the result is
	// returned, with the mock unlocked. Tests use it to change the database
	// while a refresh is waiting on the provider.
	OnDailyClose func(symbol string)

	// QueryCount tracks how many times any query method was called
	QueryCount    int
	DailyCount    int
	WeeklyCount   int
	OverviewCount int
}

// NewMockQuoteClient creates a mock whose calls all succeed: a daily close of
// 148.3400, WeeklyFixture and CostcoOverview.
func NewMockQuoteClient() *MockQuoteClient {
	return &MockQuoteClient{
		DailyResult: alphavantage.Succeeded(alphavantage.DailyClose{
			Date:  time.Date(2020, 7, 24, 0, 0, 0, 0, time.UTC),
			Close: "148.3400",
		}),
		WeeklyResult:   alphavantage.Succeeded(WeeklyFixture()),
		OverviewResult: alphavantage.Succeeded(CostcoOverview()),
	}
}

func (m *MockQuoteClient) DailyClose(_ context.Context, symbol string) alphavantage.Result[alphavantage.DailyClose] {
	m.mu.Lock()
	m.QueryCount++
	m.DailyCount++
	result, hook := m.DailyResult, m.OnDailyClose
	m.mu.Unlock()

	if hook != nil {
		hook(symbol)
	}
	return result
}

func (m *MockQuoteClient) WeeklySeries(_ context.Context, _ string) alphavantage.Result[[]alphavantage.SeriesPoint] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	m.WeeklyCount++
	return m.WeeklyResult
}

func (m *MockQuoteClient) Overview(_ context.Context, _ string) alphavantage.Result[alphavantage.Overview] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	m.OverviewCount++
	return m.OverviewResult
}

// Queries returns the total call count.
func (m *MockQuoteClient) Queries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

// WithDailyClose configures the daily close returned on success.
func (m *MockQuoteClient) WithDailyClose(closePrice string) *MockQuoteClient {
	m.DailyResult = alphavantage.Succeeded(alphavantage.DailyClose{
		Date:  time.Date(2020, 7, 24, 0, 0, 0, 0, time.UTC),
		Close: closePrice,
	})
	return m
}

// WithDailyCloseHook sets OnDailyClose.
func (m *MockQuoteClient) WithDailyCloseHook(fn func(symbol string)) *MockQuoteClient {
	m.OnDailyClose = fn
	return m
}

// WithOverview configures the overview returned on success.
func (m *MockQuoteClient) WithOverview(o alphavantage.Overview) *MockQuoteClient {
	m.OverviewResult = alphavantage.Succeeded(o)
	return m
}

// WithOutcome makes every method fail with the given outcome.
func (m *MockQuoteClient) WithOutcome(outcome alphavantage.Outcome) *MockQuoteClient {
	cause := outcomeCause(outcome)
	m.DailyResult = alphavantage.Failed[alphavantage.DailyClose](outcome, cause)
	m.WeeklyResult = alphavantage.Failed[[]alphavantage.SeriesPoint](outcome, cause)
	m.OverviewResult = alphavantage.Failed[alphavantage.Overview](outcome, cause)
	return m
}

func outcomeCause(outcome alphavantage.Outcome) error {
	switch outcome {
	case alphavantage.OutcomeRateLimited:
		return alphavantage.ErrRateLimited
	case alphavantage.OutcomeHTTPError:
		return &alphavantage.HTTPError{StatusCode: 500}
	case alphavantage.OutcomeNetworkError:
		return alphavantage.ErrNetwork
	default:
		return alphavantage.ErrMalformedPayload
	}
}
