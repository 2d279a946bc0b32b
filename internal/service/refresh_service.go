package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/fixedpoint"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
)

// RefreshService brings cached quote data up to date. It never returns
// provider failures: when a fetch fails the record is left untouched and the
// failure is logged, so callers can always render what they have.
type RefreshService struct {
	quotes alphavantage.Client
	policy staleness.Policy
	clock  staleness.Clock
	logger *zap.Logger
}

// NewRefreshService creates a RefreshService. A nil logger discards output.
func NewRefreshService(
	quotes alphavantage.Client,
	policy staleness.Policy,
	clock staleness.Clock,
	logger *zap.Logger,
) *RefreshService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshService{
		quotes: quotes,
		policy: policy,
		clock:  clock,
		logger: logger.Named("refresh"),
	}
}

// EnsureCurrentPrice fetches the latest close for p unless its cached price
// is from today. Reports whether p was changed and needs saving.
func (s *RefreshService) EnsureCurrentPrice(ctx context.Context, p *model.Position) bool {
	now := s.clock.Now()
	if s.policy.IsFresh(p.CurrentPriceDate, now) {
		return false
	}

	cents, ok := s.latestClose(ctx, p.Symbol)
	if !ok {
		return false
	}
	p.ApplyCurrentPrice(cents, now)
	return true
}

// EnsureWatchPrice is EnsureCurrentPrice for a watchlist entry.
func (s *RefreshService) EnsureWatchPrice(ctx context.Context, w *model.WatchlistEntry) bool {
	now := s.clock.Now()
	if s.policy.IsFresh(w.CurrentSharePriceDate, now) {
		return false
	}

	cents, ok := s.latestClose(ctx, w.Symbol)
	if !ok {
		return false
	}
	w.ApplyCurrentPrice(cents, now)
	return true
}

// EnsureFundamentals fetches the company overview for w unless it was
// fetched today. All fields are replaced together or not at all.
func (s *RefreshService) EnsureFundamentals(ctx context.Context, w *model.WatchlistEntry) bool {
	now := s.clock.Now()
	if s.policy.IsFresh(w.FundamentalsDate, now) {
		return false
	}

	result := s.quotes.Overview(ctx, w.Symbol)
	if !result.Ok() {
		s.logFailure("overview", w.Symbol, result.Outcome, result.Err())
		return false
	}
	if err := w.ApplyOverview(result.Payload, now); err != nil {
		s.logFailure("overview", w.Symbol, alphavantage.OutcomeMalformedPayload, err)
		return false
	}
	return true
}

// WeeklySeries returns the chart for a position's details page. The series
// is fetched on every call and not stored.
func (s *RefreshService) WeeklySeries(ctx context.Context, p model.Position) model.Chart {
	result := s.quotes.WeeklySeries(ctx, p.Symbol)
	if !result.Ok() {
		s.logFailure("weekly series", p.Symbol, result.Outcome, result.Err())
		return model.UnavailableChart()
	}
	return model.WindowWeeklySeries(result.Payload, p.Symbol, p.PurchaseDate, s.clock.Now())
}

func (s *RefreshService) latestClose(ctx context.Context, symbol string) (int64, bool) {
	result := s.quotes.DailyClose(ctx, symbol)
	if !result.Ok() {
		s.logFailure("daily close", symbol, result.Outcome, result.Err())
		return 0, false
	}

	cents, err := fixedpoint.EncodeCurrency(result.Payload.Close)
	if err != nil {
		s.logFailure("daily close", symbol, alphavantage.OutcomeMalformedPayload, err)
		return 0, false
	}
	return cents, true
}

// logFailure logs network failures as errors and everything else (throttling,
// unexpected status, unusable data) as warnings.
func (s *RefreshService) logFailure(op, symbol string, outcome alphavantage.Outcome, err error) {
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("symbol", symbol),
		zap.Stringer("outcome", outcome),
		zap.Error(err),
	}
	if outcome == alphavantage.OutcomeNetworkError {
		s.logger.Error("quote refresh failed", fields...)
		return
	}
	s.logger.Warn("quote refresh failed", fields...)
}
