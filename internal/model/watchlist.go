package model

import (
	"fmt"
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/fixedpoint"
)

// WatchlistEntry is a symbol an account follows without owning it.
//
// The share price has its own refresh date. The fundamentals (company name
// through price-to-book) come from one overview call and share FundamentalsDate:
// they are either all unset or all from the same fetch.
type WatchlistEntry struct {
	ID                    string
	Symbol                string
	AccountID             string
	CurrentSharePrice     int64
	CurrentSharePriceDate *time.Time

	CompanyName      *string
	FiftyTwoWeekLow  int64
	FiftyTwoWeekHigh int64
	MarketCap        *string // raw dollars, e.g. "160300990464"
	DividendPerShare int64
	PERatio          int64
	PEGRatio         int64
	ProfitMargin     int64 // fixedpoint.ScalePercent
	Beta             int64
	PriceToBookRatio int64
	FundamentalsDate *time.Time
}

// ApplyCurrentPrice stores a freshly fetched share price.
func (w *WatchlistEntry) ApplyCurrentPrice(cents int64, now time.Time) {
	w.CurrentSharePrice = cents
	w.CurrentSharePriceDate = &now
}

// ApplyOverview encodes every numeric overview field and, only if all of them
// are valid, replaces the fundamentals and stamps FundamentalsDate with now.
// An invalid field leaves the entry untouched and returns an error wrapping
// alphavantage.ErrMalformedPayload.
func (w *WatchlistEntry) ApplyOverview(o alphavantage.Overview, now time.Time) error {
	fields := []struct {
		name  string
		raw   string
		scale int64
	}{
		{"52WeekLow", o.FiftyTwoWeekLow, fixedpoint.ScaleCurrency},
		{"52WeekHigh", o.FiftyTwoWeekHigh, fixedpoint.ScaleCurrency},
		{"DividendPerShare", o.DividendPerShare, fixedpoint.ScaleCurrency},
		{"PERatio", o.PERatio, fixedpoint.ScaleCurrency},
		{"PEGRatio", o.PEGRatio, fixedpoint.ScaleCurrency},
		{"ProfitMargin", o.ProfitMargin, fixedpoint.ScalePercent},
		{"Beta", o.Beta, fixedpoint.ScaleCurrency},
		{"PriceToBookRatio", o.PriceToBookRatio, fixedpoint.ScaleCurrency},
	}

	encoded := make([]int64, len(fields))
	for i, f := range fields {
		v, err := fixedpoint.Encode(f.raw, f.scale)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", alphavantage.ErrMalformedPayload, f.name, err)
		}
		encoded[i] = v
	}

	name := o.Name
	marketCap := o.MarketCapitalization

	w.CompanyName = &name
	w.FiftyTwoWeekLow = encoded[0]
	w.FiftyTwoWeekHigh = encoded[1]
	w.DividendPerShare = encoded[2]
	w.PERatio = encoded[3]
	w.PEGRatio = encoded[4]
	w.ProfitMargin = encoded[5]
	w.Beta = encoded[6]
	w.PriceToBookRatio = encoded[7]
	w.MarketCap = &marketCap
	w.FundamentalsDate = &now
	return nil
}

func (w WatchlistEntry) CurrentSharePriceValue() float64 {
	return fixedpoint.DecodeCurrency(w.CurrentSharePrice)
}

func (w WatchlistEntry) FiftyTwoWeekLowValue() float64 {
	return fixedpoint.DecodeCurrency(w.FiftyTwoWeekLow)
}

func (w WatchlistEntry) FiftyTwoWeekHighValue() float64 {
	return fixedpoint.DecodeCurrency(w.FiftyTwoWeekHigh)
}

// MarketCapDisplay returns the market cap in billions, e.g. "160.3B", or "-"
// when it has never been fetched.
func (w WatchlistEntry) MarketCapDisplay() string {
	return fixedpoint.MarketCapBillions(w.MarketCap)
}

func (w WatchlistEntry) DividendPerShareValue() float64 {
	return fixedpoint.DecodeCurrency(w.DividendPerShare)
}

func (w WatchlistEntry) PERatioValue() float64 {
	return fixedpoint.DecodeCurrency(w.PERatio)
}

// PEGRatioValue returns 0 whenever the P/E ratio is below 0.1, whatever the
// stored PEG ratio is. The provider reports nonsensical PEG values in that case.
func (w WatchlistEntry) PEGRatioValue() float64 {
	if w.PERatioValue() < 0.1 {
		return 0.0
	}
	return fixedpoint.DecodeCurrency(w.PEGRatio)
}

// ProfitMarginValue returns the margin in percent: a stored 2503 (0.2503) is 25.03.
func (w WatchlistEntry) ProfitMarginValue() float64 {
	return fixedpoint.Decode(w.ProfitMargin, fixedpoint.ScaleCurrency)
}

func (w WatchlistEntry) BetaValue() float64 {
	return fixedpoint.DecodeCurrency(w.Beta)
}

func (w WatchlistEntry) PriceToBookRatioValue() float64 {
	return fixedpoint.DecodeCurrency(w.PriceToBookRatio)
}
