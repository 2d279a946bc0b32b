package handlers

import (
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/fixedpoint"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
)

// PositionResponse is a position as shown to its owner. Money values are in
// dollars; the Display fields are formatted for the web client.
type PositionResponse struct {
	ID                   string     `json:"id"`
	Symbol               string     `json:"symbol"`
	Shares               int64      `json:"shares"`
	PurchasePrice        float64    `json:"purchasePrice"`
	PurchaseDate         string     `json:"purchaseDate"`
	CurrentPrice         float64    `json:"currentPrice"`
	CurrentPriceDate     *time.Time `json:"currentPriceDate"`
	PositionValue        float64    `json:"positionValue"`
	PositionValueDisplay string     `json:"positionValueDisplay"`
}

func newPositionResponse(p model.Position) PositionResponse {
	return PositionResponse{
		ID:                   p.ID,
		Symbol:               p.Symbol,
		Shares:               p.Shares,
		PurchasePrice:        p.PurchasePriceValue(),
		PurchaseDate:         p.PurchaseDate.Format(time.DateOnly),
		CurrentPrice:         p.CurrentPriceValue(),
		CurrentPriceDate:     p.CurrentPriceDate,
		PositionValue:        p.PositionValue(),
		PositionValueDisplay: fixedpoint.FormatUSD(p.Value),
	}
}

// PortfolioResponse lists an account's positions with their total value.
type PortfolioResponse struct {
	Positions         []PositionResponse `json:"positions"`
	TotalValue        float64            `json:"totalValue"`
	TotalValueDisplay string             `json:"totalValueDisplay"`
}

func newPortfolioResponse(p service.Portfolio) PortfolioResponse {
	positions := make([]PositionResponse, len(p.Positions))
	for i, pos := range p.Positions {
		positions[i] = newPositionResponse(pos)
	}
	return PortfolioResponse{
		Positions:         positions,
		TotalValue:        fixedpoint.DecodeCurrency(p.Value),
		TotalValueDisplay: fixedpoint.FormatUSD(p.Value),
	}
}

// PositionDetailsResponse is a position with its weekly price chart.
type PositionDetailsResponse struct {
	Position PositionResponse `json:"position"`
	Chart    model.Chart      `json:"chart"`
}

// WatchlistEntryResponse is a watched symbol with its cached fundamentals.
// MarketCap is in billions, e.g. "160.3B", or "-" before the first fetch.
type WatchlistEntryResponse struct {
	ID                    string     `json:"id"`
	Symbol                string     `json:"symbol"`
	CurrentSharePrice     float64    `json:"currentSharePrice"`
	CurrentSharePriceDate *time.Time `json:"currentSharePriceDate"`
	CompanyName           *string    `json:"companyName"`
	FiftyTwoWeekLow       float64    `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh      float64    `json:"fiftyTwoWeekHigh"`
	MarketCap             string     `json:"marketCap"`
	DividendPerShare      float64    `json:"dividendPerShare"`
	PERatio               float64    `json:"peRatio"`
	PEGRatio              float64    `json:"pegRatio"`
	ProfitMargin          float64    `json:"profitMargin"` // percent
	Beta                  float64    `json:"beta"`
	PriceToBookRatio      float64    `json:"priceToBookRatio"`
	FundamentalsDate      *time.Time `json:"fundamentalsDate"`
}

func newWatchlistEntryResponse(w model.WatchlistEntry) WatchlistEntryResponse {
	return WatchlistEntryResponse{
		ID:                    w.ID,
		Symbol:                w.Symbol,
		CurrentSharePrice:     w.CurrentSharePriceValue(),
		CurrentSharePriceDate: w.CurrentSharePriceDate,
		CompanyName:           w.CompanyName,
		FiftyTwoWeekLow:       w.FiftyTwoWeekLowValue(),
		FiftyTwoWeekHigh:      w.FiftyTwoWeekHighValue(),
		MarketCap:             w.MarketCapDisplay(),
		DividendPerShare:      w.DividendPerShareValue(),
		PERatio:               w.PERatioValue(),
		PEGRatio:              w.PEGRatioValue(),
		ProfitMargin:          w.ProfitMarginValue(),
		Beta:                  w.BetaValue(),
		PriceToBookRatio:      w.PriceToBookRatioValue(),
		FundamentalsDate:      w.FundamentalsDate,
	}
}
