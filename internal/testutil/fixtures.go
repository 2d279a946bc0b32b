package testutil

import (
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
)

// WeeklyFixture returns four weekly closes, newest first as the provider
// sends them.
func WeeklyFixture() []alphavantage.SeriesPoint {
	day := func(m time.Month, d int) time.Time {
		return time.Date(2020, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []alphavantage.SeriesPoint{
		{Date: day(7, 24), Close: "379.2400"},
		{Date: day(7, 17), Close: "362.7600"},
		{Date: day(6, 11), Close: "354.3400"},
		{Date: day(2, 25), Close: "432.9800"},
	}
}

// CostcoOverview returns a complete company overview.
func CostcoOverview() alphavantage.Overview {
	return alphavantage.Overview{
		Name:                 "Costco Wholesale Corporation",
		FiftyTwoWeekLow:      "262.68",
		FiftyTwoWeekHigh:     "388.07",
		MarketCapitalization: "160300990464",
		DividendPerShare:     "2.8",
		PERatio:              "37.15",
		PEGRatio:             "3.93",
		ProfitMargin:         "0.2503",
		Beta:                 "0.67",
		PriceToBookRatio:     "5.23",
	}
}
