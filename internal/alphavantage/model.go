package alphavantage

import "time"

// Report functions and the top-level key that marks a successful response for each.
const (
	FunctionDaily    = "TIME_SERIES_DAILY"
	FunctionWeekly   = "TIME_SERIES_WEEKLY_ADJUSTED"
	FunctionOverview = "OVERVIEW"

	KeyDaily    = "Time Series (Daily)"
	KeyWeekly   = "Weekly Adjusted Time Series"
	KeyOverview = "AssetType"
)

// closeField is the per-day field holding the closing price in both time series.
const closeField = "4. close"

// dateLayout is the layout of the per-day keys in both time series.
const dateLayout = "2006-01-02"

// DailyClose is the first entry of a TIME_SERIES_DAILY response.
// Close is the provider's raw decimal string, e.g. "148.3400".
type DailyClose struct {
	Date  time.Time
	Close string
}

// SeriesPoint is one week of a TIME_SERIES_WEEKLY_ADJUSTED response.
type SeriesPoint struct {
	Date  time.Time
	Close string
}

// Overview holds the OVERVIEW fields used to populate a watchlist entry.
// Values are kept exactly as reported; numeric fields may contain the
// provider's "None" or "-" placeholders.
type Overview struct {
	Name                 string
	FiftyTwoWeekLow      string
	FiftyTwoWeekHigh     string
	MarketCapitalization string
	DividendPerShare     string
	PERatio              string
	PEGRatio             string
	ProfitMargin         string
	Beta                 string
	PriceToBookRatio     string
}

// overviewPayload mirrors the wire format. Pointers distinguish an absent
// field from an empty one.
type overviewPayload struct {
	Name                 *string `json:"Name"`
	FiftyTwoWeekLow      *string `json:"52WeekLow"`
	FiftyTwoWeekHigh     *string `json:"52WeekHigh"`
	MarketCapitalization *string `json:"MarketCapitalization"`
	DividendPerShare     *string `json:"DividendPerShare"`
	PERatio              *string `json:"PERatio"`
	PEGRatio             *string `json:"PEGRatio"`
	ProfitMargin         *string `json:"ProfitMargin"`
	Beta                 *string `json:"Beta"`
	PriceToBookRatio     *string `json:"PriceToBookRatio"`
}

// notice is the throttling message the provider returns with a 200 status.
type notice struct {
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

func (n notice) String() string {
	if n.Note != "" {
		return n.Note
	}
	return n.Information
}
