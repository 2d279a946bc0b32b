package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
)

// ChartUnavailableTitle is the title of a chart whose data could not be fetched.
const ChartUnavailableTitle = "Stock chart is unavailable."

// chartWindow is the minimum span a weekly chart covers.
const chartWindow = 12 * 7 * 24 * time.Hour

// Chart is a weekly close series for display, oldest first.
type Chart struct {
	Title  string   `json:"title"`
	Dates  []string `json:"dates"`  // YYYY-MM-DD
	Closes []string `json:"closes"` // provider's raw decimal strings
}

// UnavailableChart returns the chart shown when the weekly series cannot be fetched.
func UnavailableChart() Chart {
	return Chart{Title: ChartUnavailableTitle, Dates: []string{}, Closes: []string{}}
}

// WindowWeeklySeries selects the weeks to chart for a position.
//
// The window starts at the purchase date, or twelve weeks before now when the
// position was bought more recently than that, so a new position still shows a
// useful history. Weeks dated strictly after the start date (comparing dates
// only) are kept. points is expected newest-first, as the provider sends it;
// the result is reversed to oldest-first.
func WindowWeeklySeries(points []alphavantage.SeriesPoint, symbol string, purchaseDate, now time.Time) Chart {
	start := purchaseDate
	if now.Sub(purchaseDate) < chartWindow {
		start = now.Add(-chartWindow)
	}
	startDay := civilDate(start)

	chart := Chart{
		Title:  fmt.Sprintf("Weekly Prices (%s)", symbol),
		Dates:  []string{},
		Closes: []string{},
	}
	for _, p := range points {
		if civilDate(p.Date).After(startDay) {
			chart.Dates = append(chart.Dates, p.Date.Format(time.DateOnly))
			chart.Closes = append(chart.Closes, p.Close)
		}
	}

	slices.Reverse(chart.Dates)
	slices.Reverse(chart.Closes)
	return chart
}

// civilDate drops the time of day and location of t.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
