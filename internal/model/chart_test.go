package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weeklyFixture is newest-first, as the provider sends it.
func weeklyFixture() []alphavantage.SeriesPoint {
	return []alphavantage.SeriesPoint{
		{Date: day(2020, 7, 24), Close: "379.2400"},
		{Date: day(2020, 7, 17), Close: "362.7600"},
		{Date: day(2020, 6, 11), Close: "354.3400"},
		{Date: day(2020, 2, 25), Close: "432.9800"},
	}
}

// TestWindowWeeklySeries tests selection and ordering of weekly chart points.
//
// WHY: A recently bought position must still show twelve weeks of history,
// an older one must show everything since purchase, and the chart library
// expects oldest-first data while the provider sends newest-first.
func TestWindowWeeklySeries(t *testing.T) {
	t.Run("recent purchase uses twelve week window", func(t *testing.T) {
		now := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)

		chart := model.WindowWeeklySeries(weeklyFixture(), "AAPL", day(2020, 7, 18), now)

		assert.Equal(t, "Weekly Prices (AAPL)", chart.Title)
		assert.Equal(t, []string{"2020-06-11", "2020-07-17", "2020-07-24"}, chart.Dates)
		assert.Equal(t, []string{"354.3400", "362.7600", "379.2400"}, chart.Closes)
	})

	t.Run("old purchase starts at purchase date", func(t *testing.T) {
		now := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)

		chart := model.WindowWeeklySeries(weeklyFixture(), "AAPL", day(2020, 1, 10), now)

		assert.Equal(t, []string{"2020-02-25", "2020-06-11", "2020-07-17", "2020-07-24"}, chart.Dates)
	})

	t.Run("boundary date itself is excluded", func(t *testing.T) {
		now := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)

		// Purchased long ago on a date that matches a series entry.
		chart := model.WindowWeeklySeries(weeklyFixture(), "AAPL", day(2020, 2, 25), now)

		assert.Equal(t, []string{"2020-06-11", "2020-07-17", "2020-07-24"}, chart.Dates)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		now := time.Date(2020, 7, 28, 23, 0, 0, 0, time.UTC)
		purchase := time.Date(2020, 2, 25, 18, 45, 0, 0, time.UTC)

		chart := model.WindowWeeklySeries(weeklyFixture(), "AAPL", purchase, now)

		assert.NotContains(t, chart.Dates, "2020-02-25")
		assert.Len(t, chart.Dates, 3)
	})

	t.Run("no points in window", func(t *testing.T) {
		now := time.Date(2021, 7, 28, 0, 0, 0, 0, time.UTC)

		chart := model.WindowWeeklySeries(weeklyFixture(), "AAPL", day(2021, 7, 1), now)

		assert.Equal(t, "Weekly Prices (AAPL)", chart.Title)
		assert.Empty(t, chart.Dates)
		assert.NotNil(t, chart.Dates)
		assert.Empty(t, chart.Closes)
	})
}

func TestUnavailableChart(t *testing.T) {
	chart := model.UnavailableChart()

	assert.Equal(t, "Stock chart is unavailable.", chart.Title)
	assert.Equal(t, []string{}, chart.Dates)
	assert.Equal(t, []string{}, chart.Closes)
}

func TestAccount(t *testing.T) {
	a := model.Account{Role: model.RoleStandard}
	assert.False(t, a.IsAdmin())

	now := time.Date(2020, 7, 28, 0, 0, 0, 0, time.UTC)
	a.ConfirmEmail(now)
	assert.True(t, a.EmailConfirmed)
	assert.Equal(t, now, *a.EmailConfirmedOn)

	a.UnconfirmEmail()
	assert.False(t, a.EmailConfirmed)
	assert.Nil(t, a.EmailConfirmedOn)

	assert.True(t, model.Account{Role: model.RoleAdmin}.IsAdmin())
}
