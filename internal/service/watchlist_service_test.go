package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
	"github.com/ndewijer/stock-portfolio-tracker/internal/testutil"
)

// TestWatchlistService_ListEntries tests the watchlist listing.
//
// WHY: Each entry needs a price call and an overview call. Both are cached
// for the day independently, so one failing must not block the other from
// being saved.
func TestWatchlistService_ListEntries(t *testing.T) {
	clock := staleness.FixedClock{T: testNow}
	ctx := context.Background()

	t.Run("refreshes price and fundamentals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		entry := testutil.NewWatchlistEntry(account.ID).Build(t, db)
		quotes := testutil.NewMockQuoteClient()
		svc := testutil.NewTestWatchlistService(t, db, quotes, clock)

		entries, err := svc.ListEntries(ctx, account.ID)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(14834), entries[0].CurrentSharePrice)
		assert.Equal(t, 3.93, entries[0].PEGRatioValue())
		assert.Equal(t, 1, quotes.DailyCount)
		assert.Equal(t, 1, quotes.OverviewCount)

		saved, err := repository.NewWatchlistRepository(db).GetByID(ctx, entry.ID)
		require.NoError(t, err)
		require.NotNil(t, saved.CompanyName)
		assert.Equal(t, "Costco Wholesale Corporation", *saved.CompanyName)
		require.NotNil(t, saved.FundamentalsDate)
		assert.True(t, testNow.Equal(*saved.FundamentalsDate))
	})

	t.Run("fresh entry makes no calls", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		testutil.NewWatchlistEntry(account.ID).
			WithCurrentPrice(30000, testNow.Add(-time.Hour)).
			WithFundamentals(testutil.CostcoOverview(), testNow.Add(-time.Hour)).
			Build(t, db)
		quotes := testutil.NewMockQuoteClient()
		svc := testutil.NewTestWatchlistService(t, db, quotes, clock)

		entries, err := svc.ListEntries(ctx, account.ID)

		require.NoError(t, err)
		assert.Equal(t, int64(30000), entries[0].CurrentSharePrice)
		assert.Zero(t, quotes.QueryCount)
	})

	t.Run("entry deleted during fetch is left out", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		deleted := testutil.NewWatchlistEntry(account.ID).Build(t, db)
		testutil.NewWatchlistEntry(account.ID).WithSymbol("TSLA").Build(t, db)
		watchlist := repository.NewWatchlistRepository(db)
		quotes := testutil.NewMockQuoteClient().WithDailyCloseHook(func(symbol string) {
			if symbol == deleted.Symbol {
				_ = watchlist.Delete(ctx, deleted.ID)
			}
		})
		svc := testutil.NewTestWatchlistService(t, db, quotes, clock)

		entries, err := svc.ListEntries(ctx, account.ID)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "TSLA", entries[0].Symbol)
	})

	t.Run("failures leave entry unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		entry := testutil.NewWatchlistEntry(account.ID).Build(t, db)
		quotes := testutil.NewMockQuoteClient().WithOutcome(alphavantage.OutcomeNetworkError)
		svc := testutil.NewTestWatchlistService(t, db, quotes, clock)

		entries, err := svc.ListEntries(ctx, account.ID)

		require.NoError(t, err)
		assert.Zero(t, entries[0].CurrentSharePrice)
		assert.Nil(t, entries[0].CompanyName)

		saved, err := repository.NewWatchlistRepository(db).GetByID(ctx, entry.ID)
		require.NoError(t, err)
		assert.Nil(t, saved.CurrentSharePriceDate)
		assert.Nil(t, saved.FundamentalsDate)
	})
}

func TestWatchlistService_CreateEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	account := testutil.NewAccount().Build(t, db)
	quotes := testutil.NewMockQuoteClient()
	svc := testutil.NewTestWatchlistService(t, db, quotes, staleness.FixedClock{T: testNow})

	w, err := svc.CreateEntry(context.Background(), account.ID, request.CreateWatchlistEntryRequest{Symbol: " cost "})

	require.NoError(t, err)
	assert.Equal(t, "COST", w.Symbol)
	assert.Equal(t, account.ID, w.AccountID)
	assert.Zero(t, quotes.QueryCount)
	testutil.AssertRowCount(t, db, "watchlist_entry", 1)
}

func TestWatchlistService_DeleteEntry(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	owner := testutil.NewAccount().Build(t, db)
	intruder := testutil.NewAccount().Build(t, db)
	entry := testutil.NewWatchlistEntry(owner.ID).Build(t, db)
	svc := testutil.NewTestWatchlistService(t, db, testutil.NewMockQuoteClient(), staleness.FixedClock{T: testNow})

	t.Run("other account is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteEntry(ctx, intruder.ID, entry.ID), apperrors.ErrForbidden)
		testutil.AssertRowCount(t, db, "watchlist_entry", 1)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, svc.DeleteEntry(ctx, owner.ID, entry.ID))
		testutil.AssertRowCount(t, db, "watchlist_entry", 0)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteEntry(ctx, owner.ID, entry.ID), apperrors.ErrWatchlistEntryNotFound)
	})
}
