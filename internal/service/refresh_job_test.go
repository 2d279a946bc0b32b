package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/alphavantage"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/service"
	"github.com/ndewijer/stock-portfolio-tracker/internal/staleness"
	"github.com/ndewijer/stock-portfolio-tracker/internal/testutil"
)

// TestRefreshJob_Run tests the scheduled refresh of all records.
//
// WHY: The job runs unattended across every account, so it must apply the
// same daily staleness rule as page loads and keep going when one symbol
// fails at the provider.
func TestRefreshJob_Run(t *testing.T) {
	ctx := context.Background()
	clock := staleness.FixedClock{T: testNow}

	setup := func(t *testing.T, quotes *testutil.MockQuoteClient) (*service.RefreshJob, *repository.PositionRepository, *repository.WatchlistRepository, string) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		positions := repository.NewPositionRepository(db)
		watchlist := repository.NewWatchlistRepository(db)
		job := service.NewRefreshJob(positions, watchlist, testutil.NewTestRefreshService(t, quotes, clock), 4, zap.NewNop())

		alice := testutil.NewAccount().Build(t, db)
		bob := testutil.NewAccount().Build(t, db)
		testutil.NewPosition(alice.ID).Build(t, db)
		testutil.NewPosition(bob.ID).WithSymbol("MSFT").Build(t, db)
		testutil.NewPosition(bob.ID).WithSymbol("IBM").
			WithCurrentPrice(12000, testNow.Add(-time.Hour)).Build(t, db)
		testutil.NewWatchlistEntry(alice.ID).Build(t, db)
		return job, positions, watchlist, alice.ID
	}

	t.Run("refreshes stale records of every account", func(t *testing.T) {
		quotes := testutil.NewMockQuoteClient()
		job, positions, watchlist, aliceID := setup(t, quotes)

		stats, err := job.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Positions)
		assert.Equal(t, int64(1), stats.WatchlistEntries)
		assert.Equal(t, 3, quotes.DailyCount)
		assert.Equal(t, 1, quotes.OverviewCount)

		all, err := positions.ListAll(ctx)
		require.NoError(t, err)
		for _, p := range all {
			require.NotNil(t, p.CurrentPriceDate, p.Symbol)
			if p.Symbol == "IBM" {
				assert.Equal(t, int64(12000), p.CurrentPrice)
				continue
			}
			assert.Equal(t, int64(14834), p.CurrentPrice)
			assert.Equal(t, int64(14834)*p.Shares, p.Value)
		}

		entries, err := watchlist.ListByAccount(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotNil(t, entries[0].FundamentalsDate)
	})

	t.Run("second run finds nothing stale", func(t *testing.T) {
		quotes := testutil.NewMockQuoteClient()
		job, _, _, _ := setup(t, quotes)

		_, err := job.Run(ctx)
		require.NoError(t, err)
		queries := quotes.Queries()

		stats, err := job.Run(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Positions)
		assert.Zero(t, stats.WatchlistEntries)
		assert.Equal(t, queries, quotes.Queries())
	})

	t.Run("provider failures are skipped", func(t *testing.T) {
		quotes := testutil.NewMockQuoteClient().WithOutcome(alphavantage.OutcomeRateLimited)
		job, _, _, _ := setup(t, quotes)

		stats, err := job.Run(ctx)

		require.NoError(t, err)
		assert.Zero(t, stats.Positions)
		assert.Zero(t, stats.WatchlistEntries)
	})
}

// TestRefreshJob_ConcurrentChanges tests records that change while the job
// waits on the provider.
//
// WHY: A scheduled run takes a snapshot and then spends seconds per symbol on
// the network. Users keep deleting and editing in the meantime; neither may
// abort the run nor be undone by it.
func TestRefreshJob_ConcurrentChanges(t *testing.T) {
	ctx := context.Background()
	clock := staleness.FixedClock{T: testNow}

	newJob := func(t *testing.T, quotes *testutil.MockQuoteClient) (*service.RefreshJob, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		job := service.NewRefreshJob(
			repository.NewPositionRepository(db),
			repository.NewWatchlistRepository(db),
			testutil.NewTestRefreshService(t, quotes, clock),
			1,
			zap.NewNop(),
		)
		return job, db
	}

	t.Run("position deleted during fetch is skipped", func(t *testing.T) {
		quotes := testutil.NewMockQuoteClient()
		job, db := newJob(t, quotes)
		positions := repository.NewPositionRepository(db)

		account := testutil.NewAccount().Build(t, db)
		deleted := testutil.NewPosition(account.ID).Build(t, db)
		testutil.NewPosition(account.ID).WithSymbol("MSFT").Build(t, db)
		testutil.NewPosition(account.ID).WithSymbol("IBM").Build(t, db)

		var once sync.Once
		quotes.WithDailyCloseHook(func(string) {
			once.Do(func() {
				assert.NoError(t, positions.Delete(ctx, deleted.ID))
			})
		})

		stats, err := job.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Positions)
		assert.Equal(t, 3, quotes.DailyCount)

		remaining, err := positions.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, remaining, 2)
		for _, p := range remaining {
			require.NotNil(t, p.CurrentPriceDate, p.Symbol)
			assert.Equal(t, int64(14834), p.CurrentPrice, p.Symbol)
		}
	})

	t.Run("watchlist entry deleted during fetch is skipped", func(t *testing.T) {
		quotes := testutil.NewMockQuoteClient()
		job, db := newJob(t, quotes)
		watchlist := repository.NewWatchlistRepository(db)

		account := testutil.NewAccount().Build(t, db)
		deleted := testutil.NewWatchlistEntry(account.ID).Build(t, db)
		testutil.NewWatchlistEntry(account.ID).WithSymbol("TSLA").Build(t, db)

		quotes.WithDailyCloseHook(func(symbol string) {
			if symbol == deleted.Symbol {
				_ = watchlist.Delete(ctx, deleted.ID)
			}
		})

		stats, err := job.Run(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.WatchlistEntries)

		entries, err := watchlist.ListByAccount(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "TSLA", entries[0].Symbol)
		assert.NotNil(t, entries[0].CurrentSharePriceDate)
	})

	t.Run("share edit during fetch is kept", func(t *testing.T) {
		quotes := testutil.NewMockQuoteClient()
		job, db := newJob(t, quotes)
		positions := repository.NewPositionRepository(db)

		account := testutil.NewAccount().Build(t, db)
		position := testutil.NewPosition(account.ID).WithShares(16).Build(t, db)

		quotes.WithDailyCloseHook(func(string) {
			p, err := positions.GetByID(ctx, position.ID)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, p.Update("27", "", nil))
			assert.NoError(t, positions.Update(ctx, p))
		})

		_, err := job.Run(ctx)
		require.NoError(t, err)

		got, err := positions.GetByID(ctx, position.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(27), got.Shares)
		assert.Equal(t, int64(14834), got.CurrentPrice)
		assert.Equal(t, int64(14834*27), got.Value)
	})
}

func TestRefreshJob_Scheduler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	job := service.NewRefreshJob(
		repository.NewPositionRepository(db),
		repository.NewWatchlistRepository(db),
		testutil.NewTestRefreshService(t, testutil.NewMockQuoteClient(), staleness.SystemClock{}),
		1,
		zap.NewNop(),
	)

	t.Run("valid schedule", func(t *testing.T) {
		c, err := job.Scheduler("0 6 * * 1-5")
		require.NoError(t, err)
		assert.Len(t, c.Entries(), 1)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		_, err := job.Scheduler("every morning")
		assert.Error(t, err)
	})
}
