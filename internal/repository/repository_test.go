package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
	"github.com/ndewijer/stock-portfolio-tracker/internal/testutil"
)

// TestAccountRepository tests account storage against the real schema.
//
// WHY: Emails are the login key, so they must be unique regardless of case,
// and deleting an account must remove everything the account owns.
func TestAccountRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("email lookup ignores case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().WithEmail("Patrick@Email.com").Build(t, db)
		repo := repository.NewAccountRepository(db)

		found, err := repo.GetByEmail(ctx, "PATRICK@email.com")
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
		assert.Equal(t, "patrick@email.com", found.Email)
	})

	t.Run("duplicate email differing in case", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.NewAccount().WithEmail("patrick@email.com").Build(t, db)
		repo := repository.NewAccountRepository(db)

		dup := model.Account{Email: "PATRICK@email.com", PasswordHash: "x", RegisteredOn: time.Now(), Role: model.RoleStandard}
		assert.ErrorIs(t, repo.Insert(ctx, &dup), apperrors.ErrDuplicateEmail)
	})

	t.Run("timestamps round trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewAccountRepository(db)
		registered := time.Date(2020, 7, 18, 14, 3, 9, 0, time.UTC)
		a := model.Account{Email: "a@b.com", PasswordHash: "x", RegisteredOn: registered, Role: model.RoleStandard}
		a.ConfirmEmail(registered.Add(time.Minute))
		require.NoError(t, repo.Insert(ctx, &a))

		saved, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, registered.Equal(saved.RegisteredOn))
		assert.Nil(t, saved.EmailConfirmationSentOn)
		require.NotNil(t, saved.EmailConfirmedOn)
		assert.True(t, registered.Add(time.Minute).Equal(*saved.EmailConfirmedOn))
	})

	t.Run("delete cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		testutil.NewPosition(account.ID).Build(t, db)
		testutil.NewWatchlistEntry(account.ID).Build(t, db)

		require.NoError(t, repository.NewAccountRepository(db).Delete(ctx, account.ID))

		testutil.AssertRowCount(t, db, "position", 0)
		testutil.AssertRowCount(t, db, "watchlist_entry", 0)
	})

	t.Run("update of missing account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		err := repository.NewAccountRepository(db).Update(ctx, model.Account{ID: testutil.MakeID(), Email: "x@y.com"})
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	t.Run("transaction commits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		repo := repository.NewAccountRepository(db)

		err := repo.InTx(ctx, func(tx *repository.AccountRepository) error {
			a, err := tx.GetByID(ctx, account.ID)
			if err != nil {
				return err
			}
			a.Email = "new@email.com"
			return tx.Update(ctx, a)
		})
		require.NoError(t, err)

		saved, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "new@email.com", saved.Email)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		account := testutil.NewAccount().Build(t, db)
		repo := repository.NewAccountRepository(db)
		stop := errors.New("stop")

		err := repo.InTx(ctx, func(tx *repository.AccountRepository) error {
			if err := tx.Delete(ctx, account.ID); err != nil {
				return err
			}
			return stop
		})
		require.ErrorIs(t, err, stop)

		_, err = repo.GetByID(ctx, account.ID)
		assert.NoError(t, err)
	})
}

func TestPositionRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	account := testutil.NewAccount().Build(t, db)
	repo := repository.NewPositionRepository(db)

	fetched := time.Date(2020, 7, 28, 10, 30, 0, 0, time.UTC)
	first := testutil.NewPosition(account.ID).WithCurrentPrice(14834, fetched).Build(t, db)
	second := testutil.NewPosition(account.ID).WithSymbol("MSFT").Build(t, db)

	t.Run("lists in insertion order", func(t *testing.T) {
		positions, err := repo.ListByAccount(ctx, account.ID)
		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, first.ID, positions[0].ID)
		assert.Equal(t, second.ID, positions[1].ID)
	})

	t.Run("round trips cached price", func(t *testing.T) {
		p, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(14834), p.CurrentPrice)
		assert.Equal(t, int64(14834*16), p.Value)
		require.NotNil(t, p.CurrentPriceDate)
		assert.True(t, fetched.Equal(*p.CurrentPriceDate))
		assert.Equal(t, "2020-07-18", p.PurchaseDate.Format(time.DateOnly))
	})

	t.Run("missing position", func(t *testing.T) {
		_, err := repo.GetByID(ctx, testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrPositionNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, testutil.MakeID()), apperrors.ErrPositionNotFound)
	})

	t.Run("quote update keeps edited shares", func(t *testing.T) {
		snapshot, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)

		edited := snapshot
		require.NoError(t, edited.Update("27", "", nil))
		require.NoError(t, repo.Update(ctx, edited))

		snapshot.ApplyCurrentPrice(14834, fetched)
		require.NoError(t, repo.UpdateQuote(ctx, snapshot))

		saved, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(27), saved.Shares)
		assert.Equal(t, int64(14834), saved.CurrentPrice)
		assert.Equal(t, int64(14834*27), saved.Value)
		require.NotNil(t, saved.CurrentPriceDate)
		assert.True(t, fetched.Equal(*saved.CurrentPriceDate))
	})

	t.Run("quote update of missing position", func(t *testing.T) {
		err := repo.UpdateQuote(ctx, model.Position{ID: testutil.MakeID()})
		assert.ErrorIs(t, err, apperrors.ErrPositionNotFound)
	})

	t.Run("unknown account has no positions", func(t *testing.T) {
		positions, err := repo.ListByAccount(ctx, testutil.MakeID())
		require.NoError(t, err)
		assert.NotNil(t, positions)
		assert.Empty(t, positions)
	})
}

// TestRepository_DatabaseErrors tests how driver failures surface.
//
// WHY: A broken database must come back as a wrapped error, never as a
// not-found error, or the API would answer 404 when it should answer 500.
func TestRepository_DatabaseErrors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("disk I/O error")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	t.Run("account lookup", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM account WHERE email = \?`).
			WithArgs("patrick@email.com").
			WillReturnError(dbErr)

		_, err := repository.NewAccountRepository(db).GetByEmail(ctx, " Patrick@Email.com ")

		require.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	t.Run("position list", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM position WHERE account_id = \?`).
			WithArgs("acc-1").
			WillReturnError(dbErr)

		_, err := repository.NewPositionRepository(db).ListByAccount(ctx, "acc-1")

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("unreadable purchase date", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "symbol", "shares", "purchase_price", "purchase_date", "account_id",
			"current_price", "current_price_date", "position_value",
		}).AddRow("pos-1", "AAPL", 16, 40678, "18/07/2020", "acc-1", 0, nil, 0)
		mock.ExpectQuery(`SELECT (.+) FROM position WHERE id = \?`).
			WithArgs("pos-1").
			WillReturnRows(rows)

		_, err := repository.NewPositionRepository(db).GetByID(ctx, "pos-1")

		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrPositionNotFound)
	})

	t.Run("watchlist delete", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM watchlist_entry WHERE id = \?`).
			WithArgs("w-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repository.NewWatchlistRepository(db).Delete(ctx, "w-1")

		assert.ErrorIs(t, err, apperrors.ErrWatchlistEntryNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
