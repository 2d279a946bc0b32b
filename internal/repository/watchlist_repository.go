package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
)

// WatchlistRepository provides data access methods for the watchlist_entry table.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

const watchlistColumns = `id, symbol, account_id, current_share_price, current_share_price_date,
	company_name, fifty_two_week_low, fifty_two_week_high, market_cap, dividend_per_share,
	pe_ratio, peg_ratio, profit_margin, beta, price_to_book_ratio, fundamentals_date`

// GetByID retrieves a single watchlist entry.
// Returns apperrors.ErrWatchlistEntryNotFound if no entry has the given ID.
func (r *WatchlistRepository) GetByID(ctx context.Context, id string) (model.WatchlistEntry, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist_entry WHERE id = ?`

	w, err := scanWatchlistEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.WatchlistEntry{}, apperrors.ErrWatchlistEntryNotFound
	}
	if err != nil {
		return model.WatchlistEntry{}, fmt.Errorf("failed to query watchlist entry: %w", err)
	}
	return w, nil
}

// ListByAccount retrieves the watchlist of one account in insertion order.
func (r *WatchlistRepository) ListByAccount(ctx context.Context, accountID string) ([]model.WatchlistEntry, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist_entry WHERE account_id = ? ORDER BY rowid`
	return r.list(ctx, query, accountID)
}

// ListAll retrieves every watchlist entry, for the scheduled refresh.
func (r *WatchlistRepository) ListAll(ctx context.Context) ([]model.WatchlistEntry, error) {
	query := `SELECT ` + watchlistColumns + ` FROM watchlist_entry ORDER BY rowid`
	return r.list(ctx, query)
}

func (r *WatchlistRepository) list(ctx context.Context, query string, args ...any) ([]model.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.WatchlistEntry{}
	for rows.Next() {
		w, err := scanWatchlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist_entry table results: %w", err)
		}
		entries = append(entries, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist_entry table: %w", err)
	}

	return entries, nil
}

// Insert stores a new watchlist entry. An empty ID is replaced by a new UUID.
func (r *WatchlistRepository) Insert(ctx context.Context, w *model.WatchlistEntry) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}

	query := `
        INSERT INTO watchlist_entry (` + watchlistColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.Symbol,
		w.AccountID,
		w.CurrentSharePrice,
		nullTimestamp(w.CurrentSharePriceDate),
		nullString(w.CompanyName),
		w.FiftyTwoWeekLow,
		w.FiftyTwoWeekHigh,
		nullString(w.MarketCap),
		w.DividendPerShare,
		w.PERatio,
		w.PEGRatio,
		w.ProfitMargin,
		w.Beta,
		w.PriceToBookRatio,
		nullTimestamp(w.FundamentalsDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist entry: %w", err)
	}

	return nil
}

// Update writes the cached price and fundamentals of the entry.
// Returns apperrors.ErrWatchlistEntryNotFound if the entry no longer exists.
func (r *WatchlistRepository) Update(ctx context.Context, w model.WatchlistEntry) error {
	query := `
        UPDATE watchlist_entry
        SET current_share_price = ?, current_share_price_date = ?,
            company_name = ?, fifty_two_week_low = ?, fifty_two_week_high = ?,
            market_cap = ?, dividend_per_share = ?, pe_ratio = ?, peg_ratio = ?,
            profit_margin = ?, beta = ?, price_to_book_ratio = ?, fundamentals_date = ?
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		w.CurrentSharePrice,
		nullTimestamp(w.CurrentSharePriceDate),
		nullString(w.CompanyName),
		w.FiftyTwoWeekLow,
		w.FiftyTwoWeekHigh,
		nullString(w.MarketCap),
		w.DividendPerShare,
		w.PERatio,
		w.PEGRatio,
		w.ProfitMargin,
		w.Beta,
		w.PriceToBookRatio,
		nullTimestamp(w.FundamentalsDate),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update watchlist entry: %w", err)
	}

	return requireAffected(result, apperrors.ErrWatchlistEntryNotFound)
}

// Delete removes a watchlist entry.
// Returns apperrors.ErrWatchlistEntryNotFound if no entry has the given ID.
func (r *WatchlistRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM watchlist_entry WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}

	return requireAffected(result, apperrors.ErrWatchlistEntryNotFound)
}

func scanWatchlistEntry(s scanner) (model.WatchlistEntry, error) {
	var (
		w                model.WatchlistEntry
		priceDate        sql.NullString
		companyName      sql.NullString
		marketCap        sql.NullString
		fundamentalsDate sql.NullString
	)

	err := s.Scan(
		&w.ID,
		&w.Symbol,
		&w.AccountID,
		&w.CurrentSharePrice,
		&priceDate,
		&companyName,
		&w.FiftyTwoWeekLow,
		&w.FiftyTwoWeekHigh,
		&marketCap,
		&w.DividendPerShare,
		&w.PERatio,
		&w.PEGRatio,
		&w.ProfitMargin,
		&w.Beta,
		&w.PriceToBookRatio,
		&fundamentalsDate,
	)
	if err != nil {
		return model.WatchlistEntry{}, err
	}

	w.CompanyName = stringPtr(companyName)
	w.MarketCap = stringPtr(marketCap)
	if w.CurrentSharePriceDate, err = parseNullTimestamp(priceDate); err != nil {
		return model.WatchlistEntry{}, err
	}
	if w.FundamentalsDate, err = parseNullTimestamp(fundamentalsDate); err != nil {
		return model.WatchlistEntry{}, err
	}

	return w, nil
}
