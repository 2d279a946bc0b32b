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

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

const positionColumns = `id, symbol, shares, purchase_price, purchase_date, account_id,
	current_price, current_price_date, position_value`

// GetByID retrieves a single position.
// Returns apperrors.ErrPositionNotFound if no position has the given ID.
func (r *PositionRepository) GetByID(ctx context.Context, id string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE id = ?`

	p, err := scanPosition(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position: %w", err)
	}
	return p, nil
}

// ListByAccount retrieves the positions of one account in insertion order.
// Returns an empty slice if the account has none.
func (r *PositionRepository) ListByAccount(ctx context.Context, accountID string) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE account_id = ? ORDER BY rowid`
	return r.list(ctx, query, accountID)
}

// ListAll retrieves every position, for the scheduled refresh.
func (r *PositionRepository) ListAll(ctx context.Context) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position ORDER BY rowid`
	return r.list(ctx, query)
}

func (r *PositionRepository) list(ctx context.Context, query string, args ...any) ([]model.Position, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// Insert stores a new position. An empty ID is replaced by a new UUID.
func (r *PositionRepository) Insert(ctx context.Context, p *model.Position) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `
        INSERT INTO position (` + positionColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Symbol,
		p.Shares,
		p.PurchasePrice,
		p.PurchaseDate.Format(dateLayout),
		p.AccountID,
		p.CurrentPrice,
		nullTimestamp(p.CurrentPriceDate),
		p.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position: %w", err)
	}

	return nil
}

// Update writes every mutable field of the position.
// Returns apperrors.ErrPositionNotFound if the position no longer exists.
func (r *PositionRepository) Update(ctx context.Context, p model.Position) error {
	query := `
        UPDATE position
        SET shares = ?, purchase_price = ?, purchase_date = ?,
            current_price = ?, current_price_date = ?, position_value = ?
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		p.Shares,
		p.PurchasePrice,
		p.PurchaseDate.Format(dateLayout),
		p.CurrentPrice,
		nullTimestamp(p.CurrentPriceDate),
		p.Value,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	return requireAffected(result, apperrors.ErrPositionNotFound)
}

// UpdateQuote writes only the cached current price and its date. The value is
// recomputed from the stored share count, so an edit saved while the price was
// being fetched is kept.
// Returns apperrors.ErrPositionNotFound if the position no longer exists.
func (r *PositionRepository) UpdateQuote(ctx context.Context, p model.Position) error {
	query := `
        UPDATE position
        SET current_price = ?, current_price_date = ?, position_value = ? * shares
        WHERE id = ?
    `

	result, err := r.db.ExecContext(ctx, query,
		p.CurrentPrice,
		nullTimestamp(p.CurrentPriceDate),
		p.CurrentPrice,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position quote: %w", err)
	}

	return requireAffected(result, apperrors.ErrPositionNotFound)
}

// Delete removes a position.
// Returns apperrors.ErrPositionNotFound if no position has the given ID.
func (r *PositionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM position WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}

	return requireAffected(result, apperrors.ErrPositionNotFound)
}

func scanPosition(s scanner) (model.Position, error) {
	var (
		p            model.Position
		purchaseDate string
		priceDate    sql.NullString
	)

	err := s.Scan(
		&p.ID,
		&p.Symbol,
		&p.Shares,
		&p.PurchasePrice,
		&purchaseDate,
		&p.AccountID,
		&p.CurrentPrice,
		&priceDate,
		&p.Value,
	)
	if err != nil {
		return model.Position{}, err
	}

	if p.PurchaseDate, err = ParseTime(purchaseDate); err != nil {
		return model.Position{}, err
	}
	if p.CurrentPriceDate, err = parseNullTimestamp(priceDate); err != nil {
		return model.Position{}, err
	}

	return p, nil
}

// requireAffected returns notFound when the statement touched no rows.
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
