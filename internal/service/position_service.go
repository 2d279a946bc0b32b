package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/fixedpoint"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
)

// PositionService handles the stock positions of an account.
type PositionService struct {
	positionRepo *repository.PositionRepository
	refresh      *RefreshService
	logger       *zap.Logger
}

// NewPositionService creates a new PositionService with the provided dependencies.
func NewPositionService(
	positionRepo *repository.PositionRepository,
	refresh *RefreshService,
	logger *zap.Logger,
) *PositionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionService{
		positionRepo: positionRepo,
		refresh:      refresh,
		logger:       logger.Named("positions"),
	}
}

// Portfolio is an account's positions with their combined value in cents.
type Portfolio struct {
	Positions []model.Position
	Value     int64
}

// ListPositions returns the account's positions after refreshing any stale
// current price. Refreshed positions are saved before returning. Provider
// failures leave the cached price in place and do not fail the request, and a
// position deleted meanwhile is left out.
func (s *PositionService) ListPositions(ctx context.Context, accountID string) (Portfolio, error) {
	positions, err := s.positionRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return Portfolio{}, err
	}

	portfolio := Portfolio{Positions: make([]model.Position, 0, len(positions))}
	for i := range positions {
		p := &positions[i]
		if s.refresh.EnsureCurrentPrice(ctx, p) {
			err := s.positionRepo.UpdateQuote(ctx, *p)
			if errors.Is(err, apperrors.ErrPositionNotFound) {
				s.logger.Debug("position deleted during refresh", zap.String("position_id", p.ID))
				continue
			}
			if err != nil {
				return Portfolio{}, fmt.Errorf("failed to save refreshed position %s: %w", p.ID, err)
			}
		}
		portfolio.Positions = append(portfolio.Positions, *p)
		portfolio.Value += p.Value
	}

	return portfolio, nil
}

// GetPosition returns a position owned by accountID.
// Returns apperrors.ErrPositionNotFound if it does not exist and
// apperrors.ErrForbidden if it belongs to another account.
func (s *PositionService) GetPosition(ctx context.Context, accountID, id string) (model.Position, error) {
	p, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		return model.Position{}, err
	}
	if p.AccountID != accountID {
		s.logger.Info("position access denied",
			zap.String("position_id", id),
			zap.String("account_id", accountID),
		)
		return model.Position{}, apperrors.ErrForbidden
	}
	return p, nil
}

// PositionDetails returns a position with its weekly price chart.
func (s *PositionService) PositionDetails(ctx context.Context, accountID, id string) (model.Position, model.Chart, error) {
	p, err := s.GetPosition(ctx, accountID, id)
	if err != nil {
		return model.Position{}, model.Chart{}, err
	}
	return p, s.refresh.WeeklySeries(ctx, p), nil
}

// CreatePosition adds a position to the account. The symbol is stored upper
// case; no current price is fetched until the positions are listed.
func (s *PositionService) CreatePosition(ctx context.Context, accountID string, req request.CreateStockRequest) (model.Position, error) {
	shares, err := model.ParseShares(req.Shares.String())
	if err != nil {
		return model.Position{}, err
	}
	price, err := fixedpoint.EncodeCurrency(req.PurchasePrice.String())
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidPrice, err)
	}
	purchaseDate, err := parseDate(req.PurchaseDate)
	if err != nil {
		return model.Position{}, err
	}

	p := model.Position{
		Symbol:        strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Shares:        shares,
		PurchasePrice: price,
		PurchaseDate:  purchaseDate,
		AccountID:     accountID,
	}
	if err := s.positionRepo.Insert(ctx, &p); err != nil {
		return model.Position{}, err
	}

	s.logger.Info("position added",
		zap.String("position_id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.String("account_id", accountID),
	)
	return p, nil
}

// UpdatePosition applies an edit to a position owned by accountID.
// Omitted fields are unchanged; a new share count revalues the position at
// the cached current price.
func (s *PositionService) UpdatePosition(ctx context.Context, accountID, id string, req request.UpdateStockRequest) (model.Position, error) {
	p, err := s.GetPosition(ctx, accountID, id)
	if err != nil {
		return model.Position{}, err
	}

	var purchaseDate *time.Time
	if req.PurchaseDate != "" {
		d, err := parseDate(req.PurchaseDate)
		if err != nil {
			return model.Position{}, err
		}
		purchaseDate = &d
	}

	if err := p.Update(req.Shares.String(), req.PurchasePrice.String(), purchaseDate); err != nil {
		return model.Position{}, err
	}
	if err := s.positionRepo.Update(ctx, p); err != nil {
		return model.Position{}, err
	}

	s.logger.Info("position updated", zap.String("position_id", p.ID), zap.String("symbol", p.Symbol))
	return p, nil
}

// DeletePosition removes a position owned by accountID.
func (s *PositionService) DeletePosition(ctx context.Context, accountID, id string) error {
	p, err := s.GetPosition(ctx, accountID, id)
	if err != nil {
		return err
	}
	if err := s.positionRepo.Delete(ctx, p.ID); err != nil {
		return err
	}

	s.logger.Info("position deleted", zap.String("position_id", p.ID), zap.String("symbol", p.Symbol))
	return nil
}
