package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ndewijer/stock-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/model"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
)

// WatchlistService handles the stocks an account watches.
type WatchlistService struct {
	watchlistRepo *repository.WatchlistRepository
	refresh       *RefreshService
	logger        *zap.Logger
}

// NewWatchlistService creates a new WatchlistService with the provided dependencies.
func NewWatchlistService(
	watchlistRepo *repository.WatchlistRepository,
	refresh *RefreshService,
	logger *zap.Logger,
) *WatchlistService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchlistService{
		watchlistRepo: watchlistRepo,
		refresh:       refresh,
		logger:        logger.Named("watchlist"),
	}
}

// ListEntries returns the account's watchlist after refreshing stale share
// prices and fundamentals. Each entry costs at most two provider calls.
func (s *WatchlistService) ListEntries(ctx context.Context, accountID string) ([]model.WatchlistEntry, error) {
	entries, err := s.watchlistRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	refreshed := make([]model.WatchlistEntry, 0, len(entries))
	for i := range entries {
		w := &entries[i]
		priceChanged := s.refresh.EnsureWatchPrice(ctx, w)
		fundamentalsChanged := s.refresh.EnsureFundamentals(ctx, w)
		if priceChanged || fundamentalsChanged {
			err := s.watchlistRepo.Update(ctx, *w)
			if errors.Is(err, apperrors.ErrWatchlistEntryNotFound) {
				s.logger.Debug("watchlist entry deleted during refresh", zap.String("entry_id", w.ID))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to save refreshed watchlist entry %s: %w", w.ID, err)
			}
		}
		refreshed = append(refreshed, *w)
	}

	return refreshed, nil
}

// CreateEntry adds a symbol to the account's watchlist.
func (s *WatchlistService) CreateEntry(ctx context.Context, accountID string, req request.CreateWatchlistEntryRequest) (model.WatchlistEntry, error) {
	w := model.WatchlistEntry{
		Symbol:    strings.ToUpper(strings.TrimSpace(req.Symbol)),
		AccountID: accountID,
	}
	if err := s.watchlistRepo.Insert(ctx, &w); err != nil {
		return model.WatchlistEntry{}, err
	}

	s.logger.Info("watchlist entry added",
		zap.String("entry_id", w.ID),
		zap.String("symbol", w.Symbol),
		zap.String("account_id", accountID),
	)
	return w, nil
}

// DeleteEntry removes an entry owned by accountID.
// Returns apperrors.ErrWatchlistEntryNotFound or apperrors.ErrForbidden.
func (s *WatchlistService) DeleteEntry(ctx context.Context, accountID, id string) error {
	w, err := s.watchlistRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w.AccountID != accountID {
		return apperrors.ErrForbidden
	}
	if err := s.watchlistRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("watchlist entry deleted", zap.String("entry_id", id), zap.String("symbol", w.Symbol))
	return nil
}
