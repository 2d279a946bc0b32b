package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/stock-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/stock-portfolio-tracker/internal/repository"
)

// jobTimeout bounds one scheduled run.
const jobTimeout = 30 * time.Minute

// RefreshJob refreshes every position and watchlist entry in the database,
// so pages load without waiting on the provider. It uses the same staleness
// checks as request-time refreshes and is off unless a schedule is configured.
type RefreshJob struct {
	positionRepo  *repository.PositionRepository
	watchlistRepo *repository.WatchlistRepository
	refresh       *RefreshService
	concurrency   int
	logger        *zap.Logger
}

// NewRefreshJob creates a job running at most concurrency provider calls at once.
func NewRefreshJob(
	positionRepo *repository.PositionRepository,
	watchlistRepo *repository.WatchlistRepository,
	refresh *RefreshService,
	concurrency int,
	logger *zap.Logger,
) *RefreshJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &RefreshJob{
		positionRepo:  positionRepo,
		watchlistRepo: watchlistRepo,
		refresh:       refresh,
		concurrency:   concurrency,
		logger:        logger.Named("refresh_job"),
	}
}

// RefreshStats counts the records a run changed.
type RefreshStats struct {
	Positions        int64
	WatchlistEntries int64
}

// Run refreshes all records once. Provider failures are logged by the
// RefreshService and skipped, as are records deleted while the run was in
// progress. Any other save failure stops the run.
func (j *RefreshJob) Run(ctx context.Context) (RefreshStats, error) {
	positions, err := j.positionRepo.ListAll(ctx)
	if err != nil {
		return RefreshStats{}, err
	}
	entries, err := j.watchlistRepo.ListAll(ctx)
	if err != nil {
		return RefreshStats{}, err
	}

	var positionCount, entryCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for i := range positions {
		p := positions[i]
		g.Go(func() error {
			if !j.refresh.EnsureCurrentPrice(gctx, &p) {
				return nil
			}
			err := j.positionRepo.UpdateQuote(gctx, p)
			if errors.Is(err, apperrors.ErrPositionNotFound) {
				j.logger.Debug("position deleted during refresh", zap.String("position_id", p.ID))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to save position %s: %w", p.ID, err)
			}
			positionCount.Add(1)
			return nil
		})
	}

	for i := range entries {
		w := entries[i]
		g.Go(func() error {
			priceChanged := j.refresh.EnsureWatchPrice(gctx, &w)
			fundamentalsChanged := j.refresh.EnsureFundamentals(gctx, &w)
			if !priceChanged && !fundamentalsChanged {
				return nil
			}
			err := j.watchlistRepo.Update(gctx, w)
			if errors.Is(err, apperrors.ErrWatchlistEntryNotFound) {
				j.logger.Debug("watchlist entry deleted during refresh", zap.String("entry_id", w.ID))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to save watchlist entry %s: %w", w.ID, err)
			}
			entryCount.Add(1)
			return nil
		})
	}

	err = g.Wait()
	stats := RefreshStats{Positions: positionCount.Load(), WatchlistEntries: entryCount.Load()}
	return stats, err
}

// Scheduler returns a cron scheduler that runs the job on spec (standard
// five-field cron syntax). A run still in progress when the next one is due
// causes that one to be skipped. The caller starts and stops the scheduler.
func (j *RefreshJob) Scheduler(spec string) (*cron.Cron, error) {
	logger := cronLogger{j.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		stats, err := j.Run(ctx)
		if err != nil {
			j.logger.Error("scheduled refresh failed", zap.Error(err))
			return
		}
		j.logger.Info("scheduled refresh finished",
			zap.Int64("positions", stats.Positions),
			zap.Int64("watchlist_entries", stats.WatchlistEntries),
			zap.Duration("duration", time.Since(start)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
