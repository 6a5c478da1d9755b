// Package sweepers runs periodic background maintenance.
package sweepers

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/jobs"
)

// QuoteLogSweeper periodically trims the quote log to its retention window.
type QuoteLogSweeper struct {
	pool     *pgxpool.Pool
	logger   *zerolog.Logger
	interval time.Duration
	cfg      jobs.CleanupConfig
	stopChan chan struct{}
}

// NewQuoteLogSweeper creates a sweeper with the given run interval.
func NewQuoteLogSweeper(pool *pgxpool.Pool, logger *zerolog.Logger, interval time.Duration, cfg jobs.CleanupConfig) *QuoteLogSweeper {
	return &QuoteLogSweeper{
		pool:     pool,
		logger:   logger,
		interval: interval,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic cleanup sweep and blocks until stopped.
func (s *QuoteLogSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("retentionDays", s.cfg.QuoteRetentionDays).
		Msg("Starting quote log sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Quote log sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Quote log sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := jobs.CleanupOldQuotes(ctx, s.pool, s.cfg); err != nil {
				s.logger.Error().Err(err).Msg("Failed to clean up quote log")
			}
		}
	}
}

// Stop signals the sweeper to stop.
func (s *QuoteLogSweeper) Stop() {
	close(s.stopChan)
}
