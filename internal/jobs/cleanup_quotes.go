// Package jobs holds database maintenance routines run by the sweepers.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// CleanupConfig configures retention for the quote log.
type CleanupConfig struct {
	QuoteRetentionDays int
}

// DefaultCleanupConfig returns sensible retention defaults.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		QuoteRetentionDays: 90, // quotes older than a season are noise
	}
}

// CleanupOldQuotes removes quote log entries past retention. Order line items
// carry their own breakdown snapshot, so nothing references these rows.
func CleanupOldQuotes(ctx context.Context, db *pgxpool.Pool, cfg CleanupConfig) error {
	cutoff := time.Now().AddDate(0, 0, -cfg.QuoteRetentionDays)

	result, err := db.Exec(ctx, `
		DELETE FROM quote_log
		WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup old quotes: %w", err)
	}

	if deleted := result.RowsAffected(); deleted > 0 {
		log.Info().Int64("rowsDeleted", deleted).Time("cutoff", cutoff).Msg("Cleaned up old quote log entries")
	}
	return nil
}
