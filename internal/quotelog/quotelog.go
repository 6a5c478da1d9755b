// Package quotelog persists served price breakdowns for auditing. The order
// service keeps its own snapshot on the order line item; this log exists so
// the studio can answer "what did we quote and when" without an order.
package quotelog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/pricing"
)

// Entry is one logged quote.
type Entry struct {
	ID         string                 `json:"id"`
	MaterialID string                 `json:"materialId"`
	TemplateID *string                `json:"templateId,omitempty"`
	Quantity   int                    `json:"quantity"`
	Breakdown  pricing.PriceBreakdown `json:"breakdown"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// Store writes and reads quote log rows.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a quote log store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Record inserts one served quote. The breakdown is stored as JSONB in the
// exact shape the API returned it.
func (s *Store) Record(ctx context.Context, materialID string, templateID *string, quantity int, breakdown pricing.PriceBreakdown) (string, error) {
	payload, err := json.Marshal(breakdown)
	if err != nil {
		return "", fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quote_log (id, material_id, template_id, quantity, breakdown, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, id, materialID, templateID, quantity, payload)
	if err != nil {
		return "", fmt.Errorf("failed to record quote: %w", err)
	}
	return id, nil
}

// ListRecent returns the most recent quotes, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, material_id, template_id, quantity, breakdown, created_at
		FROM quote_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.MaterialID, &e.TemplateID, &e.Quantity, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		if err := json.Unmarshal(payload, &e.Breakdown); err != nil {
			return nil, fmt.Errorf("quote %s: corrupt breakdown: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
