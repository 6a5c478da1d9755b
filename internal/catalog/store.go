package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a catalog record does not exist or is inactive.
var ErrNotFound = errors.New("catalog record not found")

// Store runs catalog queries against a shared connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a catalog store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetMaterial fetches one active material by id.
func (s *Store) GetMaterial(ctx context.Context, id string) (*MaterialRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, slug, name, unit_type, cost_per_m2, cost_per_sheet,
		       sheet_width_mm, sheet_height_mm, default_waste_percent, active, updated_at
		FROM materials
		WHERE id = $1 AND active = true
	`, id)

	var m MaterialRow
	err := row.Scan(
		&m.ID, &m.Slug, &m.Name, &m.UnitType, &m.CostPerM2, &m.CostPerSheet,
		&m.SheetWidthMm, &m.SheetHeightMm, &m.DefaultWastePercent, &m.Active, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch material %s: %w", id, err)
	}
	return &m, nil
}

// ListMaterials returns all active materials ordered by name.
func (s *Store) ListMaterials(ctx context.Context) ([]MaterialRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, slug, name, unit_type, cost_per_m2, cost_per_sheet,
		       sheet_width_mm, sheet_height_mm, default_waste_percent, active, updated_at
		FROM materials
		WHERE active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	materials := []MaterialRow{}
	for rows.Next() {
		var m MaterialRow
		if err := rows.Scan(
			&m.ID, &m.Slug, &m.Name, &m.UnitType, &m.CostPerM2, &m.CostPerSheet,
			&m.SheetWidthMm, &m.SheetHeightMm, &m.DefaultWastePercent, &m.Active, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// GetAddOns fetches the active add-ons for the given ids. Unknown ids are
// simply absent from the result; selection against missing add-ons is not an
// error for the pricing flow. The result keeps catalog order (by name), which
// decides the breakdown's add-on line order.
func (s *Store) GetAddOns(ctx context.Context, ids []string) ([]AddOnRow, error) {
	if len(ids) == 0 {
		return []AddOnRow{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, cost_type, value, active
		FROM add_ons
		WHERE id = ANY($1) AND active = true
		ORDER BY name
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch add-ons: %w", err)
	}
	defer rows.Close()

	return scanAddOns(rows)
}

// ListAddOns returns all active add-ons ordered by name.
func (s *Store) ListAddOns(ctx context.Context) ([]AddOnRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, cost_type, value, active
		FROM add_ons
		WHERE active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list add-ons: %w", err)
	}
	defer rows.Close()

	return scanAddOns(rows)
}

func scanAddOns(rows pgx.Rows) ([]AddOnRow, error) {
	addOns := []AddOnRow{}
	for rows.Next() {
		var a AddOnRow
		if err := rows.Scan(&a.ID, &a.Name, &a.CostType, &a.Value, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan add-on: %w", err)
		}
		addOns = append(addOns, a)
	}
	return addOns, rows.Err()
}

// GetTemplatePricing fetches a template together with its personalization
// field definitions and pricing rules. Rules come back in priority order with
// insertion order preserved on ties, which the evaluator relies on.
func (s *Store) GetTemplatePricing(ctx context.Context, templateID string) (*TemplatePricingBundle, error) {
	var bundle TemplatePricingBundle

	row := s.pool.QueryRow(ctx, `
		SELECT id, name, layers_count
		FROM templates
		WHERE id = $1
	`, templateID)
	if err := row.Scan(&bundle.Template.ID, &bundle.Template.Name, &bundle.Template.LayersCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("template %s: %w", templateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch template %s: %w", templateID, err)
	}

	fieldRows, err := s.pool.Query(ctx, `
		SELECT key, field_type, affects_pricing
		FROM template_fields
		WHERE template_id = $1
		ORDER BY position
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template fields: %w", err)
	}
	defer fieldRows.Close()

	bundle.Fields = []TemplateFieldRow{}
	for fieldRows.Next() {
		var f TemplateFieldRow
		if err := fieldRows.Scan(&f.Key, &f.FieldType, &f.AffectsPricing); err != nil {
			return nil, fmt.Errorf("failed to scan template field: %w", err)
		}
		bundle.Fields = append(bundle.Fields, f)
	}
	if err := fieldRows.Err(); err != nil {
		return nil, err
	}

	ruleRows, err := s.pool.Query(ctx, `
		SELECT id, template_id, rule_type, value, priority, variant_id, applies_when
		FROM template_pricing_rules
		WHERE template_id = $1
		ORDER BY priority, created_at
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing rules: %w", err)
	}
	defer ruleRows.Close()

	bundle.Rules = []PricingRuleRow{}
	for ruleRows.Next() {
		var r PricingRuleRow
		if err := ruleRows.Scan(&r.ID, &r.TemplateID, &r.RuleType, &r.Value, &r.Priority, &r.VariantID, &r.AppliesWhen); err != nil {
			return nil, fmt.Errorf("failed to scan pricing rule: %w", err)
		}
		bundle.Rules = append(bundle.Rules, r)
	}
	return &bundle, ruleRows.Err()
}

// UpsertMaterial inserts or updates a material by slug. Used by the price
// list import; manual edits in the admin panel go through the same row shape.
func (s *Store) UpsertMaterial(ctx context.Context, m MaterialRow) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO materials (id, slug, name, unit_type, cost_per_m2, cost_per_sheet,
		                       sheet_width_mm, sheet_height_mm, default_waste_percent, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, NOW())
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			unit_type = EXCLUDED.unit_type,
			cost_per_m2 = EXCLUDED.cost_per_m2,
			cost_per_sheet = EXCLUDED.cost_per_sheet,
			sheet_width_mm = EXCLUDED.sheet_width_mm,
			sheet_height_mm = EXCLUDED.sheet_height_mm,
			default_waste_percent = EXCLUDED.default_waste_percent,
			active = true,
			updated_at = NOW()
	`, m.ID, m.Slug, m.Name, m.UnitType, m.CostPerM2, m.CostPerSheet,
		m.SheetWidthMm, m.SheetHeightMm, m.DefaultWastePercent)
	if err != nil {
		return fmt.Errorf("failed to upsert material %s: %w", m.Slug, err)
	}
	return nil
}
