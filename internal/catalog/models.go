// Package catalog resolves materials, add-ons, and template pricing bundles
// from Postgres for the pricing engine. The engine itself never touches the
// database; handlers resolve through this package and pass snapshots in.
package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/pricing"
)

// MaterialRow is a material catalog record as stored.
type MaterialRow struct {
	ID                  string    `json:"id"`
	Slug                string    `json:"slug"`
	Name                string    `json:"name"`
	UnitType            string    `json:"unitType"`
	CostPerM2           *float64  `json:"costPerM2,omitempty"`
	CostPerSheet        *float64  `json:"costPerSheet,omitempty"`
	SheetWidthMm        *int      `json:"sheetWidthMm,omitempty"`
	SheetHeightMm       *int      `json:"sheetHeightMm,omitempty"`
	DefaultWastePercent *float64  `json:"defaultWastePercent,omitempty"`
	Active              bool      `json:"active"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Snapshot converts the row into the engine's material value.
func (r MaterialRow) Snapshot() pricing.Material {
	return pricing.Material{
		ID:            r.ID,
		Name:          r.Name,
		UnitType:      pricing.UnitType(r.UnitType),
		CostPerM2:     r.CostPerM2,
		CostPerSheet:  r.CostPerSheet,
		SheetWidthMm:  r.SheetWidthMm,
		SheetHeightMm: r.SheetHeightMm,
	}
}

// AddOnRow is an add-on catalog record as stored.
type AddOnRow struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	CostType string  `json:"costType"`
	Value    float64 `json:"value"`
	Active   bool    `json:"active"`
}

// Snapshot converts the row into the engine's add-on value.
func (r AddOnRow) Snapshot() pricing.AddOn {
	return pricing.AddOn{
		ID:       r.ID,
		Name:     r.Name,
		CostType: pricing.AddOnCostType(r.CostType),
		Value:    r.Value,
	}
}

// TemplateRow is a product template record.
type TemplateRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LayersCount *int   `json:"layersCount,omitempty"`
}

// TemplateFieldRow is a personalization field definition on a template.
type TemplateFieldRow struct {
	Key            string `json:"key"`
	FieldType      string `json:"fieldType"`
	AffectsPricing bool   `json:"affectsPricing"`
}

// Snapshot converts the row into the engine's field value.
func (r TemplateFieldRow) Snapshot() pricing.TemplateField {
	return pricing.TemplateField{
		Key:            r.Key,
		Type:           pricing.FieldType(r.FieldType),
		AffectsPricing: r.AffectsPricing,
	}
}

// PricingRuleRow is a template pricing rule record. AppliesWhen is the raw
// JSONB condition object, nil when the rule is unconditional.
type PricingRuleRow struct {
	ID          string  `json:"id"`
	TemplateID  string  `json:"templateId"`
	RuleType    string  `json:"ruleType"`
	Value       float64 `json:"value"`
	Priority    int     `json:"priority"`
	VariantID   *string `json:"variantId,omitempty"`
	AppliesWhen []byte  `json:"appliesWhen,omitempty"`
}

// Snapshot converts the row into the engine's rule value, decoding the
// condition object.
func (r PricingRuleRow) Snapshot() (pricing.TemplatePricingRule, error) {
	rule := pricing.TemplatePricingRule{
		ID:        r.ID,
		Type:      pricing.RuleType(r.RuleType),
		Value:     r.Value,
		Priority:  r.Priority,
		VariantID: r.VariantID,
	}
	if len(r.AppliesWhen) > 0 {
		if err := json.Unmarshal(r.AppliesWhen, &rule.AppliesWhen); err != nil {
			return pricing.TemplatePricingRule{}, fmt.Errorf("rule %s: invalid appliesWhen condition: %w", r.ID, err)
		}
	}
	return rule, nil
}

// TemplatePricingBundle is everything the order-from-template flow needs in
// one fetch: the template, its field definitions, and its pricing rules.
type TemplatePricingBundle struct {
	Template TemplateRow        `json:"template"`
	Fields   []TemplateFieldRow `json:"fields"`
	Rules    []PricingRuleRow   `json:"rules"`
}

// Snapshot converts the bundle's rules and fields into engine values.
func (b TemplatePricingBundle) Snapshot() ([]pricing.TemplatePricingRule, []pricing.TemplateField, error) {
	rules := make([]pricing.TemplatePricingRule, 0, len(b.Rules))
	for _, row := range b.Rules {
		rule, err := row.Snapshot()
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rule)
	}
	fields := make([]pricing.TemplateField, 0, len(b.Fields))
	for _, row := range b.Fields {
		fields = append(fields, row.Snapshot())
	}
	return rules, fields, nil
}
