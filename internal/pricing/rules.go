package pricing

import (
	"math"
	"sort"
	"strings"
)

// ApplicableRules filters a template's rules down to the ones that apply to
// the selected variant and personalization payload. A rule scoped to a
// variant only survives when the caller selected exactly that variant; a rule
// without a variant scope always survives. Condition objects are matched with
// strict equality per key, no coercion: a missing personalization key is a
// mismatch.
func ApplicableRules(rules []TemplatePricingRule, selectedVariantID *string, personalization map[string]any) []TemplatePricingRule {
	out := make([]TemplatePricingRule, 0, len(rules))
	for _, r := range rules {
		if r.VariantID != nil {
			if selectedVariantID == nil || *r.VariantID != *selectedVariantID {
				continue
			}
		}
		if !conditionMatches(r.AppliesWhen, personalization) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func conditionMatches(condition map[string]any, personalization map[string]any) bool {
	for key, want := range condition {
		got, ok := personalization[key]
		if !ok {
			return false
		}
		if !strictEqual(got, want) {
			return false
		}
	}
	return true
}

// strictEqual compares two decoded JSON values the way === would: equal only
// when both are the same scalar type with the same value. Objects and arrays
// never compare equal across a decode round-trip, so they are always unequal
// here.
func strictEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	default:
		return false
	}
}

// DeriveMetrics computes the rule evaluator's inputs from the template's
// field definitions and the caller's personalization payload. Character count
// sums the trimmed lengths of TEXT fields flagged as affecting pricing;
// non-string values contribute nothing.
func DeriveMetrics(fields []TemplateField, personalization map[string]any, quantity int, layersCount *int) TemplatePricingMetrics {
	characters := 0
	for _, f := range fields {
		if !f.AffectsPricing || f.Type != FieldText {
			continue
		}
		if v, ok := personalization[f.Key].(string); ok {
			characters += len([]rune(strings.TrimSpace(v)))
		}
	}
	return TemplatePricingMetrics{
		Quantity:       quantity,
		CharacterCount: characters,
		LayersCount:    layersCount,
	}
}

// templateResult holds the unrounded output of the rule stage.
type templateResult struct {
	basePrice float64
	lines     []TemplateLine
}

// applyTemplateRules evaluates the rules in ascending priority order (stable
// on ties) and accumulates their contributions. Rules whose contribution
// works out to zero produce no line.
func applyTemplateRules(tp TemplatePricing, base costResult) templateResult {
	ordered := make([]TemplatePricingRule, len(tp.Rules))
	copy(ordered, tp.Rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var price float64
	lines := []TemplateLine{}
	for _, r := range ordered {
		delta := ruleDelta(r, tp.Metrics, base)
		if delta == 0 || math.IsNaN(delta) {
			continue
		}
		price += delta
		lines = append(lines, TemplateLine{RuleID: r.ID, Label: ruleLabel(r.Type), Amount: delta})
	}
	return templateResult{basePrice: price, lines: lines}
}

// ruleDelta computes one rule's contribution. Metrics win over geometry when
// both are available; unknown rule types contribute nothing.
func ruleDelta(r TemplatePricingRule, m TemplatePricingMetrics, base costResult) float64 {
	switch r.Type {
	case RuleFixedBase:
		return r.Value
	case RulePerCharacter:
		return float64(m.CharacterCount) * r.Value
	case RulePerCm2:
		areaCm2 := base.areaM2 * 10_000
		if m.AreaCm2 != nil {
			areaCm2 = *m.AreaCm2
		}
		return areaCm2 * r.Value
	case RulePerItem:
		qty := m.Quantity
		if qty == 0 {
			qty = base.quantity
		}
		return float64(qty) * r.Value
	case RuleLayerMultiplier:
		layers := 1
		if m.LayersCount != nil {
			layers = *m.LayersCount
		}
		return float64(layers) * r.Value
	case RuleAddOnLink:
		// Flat passthrough; linked add-on resolution lives with the caller.
		return r.Value
	default:
		return 0
	}
}

func ruleLabel(t RuleType) string {
	switch t {
	case RuleFixedBase:
		return "Base"
	case RulePerCharacter:
		return "Per character"
	case RulePerCm2:
		return "Per cm²"
	case RulePerItem:
		return "Per item"
	case RuleLayerMultiplier:
		return "Layers"
	case RuleAddOnLink:
		return "Add-on"
	default:
		return "Rule"
	}
}
