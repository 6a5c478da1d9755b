package pricing

import (
	"time"

	"github.com/rs/zerolog/log"
)

// CalculatePrice validates the input, runs the cost stage, and — when the
// context carries at least one template pricing rule — lets the rule stage
// override the margin-based recommended price. It is the single entry point
// for both the generic order pricing and the order-from-template flows.
func CalculatePrice(input PriceCalculationInput, ctx PricingContext) (PriceBreakdown, error) {
	start := time.Now()

	if err := Validate(input); err != nil {
		validationFailures.Inc()
		return PriceBreakdown{}, err
	}

	costs := computeCosts(input, ctx)
	if costs.unpriceable {
		unpriceableMaterials.WithLabelValues(string(ctx.Material.UnitType)).Inc()
		log.Debug().
			Str("materialId", ctx.Material.ID).
			Str("reason", costs.unpriceableReason).
			Msg("Material cost degraded to zero")
	}

	mode := "base"
	breakdown := PriceBreakdown{
		MaterialCost:  round2(costs.materialCost),
		MachineCost:   round2(costs.machineCost),
		LaborCost:     round2(costs.laborCost),
		AddOns:        roundedAddOns(costs.addOns),
		TotalCost:     round2(costs.totalCost),
		MarginPercent: input.TargetMarginPercent,
	}

	if ctx.TemplatePricing != nil && len(ctx.TemplatePricing.Rules) > 0 {
		mode = "template"
		result := applyTemplateRules(*ctx.TemplatePricing, costs)

		basePrice := round2(result.basePrice)
		breakdown.TemplateBasePrice = &basePrice
		breakdown.TemplateLines = roundedLines(result.lines)
		breakdown.RecommendedPrice = basePrice
		if result.basePrice > 0 {
			breakdown.MarginPercent = round2((result.basePrice - costs.totalCost) / result.basePrice * 100)
		}
		rulesEvaluated.Observe(float64(len(ctx.TemplatePricing.Rules)))
	} else {
		if input.TargetMarginPercent == 100 {
			// Unguarded on purpose: dividing by zero here yields +Inf, which
			// the historical order snapshots contain as well.
			log.Warn().Str("materialId", input.MaterialID).Msg("Target margin of 100% produces an infinite recommended price")
		}
		breakdown.RecommendedPrice = round2(recommendedFromMargin(costs.totalCost, input.TargetMarginPercent))
	}

	calculationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	calculationsTotal.WithLabelValues(mode).Inc()
	return breakdown, nil
}

func roundedAddOns(in []AppliedAddOn) []AppliedAddOn {
	out := make([]AppliedAddOn, len(in))
	for i, a := range in {
		a.Cost = round2(a.Cost)
		out[i] = a
	}
	return out
}

func roundedLines(in []TemplateLine) []TemplateLine {
	out := make([]TemplateLine, len(in))
	for i, l := range in {
		l.Amount = round2(l.Amount)
		out[i] = l
	}
	return out
}
