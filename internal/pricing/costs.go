package pricing

import "math"

// materialCostResult is the outcome of resolving a material's base cost.
// Incomplete catalog records do not fail the calculation; they resolve to an
// unpriceable result that degrades to a zero cost. Callers can log the reason.
type materialCostResult struct {
	amount      float64
	unpriceable bool
	reason      string
}

// costResult holds the unrounded output of the cost stage. The template rule
// stage consumes TotalCost for margin re-derivation; rounding happens at
// assembly.
type costResult struct {
	quantity          int
	areaM2            float64
	materialCost      float64
	machineCost       float64
	laborCost         float64
	addOns            []AppliedAddOn
	totalCost         float64
	unpriceable       bool
	unpriceableReason string
}

// resolveMaterialCost computes the base material cost before waste.
func resolveMaterialCost(m Material, areaM2 float64) materialCostResult {
	switch m.UnitType {
	case UnitM2:
		if m.CostPerM2 == nil || *m.CostPerM2 == 0 {
			return materialCostResult{unpriceable: true, reason: "material has no costPerM2"}
		}
		return materialCostResult{amount: areaM2 * *m.CostPerM2}
	case UnitSheet:
		if m.CostPerSheet == nil || *m.CostPerSheet == 0 ||
			m.SheetWidthMm == nil || *m.SheetWidthMm == 0 ||
			m.SheetHeightMm == nil || *m.SheetHeightMm == 0 {
			return materialCostResult{unpriceable: true, reason: "material is missing sheet cost or dimensions"}
		}
		sheetAreaM2 := float64(*m.SheetWidthMm) * float64(*m.SheetHeightMm) / 1_000_000
		sheetsUsed := areaM2 / sheetAreaM2
		return materialCostResult{amount: sheetsUsed * *m.CostPerSheet}
	default:
		return materialCostResult{unpriceable: true, reason: "unknown material unit type"}
	}
}

// computeCosts runs the cost stage: area, waste-adjusted material cost,
// machine cost, and add-on costs. It assumes the input already passed
// Validate.
func computeCosts(input PriceCalculationInput, ctx PricingContext) costResult {
	areaMm2 := float64(input.WidthMm) * float64(input.HeightMm) * float64(input.Quantity)
	areaM2 := areaMm2 / 1_000_000

	base := resolveMaterialCost(ctx.Material, areaM2)

	// Waste applies after the base cost, including the degraded zero case.
	materialCost := base.amount * (1 + input.WastePercent/100)
	machineCost := (input.MachineMinutes / 60) * input.MachineHourlyCost

	selected := make(map[string]bool, len(input.AddOnIDs))
	for _, id := range input.AddOnIDs {
		selected[id] = true
	}

	var laborCost float64
	addOns := []AppliedAddOn{}
	// Context order decides the output order, not the order of AddOnIDs.
	for _, a := range ctx.AddOns {
		if !selected[a.ID] {
			continue
		}
		var cost float64
		switch a.CostType {
		case AddOnFixed:
			cost = a.Value
		case AddOnPerItem:
			cost = a.Value * float64(input.Quantity)
		case AddOnPercent:
			// Each PERCENT add-on is taken against the same waste-adjusted
			// material + machine base; they do not compound.
			cost = (materialCost + machineCost) * a.Value / 100
		}
		laborCost += cost
		addOns = append(addOns, AppliedAddOn{ID: a.ID, Name: a.Name, Cost: cost})
	}

	return costResult{
		quantity:          input.Quantity,
		areaM2:            areaM2,
		materialCost:      materialCost,
		machineCost:       machineCost,
		laborCost:         laborCost,
		addOns:            addOns,
		totalCost:         materialCost + machineCost + laborCost,
		unpriceable:       base.unpriceable,
		unpriceableReason: base.reason,
	}
}

// recommendedFromMargin derives the fallback price from a target margin.
// A 100% margin divides by zero and yields +Inf; the engine reproduces that
// rather than clamping.
func recommendedFromMargin(totalCost, targetMarginPercent float64) float64 {
	return totalCost / (1 - targetMarginPercent/100)
}

// round2 rounds a monetary value to two decimals, half away from zero on
// cents. Non-finite values pass through unchanged.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
