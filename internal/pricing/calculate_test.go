package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestCalculatePriceMarginFallback(t *testing.T) {
	// No material cost, machine cost of exactly 90.
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            1,
		WidthMm:             100,
		HeightMm:            100,
		MachineMinutes:      60,
		MachineHourlyCost:   90,
		TargetMarginPercent: 40,
	}
	ctx := PricingContext{Material: Material{ID: "mat-1", UnitType: "NONE"}}

	breakdown, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if breakdown.TotalCost != 90 {
		t.Errorf("TotalCost = %v, want 90", breakdown.TotalCost)
	}
	if breakdown.RecommendedPrice != 150 {
		t.Errorf("RecommendedPrice = %v, want 150", breakdown.RecommendedPrice)
	}
	if breakdown.MarginPercent != 40 {
		t.Errorf("MarginPercent = %v, want 40", breakdown.MarginPercent)
	}
	if breakdown.TemplateBasePrice != nil {
		t.Error("TemplateBasePrice must be absent without template rules")
	}
}

func TestCalculatePriceTemplateOverride(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            3,
		WidthMm:             100,
		HeightMm:            100,
		TargetMarginPercent: 40,
	}
	ctx := PricingContext{
		Material: Material{ID: "mat-1", UnitType: "NONE"},
		TemplatePricing: &TemplatePricing{
			Rules: []TemplatePricingRule{
				{ID: "base", Type: RuleFixedBase, Value: 50, Priority: 1},
				{ID: "per-item", Type: RulePerItem, Value: 2, Priority: 2},
			},
			Metrics: TemplatePricingMetrics{Quantity: 3},
		},
	}

	breakdown, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if breakdown.TemplateBasePrice == nil || *breakdown.TemplateBasePrice != 56 {
		t.Fatalf("TemplateBasePrice = %v, want 56", breakdown.TemplateBasePrice)
	}
	if breakdown.RecommendedPrice != 56 {
		t.Errorf("RecommendedPrice = %v, want 56 (template must override margin fallback)", breakdown.RecommendedPrice)
	}
	if len(breakdown.TemplateLines) != 2 ||
		breakdown.TemplateLines[0].RuleID != "base" ||
		breakdown.TemplateLines[1].RuleID != "per-item" {
		t.Errorf("TemplateLines = %+v, want base then per-item", breakdown.TemplateLines)
	}
	// Zero total cost against a positive base price is a 100% margin.
	if breakdown.MarginPercent != 100 {
		t.Errorf("MarginPercent = %v, want 100", breakdown.MarginPercent)
	}
}

func TestCalculatePriceTemplateMarginRederivation(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            1,
		WidthMm:             100,
		HeightMm:            100,
		MachineMinutes:      60,
		MachineHourlyCost:   30,
		TargetMarginPercent: 40,
	}
	ctx := PricingContext{
		Material: Material{ID: "mat-1", UnitType: "NONE"},
		TemplatePricing: &TemplatePricing{
			Rules:   []TemplatePricingRule{{ID: "base", Type: RuleFixedBase, Value: 50, Priority: 1}},
			Metrics: TemplatePricingMetrics{Quantity: 1},
		},
	}

	breakdown, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}
	// (50 - 30) / 50 * 100 = 40
	if breakdown.MarginPercent != 40 {
		t.Errorf("MarginPercent = %v, want 40", breakdown.MarginPercent)
	}
}

func TestCalculatePriceTemplateZeroBaseKeepsTargetMargin(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            1,
		WidthMm:             100,
		HeightMm:            100,
		TargetMarginPercent: 25,
	}
	ctx := PricingContext{
		Material: Material{ID: "mat-1", UnitType: "NONE"},
		TemplatePricing: &TemplatePricing{
			// The only rule computes to zero and is skipped entirely.
			Rules: []TemplatePricingRule{{ID: "chars", Type: RulePerCharacter, Value: 2, Priority: 1}},
		},
	}

	breakdown, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if breakdown.TemplateBasePrice == nil || *breakdown.TemplateBasePrice != 0 {
		t.Fatalf("TemplateBasePrice = %v, want 0", breakdown.TemplateBasePrice)
	}
	if len(breakdown.TemplateLines) != 0 {
		t.Errorf("TemplateLines = %+v, want none", breakdown.TemplateLines)
	}
	if breakdown.MarginPercent != 25 {
		t.Errorf("MarginPercent = %v, want the unchanged target of 25", breakdown.MarginPercent)
	}
}

func TestCalculatePriceValidation(t *testing.T) {
	tests := []struct {
		name  string
		input PriceCalculationInput
		field string
	}{
		{"Missing material", PriceCalculationInput{Quantity: 1, WidthMm: 1, HeightMm: 1}, "materialId"},
		{"Zero quantity", PriceCalculationInput{MaterialID: "m", WidthMm: 1, HeightMm: 1}, "quantity"},
		{"Zero width", PriceCalculationInput{MaterialID: "m", Quantity: 1, HeightMm: 1}, "widthMm"},
		{"Negative waste", PriceCalculationInput{MaterialID: "m", Quantity: 1, WidthMm: 1, HeightMm: 1, WastePercent: -1}, "wastePercent"},
		{"NaN machine minutes", PriceCalculationInput{MaterialID: "m", Quantity: 1, WidthMm: 1, HeightMm: 1, MachineMinutes: math.NaN()}, "machineMinutes"},
		{"Margin above 100", PriceCalculationInput{MaterialID: "m", Quantity: 1, WidthMm: 1, HeightMm: 1, TargetMarginPercent: 150}, "targetMarginPercent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculatePrice(tt.input, PricingContext{})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("error %v does not name field %q", verr, tt.field)
			}
		})
	}
}

func TestCalculatePriceInfiniteAtFullMargin(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            1,
		WidthMm:             100,
		HeightMm:            100,
		MachineMinutes:      60,
		MachineHourlyCost:   10,
		TargetMarginPercent: 100,
	}

	breakdown, err := CalculatePrice(input, PricingContext{Material: Material{ID: "mat-1", UnitType: "NONE"}})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(breakdown.RecommendedPrice, 1) {
		t.Errorf("RecommendedPrice = %v, want +Inf at a 100%% target margin", breakdown.RecommendedPrice)
	}
}

func TestCalculatePriceIdempotent(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            4,
		WidthMm:             350,
		HeightMm:            200,
		WastePercent:        15,
		MachineMinutes:      22,
		MachineHourlyCost:   45,
		AddOnIDs:            []string{"grav", "rush"},
		TargetMarginPercent: 35,
	}
	ctx := PricingContext{
		Material: Material{ID: "mat-1", UnitType: UnitSheet, CostPerSheet: fptr(18), SheetWidthMm: iptr(600), SheetHeightMm: iptr(400)},
		AddOns: []AddOn{
			{ID: "grav", Name: "Engraving", CostType: AddOnPerItem, Value: 1.5},
			{ID: "rush", Name: "Rush", CostType: AddOnPercent, Value: 12},
		},
		TemplatePricing: &TemplatePricing{
			Rules: []TemplatePricingRule{
				{ID: "base", Type: RuleFixedBase, Value: 12, Priority: 1},
				{ID: "chars", Type: RulePerCharacter, Value: 0.4, Priority: 2},
			},
			Metrics: TemplatePricingMetrics{Quantity: 4, CharacterCount: 11},
		},
	}

	first, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("repeated calculation differs:\n%s\n%s", a, b)
	}
}

func TestCalculatePriceRounding(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:          "mat-1",
		Quantity:            1,
		WidthMm:             1000,
		HeightMm:            1000,
		TargetMarginPercent: 0,
	}
	ctx := PricingContext{Material: Material{ID: "mat-1", UnitType: UnitM2, CostPerM2: fptr(10.006)}}

	breakdown, err := CalculatePrice(input, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if breakdown.MaterialCost != 10.01 {
		t.Errorf("MaterialCost = %v, want 10.01", breakdown.MaterialCost)
	}
	if breakdown.TotalCost != 10.01 {
		t.Errorf("TotalCost = %v, want 10.01", breakdown.TotalCost)
	}
}
