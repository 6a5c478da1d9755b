package pricing

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func TestResolveMaterialCost(t *testing.T) {
	tests := []struct {
		name        string
		material    Material
		areaM2      float64
		expected    float64
		unpriceable bool
	}{
		{
			name:     "Per m2 material",
			material: Material{UnitType: UnitM2, CostPerM2: fptr(10)},
			areaM2:   1,
			expected: 10,
		},
		{
			name:     "Per m2 fractional area",
			material: Material{UnitType: UnitM2, CostPerM2: fptr(8)},
			areaM2:   0.25,
			expected: 2,
		},
		{
			name:        "Per m2 without cost degrades",
			material:    Material{UnitType: UnitM2},
			areaM2:      1,
			unpriceable: true,
		},
		{
			name:        "Per m2 with zero cost degrades",
			material:    Material{UnitType: UnitM2, CostPerM2: fptr(0)},
			areaM2:      1,
			unpriceable: true,
		},
		{
			name: "Sheet material half a sheet",
			material: Material{
				UnitType:      UnitSheet,
				CostPerSheet:  fptr(20),
				SheetWidthMm:  iptr(1000),
				SheetHeightMm: iptr(1000),
			},
			areaM2:   0.5,
			expected: 10,
		},
		{
			name: "Sheet material more than one sheet",
			material: Material{
				UnitType:      UnitSheet,
				CostPerSheet:  fptr(12),
				SheetWidthMm:  iptr(600),
				SheetHeightMm: iptr(400),
			},
			areaM2:   0.48,
			expected: 24,
		},
		{
			name: "Sheet material missing dimensions degrades",
			material: Material{
				UnitType:     UnitSheet,
				CostPerSheet: fptr(20),
			},
			areaM2:      0.5,
			unpriceable: true,
		},
		{
			name: "Sheet material missing cost degrades",
			material: Material{
				UnitType:      UnitSheet,
				SheetWidthMm:  iptr(1000),
				SheetHeightMm: iptr(1000),
			},
			areaM2:      0.5,
			unpriceable: true,
		},
		{
			name:        "Unknown unit type degrades",
			material:    Material{UnitType: "ROLL", CostPerM2: fptr(10)},
			areaM2:      1,
			unpriceable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resolveMaterialCost(tt.material, tt.areaM2)
			if result.unpriceable != tt.unpriceable {
				t.Fatalf("unpriceable = %v, want %v (reason %q)", result.unpriceable, tt.unpriceable, result.reason)
			}
			if tt.unpriceable {
				if result.amount != 0 {
					t.Errorf("amount = %v, want 0 for unpriceable material", result.amount)
				}
				return
			}
			if math.Abs(result.amount-tt.expected) > 1e-9 {
				t.Errorf("amount = %v, want %v", result.amount, tt.expected)
			}
		})
	}
}

func TestComputeCostsWaste(t *testing.T) {
	// 1000x1000mm at qty 1 is exactly 1 m².
	input := PriceCalculationInput{
		MaterialID: "mat-1",
		Quantity:   1,
		WidthMm:    1000,
		HeightMm:   1000,
	}
	ctx := PricingContext{Material: Material{ID: "mat-1", UnitType: UnitM2, CostPerM2: fptr(10)}}

	costs := computeCosts(input, ctx)
	if costs.materialCost != 10 {
		t.Errorf("materialCost without waste = %v, want 10", costs.materialCost)
	}

	input.WastePercent = 20
	costs = computeCosts(input, ctx)
	if costs.materialCost != 12 {
		t.Errorf("materialCost with 20%% waste = %v, want 12", costs.materialCost)
	}
}

func TestComputeCostsWasteOnDegradedMaterial(t *testing.T) {
	input := PriceCalculationInput{MaterialID: "mat-1", Quantity: 1, WidthMm: 100, HeightMm: 100, WastePercent: 50}
	ctx := PricingContext{Material: Material{ID: "mat-1", UnitType: "BOGUS"}}

	costs := computeCosts(input, ctx)
	if !costs.unpriceable {
		t.Fatal("expected unpriceable material")
	}
	if costs.materialCost != 0 {
		t.Errorf("materialCost = %v, want 0", costs.materialCost)
	}
}

func TestComputeCostsMachine(t *testing.T) {
	input := PriceCalculationInput{
		MaterialID:        "mat-1",
		Quantity:          1,
		WidthMm:           100,
		HeightMm:          100,
		MachineMinutes:    90,
		MachineHourlyCost: 40,
	}
	costs := computeCosts(input, PricingContext{Material: Material{ID: "mat-1", UnitType: UnitM2, CostPerM2: fptr(1)}})
	if costs.machineCost != 60 {
		t.Errorf("machineCost = %v, want 60", costs.machineCost)
	}
}

func TestComputeCostsAddOns(t *testing.T) {
	addOns := []AddOn{
		{ID: "fixed", Name: "Setup", CostType: AddOnFixed, Value: 7},
		{ID: "peritem", Name: "Engraving", CostType: AddOnPerItem, Value: 2},
		{ID: "percent", Name: "Rush", CostType: AddOnPercent, Value: 10},
	}

	tests := []struct {
		name          string
		selected      []string
		expectedLabor float64
		expectedIDs   []string
	}{
		{
			name:          "Fixed add-on ignores quantity",
			selected:      []string{"fixed"},
			expectedLabor: 7,
			expectedIDs:   []string{"fixed"},
		},
		{
			name:          "Per-item add-on scales with quantity",
			selected:      []string{"peritem"},
			expectedLabor: 10,
			expectedIDs:   []string{"peritem"},
		},
		{
			name:          "Percent add-on against material plus machine",
			selected:      []string{"percent"},
			expectedLabor: 10,
			expectedIDs:   []string{"percent"},
		},
		{
			name:          "All add-ons in context order regardless of selection order",
			selected:      []string{"percent", "fixed", "peritem"},
			expectedLabor: 27,
			expectedIDs:   []string{"fixed", "peritem", "percent"},
		},
		{
			name:          "No add-ons selected",
			selected:      nil,
			expectedLabor: 0,
			expectedIDs:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// materialCost 40 + machineCost 60 gives a PERCENT base of 100.
			input := PriceCalculationInput{
				MaterialID:        "mat-1",
				Quantity:          5,
				WidthMm:           2000,
				HeightMm:          2000,
				MachineMinutes:    60,
				MachineHourlyCost: 60,
				AddOnIDs:          tt.selected,
			}
			ctx := PricingContext{
				Material: Material{ID: "mat-1", UnitType: UnitM2, CostPerM2: fptr(2)},
				AddOns:   addOns,
			}

			costs := computeCosts(input, ctx)
			if math.Abs(costs.laborCost-tt.expectedLabor) > 1e-9 {
				t.Errorf("laborCost = %v, want %v", costs.laborCost, tt.expectedLabor)
			}
			if len(costs.addOns) != len(tt.expectedIDs) {
				t.Fatalf("applied add-ons = %d, want %d", len(costs.addOns), len(tt.expectedIDs))
			}
			for i, id := range tt.expectedIDs {
				if costs.addOns[i].ID != id {
					t.Errorf("addOns[%d].ID = %q, want %q", i, costs.addOns[i].ID, id)
				}
			}
		})
	}
}

func TestPercentAddOnsDoNotCompound(t *testing.T) {
	// Two 10% add-ons must each take 10% of the same base, not 10% then 10%
	// of the inflated total.
	input := PriceCalculationInput{
		MaterialID:        "mat-1",
		Quantity:          1,
		WidthMm:           1000,
		HeightMm:          1000,
		MachineMinutes:    60,
		MachineHourlyCost: 90,
		AddOnIDs:          []string{"a", "b"},
	}
	ctx := PricingContext{
		Material: Material{ID: "mat-1", UnitType: UnitM2, CostPerM2: fptr(10)},
		AddOns: []AddOn{
			{ID: "a", Name: "Rush", CostType: AddOnPercent, Value: 10},
			{ID: "b", Name: "Handling", CostType: AddOnPercent, Value: 10},
		},
	}

	costs := computeCosts(input, ctx)
	if math.Abs(costs.laborCost-20) > 1e-9 {
		t.Errorf("laborCost = %v, want 20", costs.laborCost)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{10, 10},
		{10.004, 10},
		{10.006, 10.01},
		{-1.006, -1.01},
		{0, 0},
	}
	for _, tt := range tests {
		if got := round2(tt.input); got != tt.expected {
			t.Errorf("round2(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
	if !math.IsInf(round2(math.Inf(1)), 1) {
		t.Error("round2(+Inf) should stay +Inf")
	}
	if !math.IsNaN(round2(math.NaN())) {
		t.Error("round2(NaN) should stay NaN")
	}
}
