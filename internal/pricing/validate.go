package pricing

import (
	"fmt"
	"math"
	"strings"
)

// FieldError names one invalid field in a calculation input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a malformed PriceCalculationInput before any
// arithmetic runs. It lists every offending field, not just the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid pricing input: " + strings.Join(parts, "; ")
}

// Validate checks a PriceCalculationInput against the engine's contract.
// It returns nil when the input is usable, or a *ValidationError naming
// the offending fields. It never modifies the input.
func Validate(input PriceCalculationInput) error {
	var fields []FieldError

	if strings.TrimSpace(input.MaterialID) == "" {
		fields = append(fields, FieldError{"materialId", "must not be empty"})
	}
	if input.Quantity < 1 {
		fields = append(fields, FieldError{"quantity", "must be at least 1"})
	}
	if input.WidthMm < 1 {
		fields = append(fields, FieldError{"widthMm", "must be at least 1"})
	}
	if input.HeightMm < 1 {
		fields = append(fields, FieldError{"heightMm", "must be at least 1"})
	}
	if bad, msg := checkNonNegative(input.WastePercent); bad {
		fields = append(fields, FieldError{"wastePercent", msg})
	}
	if bad, msg := checkNonNegative(input.MachineMinutes); bad {
		fields = append(fields, FieldError{"machineMinutes", msg})
	}
	if bad, msg := checkNonNegative(input.MachineHourlyCost); bad {
		fields = append(fields, FieldError{"machineHourlyCost", msg})
	}
	// 100 passes validation and later divides by zero in the margin fallback;
	// the engine reproduces that historical output instead of clamping.
	switch {
	case math.IsNaN(input.TargetMarginPercent) || math.IsInf(input.TargetMarginPercent, 0):
		fields = append(fields, FieldError{"targetMarginPercent", "must be a finite number"})
	case input.TargetMarginPercent < 0 || input.TargetMarginPercent > 100:
		fields = append(fields, FieldError{"targetMarginPercent", "must be between 0 and 100"})
	}
	for i, id := range input.AddOnIDs {
		if strings.TrimSpace(id) == "" {
			fields = append(fields, FieldError{fmt.Sprintf("addOnIds[%d]", i), "must not be empty"})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkNonNegative(v float64) (bool, string) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return true, "must be a finite number"
	}
	if v < 0 {
		return true, "must not be negative"
	}
	return false, ""
}
