package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/catalog"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/pricing"
)

func fptr(v float64) *float64 { return &v }

func TestBuildInputWasteDefaults(t *testing.T) {
	tests := []struct {
		name     string
		request  *float64
		material *float64
		expected float64
	}{
		{"Request value wins", fptr(5), fptr(10), 5},
		{"Material default when request omits", nil, fptr(10), 10},
		{"Fallback of 15 when both absent", nil, nil, 15},
		{"Explicit zero in request is respected", fptr(0), fptr(10), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CalculatePriceRequest{
				MaterialID:   "mat-1",
				Quantity:     1,
				WidthMm:      100,
				HeightMm:     100,
				WastePercent: tt.request,
			}
			material := &catalog.MaterialRow{ID: "mat-1", UnitType: "M2", DefaultWastePercent: tt.material}

			input := buildInput(req, material)
			assert.Equal(t, tt.expected, input.WastePercent)
		})
	}
}

func TestBuildContextKeepsCatalogOrder(t *testing.T) {
	material := &catalog.MaterialRow{ID: "mat-1", UnitType: "M2", CostPerM2: fptr(10)}
	addOns := []catalog.AddOnRow{
		{ID: "a", Name: "Engraving", CostType: "PER_ITEM", Value: 2},
		{ID: "b", Name: "Rush", CostType: "PERCENT", Value: 10},
	}

	pctx := buildContext(material, addOns)

	require.Len(t, pctx.AddOns, 2)
	assert.Equal(t, "a", pctx.AddOns[0].ID)
	assert.Equal(t, "b", pctx.AddOns[1].ID)
	assert.Equal(t, pricing.UnitM2, pctx.Material.UnitType)
}

func TestRespondCalculationErrorMapsValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/internal/pricing/calculate", nil)

	verr := &pricing.ValidationError{Fields: []pricing.FieldError{{Field: "quantity", Message: "must be at least 1"}}}
	respondCalculationError(c, verr)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "quantity")
}
