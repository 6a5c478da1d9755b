package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/catalog"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/database"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/pricing"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/quotelog"
)

// CalculatePriceRequest is the body of the generic order pricing endpoint.
// WastePercent is optional; when absent the material's default (or 15) is
// used.
type CalculatePriceRequest struct {
	MaterialID          string   `json:"materialId" binding:"required"`
	Quantity            int      `json:"quantity" binding:"required"`
	WidthMm             int      `json:"widthMm" binding:"required"`
	HeightMm            int      `json:"heightMm" binding:"required"`
	WastePercent        *float64 `json:"wastePercent"`
	MachineMinutes      float64  `json:"machineMinutes"`
	MachineHourlyCost   float64  `json:"machineHourlyCost"`
	AddOnIDs            []string `json:"addOnIds"`
	TargetMarginPercent float64  `json:"targetMarginPercent"`
}

// TemplateQuoteRequest is the body of the order-from-template endpoint.
// Personalization carries the customer's field values; AreaCm2 lets design
// tools report the actual cut area instead of the bounding-box fallback.
type TemplateQuoteRequest struct {
	CalculatePriceRequest
	TemplateID      string         `json:"templateId" binding:"required"`
	VariantID       *string        `json:"variantId"`
	Personalization map[string]any `json:"personalization"`
	AreaCm2         *float64       `json:"areaCm2"`
}

// CalculatePriceResponse wraps the breakdown with the quote log id so callers
// can reference the quote later.
type CalculatePriceResponse struct {
	QuoteID   string                 `json:"quoteId,omitempty"`
	Breakdown pricing.PriceBreakdown `json:"breakdown"`
}

// CalculatePrice prices a one-off order item.
// POST /internal/pricing/calculate
func CalculatePrice(c *gin.Context) {
	var req CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	store := catalog.NewStore(database.Pool())

	var material *catalog.MaterialRow
	var addOns []catalog.AddOnRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		material, err = store.GetMaterial(gctx, req.MaterialID)
		return err
	})
	g.Go(func() error {
		var err error
		addOns, err = store.GetAddOns(gctx, req.AddOnIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		respondResolutionError(c, err)
		return
	}

	input := buildInput(req, material)
	pctx := buildContext(material, addOns)

	breakdown, err := pricing.CalculatePrice(input, pctx)
	if err != nil {
		respondCalculationError(c, err)
		return
	}

	c.JSON(http.StatusOK, CalculatePriceResponse{
		QuoteID:   recordQuote(c, req.MaterialID, nil, req.Quantity, breakdown),
		Breakdown: breakdown,
	})
}

// TemplateQuote prices an order item created from a product template. When
// the template carries applicable pricing rules, the rule-driven base price
// overrides the margin fallback.
// POST /internal/pricing/template-quote
func TemplateQuote(c *gin.Context) {
	var req TemplateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	store := catalog.NewStore(database.Pool())

	var material *catalog.MaterialRow
	var addOns []catalog.AddOnRow
	var bundle *catalog.TemplatePricingBundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		material, err = store.GetMaterial(gctx, req.MaterialID)
		return err
	})
	g.Go(func() error {
		var err error
		addOns, err = store.GetAddOns(gctx, req.AddOnIDs)
		return err
	})
	g.Go(func() error {
		var err error
		bundle, err = store.GetTemplatePricing(gctx, req.TemplateID)
		return err
	})
	if err := g.Wait(); err != nil {
		respondResolutionError(c, err)
		return
	}

	rules, fields, err := bundle.Snapshot()
	if err != nil {
		log.Error().Err(err).Str("templateId", req.TemplateID).Msg("Corrupt pricing rule condition")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load template pricing rules"})
		return
	}

	applicable := pricing.ApplicableRules(rules, req.VariantID, req.Personalization)
	metrics := pricing.DeriveMetrics(fields, req.Personalization, req.Quantity, bundle.Template.LayersCount)
	metrics.AreaCm2 = req.AreaCm2

	input := buildInput(req.CalculatePriceRequest, material)
	pctx := buildContext(material, addOns)
	pctx.TemplatePricing = &pricing.TemplatePricing{Rules: applicable, Metrics: metrics}

	breakdown, err := pricing.CalculatePrice(input, pctx)
	if err != nil {
		respondCalculationError(c, err)
		return
	}

	c.JSON(http.StatusOK, CalculatePriceResponse{
		QuoteID:   recordQuote(c, req.MaterialID, &req.TemplateID, req.Quantity, breakdown),
		Breakdown: breakdown,
	})
}

func buildInput(req CalculatePriceRequest, material *catalog.MaterialRow) pricing.PriceCalculationInput {
	waste := 15.0
	if material.DefaultWastePercent != nil {
		waste = *material.DefaultWastePercent
	}
	if req.WastePercent != nil {
		waste = *req.WastePercent
	}
	return pricing.PriceCalculationInput{
		MaterialID:          req.MaterialID,
		Quantity:            req.Quantity,
		WidthMm:             req.WidthMm,
		HeightMm:            req.HeightMm,
		WastePercent:        waste,
		MachineMinutes:      req.MachineMinutes,
		MachineHourlyCost:   req.MachineHourlyCost,
		AddOnIDs:            req.AddOnIDs,
		TargetMarginPercent: req.TargetMarginPercent,
	}
}

func buildContext(material *catalog.MaterialRow, addOns []catalog.AddOnRow) pricing.PricingContext {
	pctx := pricing.PricingContext{Material: material.Snapshot(), AddOns: make([]pricing.AddOn, 0, len(addOns))}
	for _, a := range addOns {
		pctx.AddOns = append(pctx.AddOns, a.Snapshot())
	}
	return pctx
}

// recordQuote logs the served quote best-effort; a failed insert never fails
// the pricing request.
func recordQuote(c *gin.Context, materialID string, templateID *string, quantity int, breakdown pricing.PriceBreakdown) string {
	quotes := quotelog.NewStore(database.Pool())
	id, err := quotes.Record(c.Request.Context(), materialID, templateID, quantity, breakdown)
	if err != nil {
		log.Warn().Err(err).Str("materialId", materialID).Msg("Failed to record quote")
		return ""
	}
	return id
}

func respondResolutionError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Error().Err(err).Msg("Failed to resolve pricing context")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve pricing context"})
}

func respondCalculationError(c *gin.Context, err error) {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}
	log.Error().Err(err).Msg("Price calculation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Price calculation failed"})
}
