package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/catalog"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/database"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/quotelog"
)

// ListMaterialsResponse lists the active material catalog.
type ListMaterialsResponse struct {
	Materials []catalog.MaterialRow `json:"materials"`
	Total     int                   `json:"total"`
}

// ListMaterials returns all active materials.
// GET /internal/catalog/materials
func ListMaterials(c *gin.Context) {
	store := catalog.NewStore(database.Pool())
	materials, err := store.ListMaterials(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list materials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list materials"})
		return
	}
	c.JSON(http.StatusOK, ListMaterialsResponse{Materials: materials, Total: len(materials)})
}

// ListAddOnsResponse lists the active add-on catalog.
type ListAddOnsResponse struct {
	AddOns []catalog.AddOnRow `json:"addOns"`
	Total  int                `json:"total"`
}

// ListAddOns returns all active add-ons.
// GET /internal/catalog/add-ons
func ListAddOns(c *gin.Context) {
	store := catalog.NewStore(database.Pool())
	addOns, err := store.ListAddOns(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list add-ons")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list add-ons"})
		return
	}
	c.JSON(http.StatusOK, ListAddOnsResponse{AddOns: addOns, Total: len(addOns)})
}

// GetTemplateRules returns a template's pricing bundle.
// GET /internal/catalog/templates/:templateId/rules
func GetTemplateRules(c *gin.Context) {
	templateID := c.Param("templateId")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "templateId is required"})
		return
	}

	store := catalog.NewStore(database.Pool())
	bundle, err := store.GetTemplatePricing(c.Request.Context(), templateID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("templateId", templateID).Msg("Failed to fetch template pricing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch template pricing"})
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// ListQuotesRequest holds query parameters for the quote log listing.
type ListQuotesRequest struct {
	Limit int `form:"limit" binding:"min=0,max=500"`
}

// ListQuotesResponse lists recent quote log entries.
type ListQuotesResponse struct {
	Quotes []quotelog.Entry `json:"quotes"`
	Total  int              `json:"total"`
}

// ListQuotes returns the most recently served quotes.
// GET /internal/quotes?limit=50
func ListQuotes(c *gin.Context) {
	var req ListQuotesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quotes := quotelog.NewStore(database.Pool())
	entries, err := quotes.ListRecent(c.Request.Context(), req.Limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list quotes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes"})
		return
	}
	c.JSON(http.StatusOK, ListQuotesResponse{Quotes: entries, Total: len(entries)})
}
