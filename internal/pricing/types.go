// Package pricing implements the cost and quote calculation engine.
//
// The engine is pure: callers resolve the material, add-ons, and template
// pricing bundle up front and pass them in by value. Nothing in this package
// touches the database or mutates its inputs, so it is safe to call from
// concurrent request handlers.
package pricing

// UnitType describes how a material is priced.
type UnitType string

const (
	UnitM2    UnitType = "M2"
	UnitSheet UnitType = "SHEET"
)

// AddOnCostType describes how an add-on's value is interpreted.
type AddOnCostType string

const (
	AddOnFixed   AddOnCostType = "FIXED"
	AddOnPerItem AddOnCostType = "PER_ITEM"
	AddOnPercent AddOnCostType = "PERCENT"
)

// RuleType describes how a template pricing rule computes its contribution.
type RuleType string

const (
	RuleFixedBase       RuleType = "FIXED_BASE"
	RulePerCharacter    RuleType = "PER_CHARACTER"
	RulePerCm2          RuleType = "PER_CM2"
	RulePerItem         RuleType = "PER_ITEM"
	RuleLayerMultiplier RuleType = "LAYER_MULTIPLIER"
	RuleAddOnLink       RuleType = "ADD_ON_LINK"
)

// FieldType describes the kind of a template personalization field.
type FieldType string

const (
	FieldText   FieldType = "TEXT"
	FieldNumber FieldType = "NUMBER"
	FieldSelect FieldType = "SELECT"
	FieldColor  FieldType = "COLOR"
)

// PriceCalculationInput is the caller-supplied request for a price calculation.
// It must pass Validate before any arithmetic runs.
type PriceCalculationInput struct {
	MaterialID          string   `json:"materialId"`
	Quantity            int      `json:"quantity"`
	WidthMm             int      `json:"widthMm"`
	HeightMm            int      `json:"heightMm"`
	WastePercent        float64  `json:"wastePercent"`
	MachineMinutes      float64  `json:"machineMinutes"`
	MachineHourlyCost   float64  `json:"machineHourlyCost"`
	AddOnIDs            []string `json:"addOnIds"`
	TargetMarginPercent float64  `json:"targetMarginPercent"`
}

// Material is a snapshot of a material catalog record.
// Sheet dimensions are only meaningful for SHEET materials.
type Material struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	UnitType      UnitType `json:"unitType"`
	CostPerM2     *float64 `json:"costPerM2,omitempty"`
	CostPerSheet  *float64 `json:"costPerSheet,omitempty"`
	SheetWidthMm  *int     `json:"sheetWidthMm,omitempty"`
	SheetHeightMm *int     `json:"sheetHeightMm,omitempty"`
}

// AddOn is a snapshot of an add-on catalog record.
type AddOn struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	CostType AddOnCostType `json:"costType"`
	Value    float64       `json:"value"`
}

// TemplatePricingRule is one priced rule attached to a product template.
// A rule with a nil VariantID applies to every variant; a rule with a nil
// AppliesWhen condition applies to every personalization payload.
type TemplatePricingRule struct {
	ID          string         `json:"id"`
	Type        RuleType       `json:"ruleType"`
	Value       float64        `json:"value"`
	Priority    int            `json:"priority"`
	VariantID   *string        `json:"variantId,omitempty"`
	AppliesWhen map[string]any `json:"appliesWhen,omitempty"`
}

// TemplateField is a personalization field definition on a product template.
type TemplateField struct {
	Key            string    `json:"key"`
	Type           FieldType `json:"type"`
	AffectsPricing bool      `json:"affectsPricing"`
}

// TemplatePricingMetrics are the derived quantities the rule evaluator
// consumes. AreaCm2 and LayersCount fall back to geometry-derived values
// when absent.
type TemplatePricingMetrics struct {
	Quantity       int      `json:"quantity"`
	CharacterCount int      `json:"characterCount"`
	LayersCount    *int     `json:"layersCount,omitempty"`
	AreaCm2        *float64 `json:"areaCm2,omitempty"`
}

// TemplatePricing bundles the applicable rules and metrics for the
// order-from-template flow. Rules must already be variant- and
// condition-filtered; ApplicableRules does that.
type TemplatePricing struct {
	Rules   []TemplatePricingRule  `json:"rules"`
	Metrics TemplatePricingMetrics `json:"metrics"`
}

// PricingContext carries the pre-resolved catalog records for one calculation.
type PricingContext struct {
	Material        Material         `json:"material"`
	AddOns          []AddOn          `json:"addOns"`
	TemplatePricing *TemplatePricing `json:"templatePricing,omitempty"`
}

// AppliedAddOn is one add-on cost line in the output breakdown.
type AppliedAddOn struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// TemplateLine is one rule contribution line in the output breakdown.
type TemplateLine struct {
	RuleID string  `json:"ruleId"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// PriceBreakdown is the full calculation result. All monetary fields are
// rounded to two decimals. LaborCost is the summed add-on cost; the name is
// kept for compatibility with the historical order snapshot format.
type PriceBreakdown struct {
	MaterialCost      float64        `json:"materialCost"`
	MachineCost       float64        `json:"machineCost"`
	LaborCost         float64        `json:"laborCost"`
	AddOns            []AppliedAddOn `json:"addOns"`
	MarginPercent     float64        `json:"marginPercent"`
	TotalCost         float64        `json:"totalCost"`
	RecommendedPrice  float64        `json:"recommendedPrice"`
	TemplateBasePrice *float64       `json:"templateBasePrice,omitempty"`
	TemplateLines     []TemplateLine `json:"templateLines,omitempty"`
}
