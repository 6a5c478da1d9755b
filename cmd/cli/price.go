package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/pricing"
)

var (
	priceContextFile string
	priceQuantity    int
	priceWidthMm     int
	priceHeightMm    int
	priceWaste       float64
	priceMachineMin  float64
	priceMachineRate float64
	priceMargin      float64
	priceAddOnIDs    []string
)

// priceCmd represents the price command
var priceCmd = &cobra.Command{
	Use:   "price <context-file>",
	Short: "Compute a price breakdown offline",
	Long: `Compute a cost and price breakdown without a database connection.
The context file is a JSON document holding the resolved material, add-ons,
and optional template pricing bundle, in the same shape the HTTP handlers
resolve from the catalog. Job parameters come from flags.`,
	Example: `  pricing-service price context.json --quantity 10 --width 100 --height 50
  pricing-service price context.json --quantity 1 --width 300 --height 200 --machine-minutes 12 --machine-rate 45`,
	Args: cobra.ExactArgs(1),
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().IntVar(&priceQuantity, "quantity", 1, "Number of pieces")
	priceCmd.Flags().IntVar(&priceWidthMm, "width", 0, "Piece width in millimeters")
	priceCmd.Flags().IntVar(&priceHeightMm, "height", 0, "Piece height in millimeters")
	priceCmd.Flags().Float64Var(&priceWaste, "waste", 15, "Waste percentage")
	priceCmd.Flags().Float64Var(&priceMachineMin, "machine-minutes", 0, "Machine time in minutes")
	priceCmd.Flags().Float64Var(&priceMachineRate, "machine-rate", 0, "Machine hourly cost")
	priceCmd.Flags().Float64Var(&priceMargin, "margin", 0, "Target margin percentage")
	priceCmd.Flags().StringSliceVar(&priceAddOnIDs, "add-ons", nil, "Add-on IDs to apply (must exist in the context file)")
}

func runPrice(cmd *cobra.Command, args []string) error {
	priceContextFile = args[0]

	data, err := os.ReadFile(priceContextFile)
	if err != nil {
		return fmt.Errorf("failed to read context file: %w", err)
	}

	var pctx pricing.PricingContext
	if err := json.Unmarshal(data, &pctx); err != nil {
		return fmt.Errorf("failed to parse context file: %w", err)
	}

	input := pricing.PriceCalculationInput{
		MaterialID:          pctx.Material.ID,
		Quantity:            priceQuantity,
		WidthMm:             priceWidthMm,
		HeightMm:            priceHeightMm,
		WastePercent:        priceWaste,
		MachineMinutes:      priceMachineMin,
		MachineHourlyCost:   priceMachineRate,
		AddOnIDs:            priceAddOnIDs,
		TargetMarginPercent: priceMargin,
	}

	breakdown, err := pricing.CalculatePrice(input, pctx)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}

	out, err := json.MarshalIndent(breakdown, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	fmt.Println(string(out))

	return nil
}
