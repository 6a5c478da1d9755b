package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/catalog"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/catalog/xlsx"
	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/database"
)

var (
	importSheetName string
	importNoHeader  bool
	importDryRun    bool
)

// importCmd represents the import-materials command
var importCmd = &cobra.Command{
	Use:   "import-materials <file.xlsx>",
	Short: "Import a supplier material price list",
	Long: `Parse a supplier XLSX price list and upsert the materials into the
catalog. Rows that fail validation are reported and skipped; the rest are
written. Use --dry-run to parse and report without touching the database.`,
	Example: `  pricing-service import-materials prices.xlsx
  pricing-service import-materials prices.xlsx --sheet "Q3 2026" --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImportMaterials,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importSheetName, "sheet", "", "Worksheet name (defaults to the first sheet)")
	importCmd.Flags().BoolVar(&importNoHeader, "no-header", false, "Treat the first row as data, not a header")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without writing to the database")
}

func runImportMaterials(cmd *cobra.Command, args []string) error {
	path := args[0]

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := xlsx.Parse(content, xlsx.ParseOptions{
		SheetName: importSheetName,
		HasHeader: !importNoHeader,
	})
	if err != nil {
		return fmt.Errorf("failed to parse price list: %w", err)
	}

	logger.Info().
		Int("total_rows", result.TotalRows).
		Int("valid_rows", result.ValidRows).
		Int("errors", len(result.Errors)).
		Msg("Parsed price list")

	if len(result.Errors) > 0 {
		w := tabwriter.NewWriter(os.Stderr, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROW\tFIELD\tERROR")
		for _, pe := range result.Errors {
			fmt.Fprintf(w, "%d\t%s\t%s\n", pe.RowNumber, pe.Field, pe.Message)
		}
		w.Flush()
	}

	if importDryRun {
		logger.Info().Msg("Dry run, skipping database writes")
		return nil
	}

	if len(result.Materials) == 0 {
		return fmt.Errorf("no usable rows in %s", path)
	}

	ctx := context.Background()
	store := catalog.NewStore(database.Pool())

	imported := 0
	for _, m := range result.Materials {
		row := catalog.MaterialRow{
			ID:                  uuid.NewString(),
			Slug:                m.Slug,
			Name:                m.Name,
			UnitType:            m.UnitType,
			CostPerM2:           m.CostPerM2,
			CostPerSheet:        m.CostPerSheet,
			SheetWidthMm:        m.SheetWidthMm,
			SheetHeightMm:       m.SheetHeightMm,
			DefaultWastePercent: m.DefaultWastePercent,
			Active:              true,
			UpdatedAt:           time.Now(),
		}
		if err := store.UpsertMaterial(ctx, row); err != nil {
			logger.Error().Err(err).Str("slug", m.Slug).Int("row", m.RowNumber).Msg("Failed to upsert material")
			continue
		}
		imported++
	}

	logger.Info().Int("imported", imported).Int("skipped", len(result.Materials)-imported).Msg("Import complete")
	return nil
}
