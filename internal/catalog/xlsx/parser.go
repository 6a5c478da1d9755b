package xlsx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/mariusboiti/laserfiles-calculator-sub013/internal/catalog"
)

// Parse reads a supplier price list and returns the usable material rows
// together with per-row errors. A row only fails the whole parse when the
// workbook itself is unreadable.
func Parse(content []byte, opts ParseOptions) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("Failed to close workbook")
		}
	}()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	mapping := DefaultColumnMapping()
	if opts.ColumnMapping != nil {
		mapping = *opts.ColumnMapping
	}

	result := &ParseResult{Materials: []ParsedMaterial{}, Errors: []ParseError{}}

	start := 0
	if opts.HasHeader && len(rows) > 0 {
		start = 1
	}

	for i := start; i < len(rows); i++ {
		rowNumber := i + 1
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		result.TotalRows++

		material, rowErrs := parseRow(row, rowNumber, mapping)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		result.Materials = append(result.Materials, *material)
		result.ValidRows++
	}

	return result, nil
}

func parseRow(row []string, rowNumber int, mapping ColumnMapping) (*ParsedMaterial, []ParseError) {
	var errs []ParseError

	name := strings.TrimSpace(cell(row, mapping.Name))
	if name == "" {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "name", Message: "material name is required"})
	}

	unitType := strings.ToUpper(strings.TrimSpace(cell(row, mapping.UnitType)))
	switch unitType {
	case "M2", "SHEET":
	case "":
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "unitType", Message: "unit type is required"})
	default:
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "unitType", Message: fmt.Sprintf("unknown unit type %q", unitType)})
	}

	costPerM2, err := parseOptionalDecimal(cell(row, mapping.CostPerM2))
	if err != nil {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "costPerM2", Message: err.Error()})
	}
	costPerSheet, err := parseOptionalDecimal(cell(row, mapping.CostPerSheet))
	if err != nil {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "costPerSheet", Message: err.Error()})
	}
	sheetWidth, err := parseOptionalInt(cell(row, mapping.SheetWidthMm))
	if err != nil {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "sheetWidthMm", Message: err.Error()})
	}
	sheetHeight, err := parseOptionalInt(cell(row, mapping.SheetHeightMm))
	if err != nil {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "sheetHeightMm", Message: err.Error()})
	}
	waste, err := parseOptionalDecimal(cell(row, mapping.WastePercent))
	if err != nil {
		errs = append(errs, ParseError{RowNumber: rowNumber, Field: "wastePercent", Message: err.Error()})
	}

	switch unitType {
	case "M2":
		if costPerM2 == nil {
			errs = append(errs, ParseError{RowNumber: rowNumber, Field: "costPerM2", Message: "required for M2 materials"})
		}
	case "SHEET":
		if costPerSheet == nil || sheetWidth == nil || sheetHeight == nil {
			errs = append(errs, ParseError{RowNumber: rowNumber, Field: "costPerSheet", Message: "sheet cost and dimensions required for SHEET materials"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &ParsedMaterial{
		Name:                name,
		Slug:                catalog.Slugify(name),
		UnitType:            unitType,
		CostPerM2:           costPerM2,
		CostPerSheet:        costPerSheet,
		SheetWidthMm:        sheetWidth,
		SheetHeightMm:       sheetHeight,
		DefaultWastePercent: waste,
		RowNumber:           rowNumber,
	}, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseOptionalDecimal accepts both dot and comma decimal separators since
// supplier sheets come from mixed locales.
func parseOptionalDecimal(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if v < 0 {
		return nil, fmt.Errorf("must not be negative: %q", s)
	}
	return &v, nil
}

func parseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	if v < 0 {
		return nil, fmt.Errorf("must not be negative: %q", s)
	}
	return &v, nil
}
