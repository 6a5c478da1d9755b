// Package xlsx parses supplier material price lists in XLSX format into
// catalog material rows.
package xlsx

// ColumnMapping maps zero-based column indexes to material fields. Negative
// indexes mark a column as absent.
type ColumnMapping struct {
	Name          int
	UnitType      int
	CostPerM2     int
	CostPerSheet  int
	SheetWidthMm  int
	SheetHeightMm int
	WastePercent  int
}

// DefaultColumnMapping matches the layout our suppliers agreed on:
// name, unit type, cost/m2, cost/sheet, sheet width, sheet height, waste %.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		Name:          0,
		UnitType:      1,
		CostPerM2:     2,
		CostPerSheet:  3,
		SheetWidthMm:  4,
		SheetHeightMm: 5,
		WastePercent:  6,
	}
}

// ParseOptions configures a price list parse.
type ParseOptions struct {
	ColumnMapping *ColumnMapping
	HasHeader     bool
	SheetName     string // empty means the first sheet
}

// ParsedMaterial is one usable row from a price list.
type ParsedMaterial struct {
	Name                string
	Slug                string
	UnitType            string
	CostPerM2           *float64
	CostPerSheet        *float64
	SheetWidthMm        *int
	SheetHeightMm       *int
	DefaultWastePercent *float64
	RowNumber           int
}

// ParseError describes one rejected row.
type ParseError struct {
	RowNumber int
	Field     string
	Message   string
}

// ParseResult is the outcome of parsing a price list.
type ParseResult struct {
	Materials []ParsedMaterial
	Errors    []ParseError
	TotalRows int
	ValidRows int
}
