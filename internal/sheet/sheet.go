// Package sheet turns inventory spreadsheet exports into typed rows.
//
// Both .xlsx workbooks and .csv files are accepted. Header names are
// matched after trimming, lowercasing and replacing spaces with
// underscores, and several aliases are recognized per column. A sheet
// missing any required column is rejected as a whole; problems confined to
// one row are reported on that row.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultSheet is the worksheet read from a workbook when none is configured.
const DefaultSheet = "Inventory"

// Canonical column names.
const (
	ColSerial      = "serial"
	ColDescription = "description"
	ColLocation    = "location"
	ColStocked     = "stocked"
	ColSold        = "sold"
	ColQuantity    = "quantity"
)

var requiredColumns = []string{ColSerial, ColDescription, ColLocation, ColStocked, ColSold, ColQuantity}

var aliases = map[string]string{
	"foreign_key":      ColSerial,
	"serial":           ColSerial,
	"serial_number":    ColSerial,
	"serial_key":       ColSerial,
	"item_desc":        ColDescription,
	"item_description": ColDescription,
	"description":      ColDescription,
	"location":         ColLocation,
	"stocked":          ColStocked,
	"sold":             ColSold,
	"quantity":         ColQuantity,
	"on_hand":          ColQuantity,
	"qty":              ColQuantity,
}

// ErrMissingColumns is matched by *MissingColumnsError.
var ErrMissingColumns = errors.New("missing required columns")

type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }

// Row is one data row. Number is the 1-based spreadsheet row, so the first
// data row is 2. Err is set when a cell could not be interpreted; the other
// fields are then best effort.
type Row struct {
	Number        int
	Serial        string
	Description   string
	Location      string
	Stocked       int
	Sold          int
	Quantity      int
	QuantityBlank bool
	Err           error
}

type Options struct {
	// Sheet names the worksheet to read from a workbook. When it is empty
	// or absent, DefaultSheet and then the first worksheet are tried.
	Sheet string
}

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported sheet format %q", filepath.Ext(name))
	}
}

// Parse reads every data row from r. Blank rows are dropped.
func Parse(r io.Reader, format Format, opts Options) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readWorkbook(r, opts.Sheet)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported sheet format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &MissingColumnsError{Columns: requiredColumns}
	}

	index, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, parseRow(i+2, record, index))
	}
	return rows, nil
}

func readWorkbook(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	name, err := pickSheet(f.GetSheetList(), sheet)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
	}
	return rows, nil
}

func pickSheet(names []string, want string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("workbook has no worksheets")
	}
	for _, candidate := range []string{want, DefaultSheet} {
		if candidate == "" {
			continue
		}
		for _, name := range names {
			if strings.EqualFold(name, candidate) {
				return name, nil
			}
		}
	}
	return names[0], nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

// NormalizeHeader trims, lowercases and replaces spaces with underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredColumns))
	for i, h := range header {
		col, ok := aliases[NormalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return index, nil
}

func parseRow(number int, record []string, index map[string]int) Row {
	cell := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{
		Number:      number,
		Serial:      cell(ColSerial),
		Description: cell(ColDescription),
		Location:    cell(ColLocation),
	}

	// Blank stocked and sold cells count as zero.
	var errs []error
	row.Stocked, _ = parseCount(cell(ColStocked), ColStocked, &errs)
	row.Sold, _ = parseCount(cell(ColSold), ColSold, &errs)
	row.Quantity, row.QuantityBlank = parseCount(cell(ColQuantity), ColQuantity, &errs)
	row.Err = errors.Join(errs...)
	return row
}

// maxCount bounds every count column.
var maxCount = decimal.NewFromInt(math.MaxInt32)

// parseCount reads a non-negative whole number no larger than maxCount.
// Integral decimals such as "10.0" are accepted.
func parseCount(s, col string, errs *[]error) (n int, blank bool) {
	if s == "" {
		return 0, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a number", col, s))
		return 0, false
	}
	if !d.IsInteger() {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a whole number", col, s))
		return 0, false
	}
	if d.IsNegative() {
		*errs = append(*errs, fmt.Errorf("%s: %q is negative", col, s))
		return 0, false
	}
	if d.GreaterThan(maxCount) {
		*errs = append(*errs, fmt.Errorf("%s: %q is too large", col, s))
		return 0, false
	}
	return int(d.IntPart()), false
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
