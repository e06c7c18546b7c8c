// Package tabular reads .xlsx and .csv files into the observation table the
// pipeline consumes, resolving the outcome and group columns by header name.
package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"effectbin/domain/effectsize"
	"effectbin/internal"
	"effectbin/internal/errors"
)

// Reader loads a two-column observation table from an Excel or CSV file.
type Reader struct {
	filePath      string
	fileType      string // "xlsx" or "csv"
	outcomeColumn string
	groupColumn   string
	log           *internal.Logger
}

// NewReader builds a reader for the given file; the extension selects the
// format (.csv, otherwise Excel).
func NewReader(filePath, outcomeColumn, groupColumn string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{
		filePath:      filePath,
		fileType:      fileType,
		outcomeColumn: outcomeColumn,
		groupColumn:   groupColumn,
		log:           internal.DefaultLogger,
	}
}

// Read loads the file and returns the observation table. Blank or
// non-numeric outcome cells become missing values (NaN); rows shorter than
// either column are skipped.
func (r *Reader) Read() (effectsize.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.Newf(errors.CodeInvalidInput,
			"%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.MalformedInput("input file must have a header row and at least one data row")
	}

	return r.processRows(rows)
}

func (r *Reader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.log.Debug("[tabular] read %d rows from sheet %s", len(rows), sheet)
	return rows, nil
}

func (r *Reader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.log.Debug("[tabular] read %d rows from CSV", len(rows))
	return rows, nil
}

// processRows resolves the two columns from the header row and coerces the
// data rows into observations.
func (r *Reader) processRows(rows [][]string) (effectsize.Table, error) {
	header := rows[0]
	outcomeIdx, groupIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case r.outcomeColumn:
			outcomeIdx = i
		case r.groupColumn:
			groupIdx = i
		}
	}
	if outcomeIdx < 0 {
		return nil, errors.Newf(errors.CodeMalformedInput,
			"outcome column %q not found in header", r.outcomeColumn)
	}
	if groupIdx < 0 {
		return nil, errors.Newf(errors.CodeMalformedInput,
			"group column %q not found in header", r.groupColumn)
	}

	table := make(effectsize.Table, 0, len(rows)-1)
	nonNumeric := 0
	for _, row := range rows[1:] {
		if outcomeIdx >= len(row) || groupIdx >= len(row) {
			continue
		}
		outcome, ok := parseOutcome(row[outcomeIdx])
		if !ok {
			nonNumeric++
		}
		table = append(table, effectsize.Observation{
			Outcome: outcome,
			Group:   strings.TrimSpace(row[groupIdx]),
		})
	}

	// A column where nothing parses is mislabeled, not sparsely missing.
	if len(table) > 0 && nonNumeric == len(table) {
		return nil, errors.Newf(errors.CodeMalformedInput,
			"outcome column %q has no numeric values", r.outcomeColumn)
	}
	if nonNumeric > 0 {
		r.log.Warn("[tabular] %d of %d outcome cells were blank or non-numeric, treated as missing",
			nonNumeric, len(table))
	}
	r.log.Info("[tabular] loaded %d observations from %s", len(table), r.filePath)
	return table, nil
}

// parseOutcome coerces a cell into an outcome value. Blank and unparseable
// cells become NaN, the pipeline's missing marker.
func parseOutcome(cell string) (float64, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}
