// Package excel loads a cleaned survey workbook into the survey data
// model. The workbook is the output of the upstream normalization
// pipeline: one header row of canonical column names, one row per
// respondent, derived booleans already computed. This adapter maps rows
// to respondents; it performs no column renaming or derivation.
package excel

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"switchlens/domain/core"
	"switchlens/domain/survey"
	"switchlens/ports"
)

// Required canonical columns
const (
	colUniqueID         = "UniqueID"
	colProduct          = "Product"
	colRenewalYearMonth = "RenewalYearMonth"
	colCurrentCompany   = "CurrentCompany"
	colPreviousCompany  = "PreviousCompany"
	colAgeBand          = "AgeBand"
	colRegion           = "Region"
	colPaymentType      = "PaymentType"
	colIsShopper        = "IsShopper"
	colIsSwitcher       = "IsSwitcher"
	colIsRetained       = "IsRetained"
	colIsNewToMarket    = "IsNewToMarket"
)

var requiredColumns = []string{
	colUniqueID, colProduct, colRenewalYearMonth, colCurrentCompany,
	colPreviousCompany, colAgeBand, colRegion, colPaymentType,
	colIsShopper, colIsSwitcher, colIsRetained, colIsNewToMarket,
}

// Reader loads a survey dataset from a cleaned workbook
type Reader struct {
	filePath string
	sheet    string
}

// NewReader creates a reader for the given workbook path, reading Sheet1
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath, sheet: "Sheet1"}
}

// Load reads the workbook into a Dataset. Columns beyond the required set
// are treated as optional question columns and captured per respondent.
func (r *Reader) Load(_ context.Context) (*survey.Dataset, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open survey workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: workbook needs a header row and at least one data row", core.ErrEmptyDataset)
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, core.NewColumnMissingError(col)
		}
	}

	var optional []string
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name != "" && !isRequired(name) {
			optional = append(optional, name)
		}
	}

	respondents := make([]survey.Respondent, 0, len(rows)-1)
	for _, row := range rows[1:] {
		resp := survey.Respondent{
			UniqueID:         cell(row, index[colUniqueID]),
			Product:          survey.Product(cell(row, index[colProduct])),
			RenewalYearMonth: parseInt(cell(row, index[colRenewalYearMonth])),
			CurrentCompany:   cell(row, index[colCurrentCompany]),
			PreviousCompany:  cell(row, index[colPreviousCompany]),
			AgeBand:          cell(row, index[colAgeBand]),
			Region:           cell(row, index[colRegion]),
			PaymentType:      cell(row, index[colPaymentType]),
			IsShopper:        parseBool(cell(row, index[colIsShopper])),
			IsSwitcher:       parseBool(cell(row, index[colIsSwitcher])),
			IsRetained:       parseBool(cell(row, index[colIsRetained])),
			IsNewToMarket:    parseBool(cell(row, index[colIsNewToMarket])),
		}
		if len(optional) > 0 {
			answers := make(map[string]string)
			for _, col := range optional {
				if v := cell(row, index[col]); v != "" {
					answers[col] = v
				}
			}
			if len(answers) > 0 {
				resp.Answers = answers
			}
		}
		respondents = append(respondents, resp)
	}

	log.Printf("[SurveyReader] Loaded %d respondents, %d optional columns in %.2fms",
		len(respondents), len(optional), float64(time.Since(start).Nanoseconds())/1e6)
	return survey.NewDataset(respondents, optional...), nil
}

func isRequired(name string) bool {
	for _, col := range requiredColumns {
		if col == name {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	// YYYYMM sometimes arrives as a float-formatted cell
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

var _ ports.DatasetSource = (*Reader)(nil)
