package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"switchlens/domain/core"
	"switchlens/domain/survey"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "wave.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func header(extra ...interface{}) []interface{} {
	base := []interface{}{
		"UniqueID", "Product", "RenewalYearMonth", "CurrentCompany",
		"PreviousCompany", "AgeBand", "Region", "PaymentType",
		"IsShopper", "IsSwitcher", "IsRetained", "IsNewToMarket",
	}
	return append(base, extra...)
}

func TestLoadCleanWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		header("Q18", "PriceDirection"),
		{"r1", "Motor", 202501, "Alpha", "Beacon", "25-34", "North", "Annual", 1, 1, 0, 0, "Price", "Higher"},
		{"r2", "Motor", 202412, "Alpha", "Alpha", "35-49", "South", "Monthly", 0, 0, 1, 0, "", ""},
	})

	ds, err := NewReader(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.True(t, ds.Has("Q18"))
	assert.True(t, ds.Has("PriceDirection"))
	assert.False(t, ds.Has("Q30"))

	first := ds.Rows()[0]
	assert.Equal(t, "r1", first.UniqueID)
	assert.Equal(t, survey.ProductMotor, first.Product)
	assert.Equal(t, 202501, first.RenewalYearMonth)
	assert.Equal(t, "Beacon", first.PreviousCompany)
	assert.True(t, first.IsShopper)
	assert.True(t, first.IsSwitcher)
	assert.False(t, first.IsRetained)
	assert.Equal(t, "Price", first.Answer("Q18"))

	second := ds.Rows()[1]
	assert.True(t, second.IsRetained)
	assert.Equal(t, "", second.Answer("Q18"))
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"UniqueID", "Product"},
		{"r1", "Motor"},
	})

	_, err := NewReader(path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrColumnMissing)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "absent.xlsx")).Load(context.Background())
	assert.Error(t, err)
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{header()})
	_, err := NewReader(path).Load(context.Background())
	assert.Error(t, err)
}

func TestParseBoolVariants(t *testing.T) {
	assert.True(t, parseBool("1"))
	assert.True(t, parseBool("TRUE"))
	assert.True(t, parseBool("yes"))
	assert.False(t, parseBool("0"))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("no"))
}
