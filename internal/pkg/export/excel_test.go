package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRenderMonthGrid(t *testing.T) {
	content, err := RenderMonthGrid(MonthGrid{
		Title: "Mall Plaza - February 2024",
		Year:  2024,
		Month: time.February,
		Rows: []GridRow{
			{Label: "Main gate #1", Cells: map[int]string{1: "P", 29: "D", 30: "ignored"}},
			{Label: "Main gate #2", Cells: map[int]string{2: "W-17"}},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	sheet := "2024-02"
	assert.Equal(t, []string{sheet}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Mall Plaza - February 2024", get("A1"))
	assert.Equal(t, "Th", get("B2"))
	assert.Equal(t, "1", get("B3"))
	assert.Equal(t, "29", get("AD3"))
	assert.Equal(t, "", get("AE3"))
	assert.Equal(t, "Main gate #1", get("A4"))
	assert.Equal(t, "P", get("B4"))
	assert.Equal(t, "D", get("AD4"))
	assert.Equal(t, "W-17", get("C5"))
}
