package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MonthGrid is a month laid out as one row per label and one column per day.
type MonthGrid struct {
	Title string
	Year  int
	Month time.Month
	Rows  []GridRow
}

// GridRow holds cell values keyed by day of month.
type GridRow struct {
	Label string
	Cells map[int]string
}

const (
	titleRow  = 1
	headerRow = 3
	firstRow  = 4
	labelCol  = 1
)

var weekdayShort = [...]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// RenderMonthGrid writes g to an in-memory xlsx workbook.
func RenderMonthGrid(g MonthGrid) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close workbook", "error", err)
		}
	}()

	sheet := fmt.Sprintf("%04d-%02d", g.Year, int(g.Month))
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	weekendStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", g.Title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}

	first := time.Date(g.Year, g.Month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	if err := setCell(f, sheet, labelCol, headerRow, "Position / Slot"); err != nil {
		return nil, err
	}
	for d := 1; d <= days; d++ {
		col := labelCol + d
		wd := first.AddDate(0, 0, d-1).Weekday()
		if err := setCell(f, sheet, col, headerRow-1, weekdayShort[wd]); err != nil {
			return nil, err
		}
		if err := setCell(f, sheet, col, headerRow, d); err != nil {
			return nil, err
		}
		style := headerStyle
		if wd == time.Saturday || wd == time.Sunday {
			style = weekendStyle
		}
		top, _ := excelize.CoordinatesToCellName(col, headerRow-1)
		bottom, _ := excelize.CoordinatesToCellName(col, headerRow)
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return nil, err
		}
	}

	for i, row := range g.Rows {
		r := firstRow + i
		if err := setCell(f, sheet, labelCol, r, row.Label); err != nil {
			return nil, err
		}
		for d, v := range row.Cells {
			if d < 1 || d > days {
				continue
			}
			if err := setCell(f, sheet, labelCol+d, r, v); err != nil {
				return nil, err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(labelCol + days)
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", lastCol, 6); err != nil {
		return nil, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      headerRow,
		TopLeftCell: "B4",
		ActivePane:  "bottomRight",
	}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}
