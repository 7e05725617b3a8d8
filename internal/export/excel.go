package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"discmatch/internal/album"
)

// DefaultExcelName is the artifact name offered for Excel downloads.
const DefaultExcelName = "album_metadata_export.xlsx"

const sheetName = "Albums"

// Column widths tuned for readability; free-text columns get more room.
var excelWidths = map[string]float64{
	"Folder Name": 30,
	"Title":       30,
	"Label":       25,
	"AI Analysis": 45,
	"Cover URL":   40,
}

// ExportExcel writes all entries to a single-sheet workbook with a styled,
// frozen header row. Column set and order match the CSV export.
func ExportExcel(path string, entries []album.Entry) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for col, name := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("addressing header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("writing header cell: %w", err)
		}

		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("resolving column name: %w", err)
		}
		width := 15.0
		if w, ok := excelWidths[name]; ok {
			width = w
		}
		if err := f.SetColWidth(sheetName, colName, colName, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(csvHeader), 1)
	if err != nil {
		return fmt.Errorf("addressing header range: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := range entries {
		for col, v := range excelRow(&entries[i]) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("addressing cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("writing cell: %w", err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func excelRow(e *album.Entry) []any {
	row := []any{e.FolderName, len(e.Files), "", "", "", "", "", "", "", e.Analysis, "", ""}
	if rel := e.Selected; rel != nil {
		row[2] = rel.Title
		row[3] = rel.Year
		row[4] = strings.Join(rel.Labels, ", ")
		row[5] = rel.CatNo
		row[6] = strings.Join(rel.Genres, ", ")
		row[7] = strings.Join(rel.Styles, ", ")
		row[8] = rel.Country
		row[10] = rel.CoverImage
		row[11] = rel.ID
	}
	return row
}
