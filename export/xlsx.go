package export

import (
	"io"

	"github.com/poiesic/lorekeeper/core"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds exported entries.
const SheetName = "Entries"

var xlsxHeaders = []string{"Name", "Key", "Content", "Comment", "Priority", "Enabled"}

// WriteXLSX writes entries as a single-sheet workbook with one row per entry.
func WriteXLSX(w io.Writer, entries []core.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of leaving an empty Sheet1 behind
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(SheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	for i, e := range entries {
		row := i + 2
		for col, v := range []any{e.Name, e.Key, e.Content, e.Comment, e.Priority, e.Enabled} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 24) // name
	_ = f.SetColWidth(SheetName, "B", "B", 28) // key
	_ = f.SetColWidth(SheetName, "C", "C", 80) // content
	_ = f.SetColWidth(SheetName, "D", "D", 24) // comment
	_ = f.SetColWidth(SheetName, "E", "F", 10)
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	_, err = f.WriteTo(w)
	return err
}
