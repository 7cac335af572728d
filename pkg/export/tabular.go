package export

import (
	"fmt"
	"io"

	"github.com/borgmon/meetwatch/pkg/feed"
	"github.com/borgmon/meetwatch/pkg/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteXLSX
const SheetName = "Meetings"

// WriteCSV writes a header row followed by one row per meeting. The output
// parses back with feed.ParseCSV.
func WriteCSV(w io.Writer, meetings []models.Meeting) error {
	rows := make([][]string, 0, len(meetings)+1)
	rows = append(rows, Header)
	for _, m := range meetings {
		rows = append(rows, record(m))
	}
	_, err := io.WriteString(w, feed.WriteCSV(rows))
	return err
}

// WriteXLSX writes the meetings to a single-sheet workbook
func WriteXLSX(w io.Writer, meetings []models.Meeting) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, m := range meetings {
		if err := setRow(f, i+2, record(m)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
