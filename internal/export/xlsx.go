package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

const (
	sheetLog     = "Log"
	sheetSummary = "Summary"
)

var summaryHeader = []string{"Employee", "Company", "Range Hours", "Days"}

// WriteWorkbook builds an XLSX workbook with the detail table on a "Log"
// sheet and, when a summary is given, a per-person "Summary" sheet. The
// header row is bold and frozen on both sheets.
func WriteWorkbook(views []ports.TimeLogView, summary []ports.PersonSummary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetLog); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeStringRow(f, sheetLog, 1, Header); err != nil {
		return nil, err
	}
	for i, v := range views {
		if err := writeStringRow(f, sheetLog, i+2, Row(v)); err != nil {
			return nil, err
		}
	}
	if err := styleSheet(f, sheetLog, len(Header)); err != nil {
		return nil, err
	}

	if summary != nil {
		if _, err := f.NewSheet(sheetSummary); err != nil {
			return nil, fmt.Errorf("add summary sheet: %w", err)
		}
		if err := writeStringRow(f, sheetSummary, 1, summaryHeader); err != nil {
			return nil, err
		}
		for i, s := range summary {
			row := []string{s.Name, s.Company, formatHours(s.Hours), fmt.Sprintf("%d", s.Days)}
			if err := writeStringRow(f, sheetSummary, i+2, row); err != nil {
				return nil, err
			}
		}
		if err := styleSheet(f, sheetSummary, len(summaryHeader)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}

func writeStringRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func styleSheet(f *excelize.File, sheet string, cols int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
