package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WorkbookSheet is the sheet name used in the generated workbook.
const WorkbookSheet = "CFDI"

// WorkbookPath returns {dir}/{name of dir}.xlsx.
func WorkbookPath(dir string) (string, error) {
	return siblingPath(dir, ".xlsx")
}

// WriteWorkbook saves the table as an .xlsx file. Text cells are strings and
// amounts are numeric cells with a two-decimal format.
func WriteWorkbook(path string, t *Table) error {
	const op = "WriteWorkbook"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WorkbookSheet); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("%s: header style: %w", op, err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("%s: money style: %w", op, err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%s: totals style: %w", op, err)
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(WorkbookSheet, "A1", &header); err != nil {
		return fmt.Errorf("%s: header: %w", op, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err := f.SetCellStyle(WorkbookSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s: header style: %w", op, err)
	}

	textColumns := len(t.Header) - MoneyColumns
	rows := append(append([][]string{}, t.Rows...), t.Totals)
	for r, row := range rows {
		rowNum := r + 2
		style := moneyStyle
		if r == len(rows)-1 {
			style = totalStyle
		}

		for c := 0; c < textColumns; c++ {
			if row[c] == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			if err := f.SetCellStr(WorkbookSheet, cell, row[c]); err != nil {
				return fmt.Errorf("%s: cell %s: %w", op, cell, err)
			}
		}

		for i, amount := range t.Amounts[r] {
			cell, _ := excelize.CoordinatesToCellName(textColumns+i+1, rowNum)
			if err := f.SetCellFloat(WorkbookSheet, cell, amount.Round(2).InexactFloat64(), 2, 64); err != nil {
				return fmt.Errorf("%s: cell %s: %w", op, cell, err)
			}
			if err := f.SetCellStyle(WorkbookSheet, cell, cell, style); err != nil {
				return fmt.Errorf("%s: cell %s: %w", op, cell, err)
			}
		}
	}

	if err := f.SetColWidth(WorkbookSheet, "A", "B", 38); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: save %s: %w", op, path, err)
	}
	return nil
}
