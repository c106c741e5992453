// Package export renders transactions as spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName       = "Transactions"
)

var headers = []any{"Date", "Name", "Type", "Category", "Payment method", "Amount"}

// FileName is the attachment name for the export of p.
func FileName(p core.Period) string {
	return fmt.Sprintf("transactions_%s.xlsx", p.Key())
}

// WriteXLSX writes one row per transaction, in the given order, below a
// header row. Amounts are numeric cells.
func WriteXLSX(w io.Writer, txs []core.Transaction, customs []core.CustomCategory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, t := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			t.Date.Format("2006-01-02"),
			t.Name,
			string(t.Type),
			core.Label(t.Category, customs),
			string(t.PaymentMethod),
			t.Amount.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 12)
	f.SetColWidth(SheetName, "B", "B", 30)
	f.SetColWidth(SheetName, "C", "E", 16)
	f.SetColWidth(SheetName, "F", "F", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
