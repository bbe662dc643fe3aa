package report

import (
	"fmt"
	"io"

	"github.com/snapledger/snapledger/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelExporter writes monthly expense reports as xlsx workbooks.
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// WriteMonthly writes a workbook for one month of expenses. The Expenses
// sheet lists every expense with its line items; the Summary sheet holds
// per-category totals.
func (e *ExcelExporter) WriteMonthly(w io.Writer, month string, expenses []models.Expense, totals []models.CategoryTotal) error {
	f := excelize.NewFile()
	defer f.Close()

	const expenseSheet = "Expenses"
	f.SetSheetName("Sheet1", expenseSheet)

	header := []string{"Date", "Vendor", "Category", "Amount", "Item", "Qty", "Item Total"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		e.setCell(f, expenseSheet, cell, h)
	}

	row := 2
	var grandTotal float64
	for _, exp := range expenses {
		grandTotal += exp.Amount
		e.setCell(f, expenseSheet, fmt.Sprintf("A%d", row), exp.Date)
		e.setCell(f, expenseSheet, fmt.Sprintf("B%d", row), exp.Vendor)
		e.setCell(f, expenseSheet, fmt.Sprintf("C%d", row), exp.Category)
		e.setCell(f, expenseSheet, fmt.Sprintf("D%d", row), exp.Amount)

		if len(exp.Items) == 0 {
			row++
			continue
		}
		for _, item := range exp.Items {
			e.setCell(f, expenseSheet, fmt.Sprintf("E%d", row), item.Name)
			e.setCell(f, expenseSheet, fmt.Sprintf("F%d", row), item.Quantity)
			e.setCell(f, expenseSheet, fmt.Sprintf("G%d", row), item.TotalPrice)
			row++
		}
	}

	row++
	e.setCell(f, expenseSheet, fmt.Sprintf("C%d", row), "TOTAL")
	e.setCell(f, expenseSheet, fmt.Sprintf("D%d", row), grandTotal)

	summarySheet := "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	e.setCell(f, summarySheet, "A1", "Month")
	e.setCell(f, summarySheet, "B1", month)
	e.setCell(f, summarySheet, "A3", "Category")
	e.setCell(f, summarySheet, "B3", "Total")
	for i, t := range totals {
		e.setCell(f, summarySheet, fmt.Sprintf("A%d", i+4), t.Category)
		e.setCell(f, summarySheet, fmt.Sprintf("B%d", i+4), t.Total)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Monthly report generated",
		zap.String("month", month),
		zap.Int("expenses", len(expenses)))
	return nil
}

// setCell sets a cell value, logging rather than failing on cell errors
func (e *ExcelExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
