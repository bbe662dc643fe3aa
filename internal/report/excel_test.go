package report

import (
	"bytes"
	"testing"

	"github.com/snapledger/snapledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestWriteMonthly(t *testing.T) {
	exporter := NewExcelExporter(zap.NewNop())

	expenses := []models.Expense{
		{
			Date: "2026-08-01", Vendor: "JOE'S CAFE", Category: "Dining", Amount: 11.98,
			Items: []models.LineItem{
				{Name: "APPLES", Quantity: 2, TotalPrice: 7.98},
				{Name: "COFFEE", Quantity: 1, TotalPrice: 4.00},
			},
		},
		{Date: "2026-08-10", Vendor: "Metro", Category: "Transport", Amount: 3.50},
	}
	totals := []models.CategoryTotal{
		{Category: "Dining", Total: 11.98},
		{Category: "Transport", Total: 3.50},
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteMonthly(&buf, "2026-08", expenses, totals))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	vendor, err := f.GetCellValue("Expenses", "B2")
	require.NoError(t, err)
	assert.Equal(t, "JOE'S CAFE", vendor)

	item, err := f.GetCellValue("Expenses", "E3")
	require.NoError(t, err)
	assert.Equal(t, "COFFEE", item)

	month, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08", month)

	category, err := f.GetCellValue("Summary", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Dining", category)
}

func TestWriteMonthly_Empty(t *testing.T) {
	exporter := NewExcelExporter(zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteMonthly(&buf, "2026-08", nil, nil))
	assert.NotZero(t, buf.Len())
}
