package services

import (
	"bytes"
	"fmt"
	"time"

	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"

	"github.com/xuri/excelize/v2"
)

const (
	sheetInventory    = "Inventory"
	sheetTransactions = "Transactions"
	sheetSummary      = "Summary"
)

var inventoryExportHeader = []string{
	"Lot ID",
	"Blood Type",
	"Component",
	"Units",
	"Location",
	"Donation Date",
	"Expiry Date",
	"Days Until Expiry",
	"Status",
	"Near Expiry",
	"Low Units",
}

var transactionExportHeader = []string{
	"Date",
	"Type",
	"Blood Type",
	"Component",
	"Units",
	"Source",
	"Destination",
}

// buildInventoryWorkbook renders lots, transactions and the stats summary into an xlsx file
func buildInventoryWorkbook(lots []stock.LotView, txs []domain.Transaction, stats stock.Stats, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetInventory)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetTransactions); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE2E2"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeHeader(f, sheetInventory, inventoryExportHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, lot := range lots {
		row := []interface{}{
			lot.ID,
			string(lot.BloodType),
			string(lot.Component),
			lot.Units,
			lot.Location,
			lot.DonationDate.Format("2006-01-02"),
			lot.ExpiryDate.Format("2006-01-02"),
			lot.DaysUntilExpiry,
			string(lot.Status),
			yesNo(lot.NearExpiry),
			yesNo(lot.LowUnits),
		}
		if err := writeRow(f, sheetInventory, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeHeader(f, sheetTransactions, transactionExportHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, tx := range txs {
		row := []interface{}{
			tx.CreatedAt.Format("2006-01-02 15:04"),
			string(tx.Type),
			string(tx.BloodType),
			string(tx.Component),
			tx.Units,
			tx.Source,
			tx.Destination,
		}
		if err := writeRow(f, sheetTransactions, i+2, row); err != nil {
			return nil, err
		}
	}

	summary := [][]interface{}{
		{"Generated At", generatedAt.Format(time.RFC3339)},
		{"Total Available Units", stats.TotalUnits},
		{"Expiring Units (7 days)", stats.ExpiringUnits},
		{"Critical Types", joinTypes(stats.CriticalTypes)},
		{},
		{"Blood Type", "Units"},
	}
	for _, tc := range stats.Distribution {
		summary = append(summary, []interface{}{string(tc.Name), tc.Value})
	}
	for i, row := range summary {
		if err := writeRow(f, sheetSummary, i+1, row); err != nil {
			return nil, err
		}
	}

	for _, sheet := range []string{sheetInventory, sheetTransactions} {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("failed to freeze panes: %w", err)
		}
		if err := f.SetColWidth(sheet, "A", "K", 18); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func joinTypes(types []domain.BloodType) string {
	if len(types) == 0 {
		return "None"
	}
	out := string(types[0])
	for _, t := range types[1:] {
		out += ", " + string(t)
	}
	return out
}
