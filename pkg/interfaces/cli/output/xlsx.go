package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/skudiag/pkg/application/dto"
)

const (
	summarySheet        = "Summary"
	trendSheet          = "Trend"
	purchaseOrdersSheet = "Purchase Orders"
)

// GenerateWorkbook builds a workbook with a summary sheet, the windowed
// series and the vendor's purchase orders when there are any
func GenerateWorkbook(view dto.SkuDetailView) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeRows(f, summarySheet, summaryRows(view)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A20", header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style summary sheet: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size summary sheet: %w", err)
	}

	if view.Chart.Available {
		rows := [][]any{{"Day", "Inventory", "Fulfilled", "Unfulfilled", "Mean Demand"}}
		for _, p := range view.Chart.Series {
			rows = append(rows, []any{p.Day, p.Inventory, p.Fulfilled, p.Unfulfilled, p.MeanDemand})
		}
		if err := addTableSheet(f, trendSheet, rows, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	if view.Vendor.Available {
		rows := [][]any{{"PO", "Order Day", "Expected Arrival", "Arrival", "Ordered", "Received", "Delay"}}
		for _, po := range view.Vendor.PurchaseOrders {
			rows = append(rows, []any{
				po.ID, po.OrderDay, po.ExpectedArrivalDay, arrivalLabel(po.ArrivalDay),
				po.QuantityOrdered, po.QuantityReceived, po.DelayDays,
			})
		}
		if err := addTableSheet(f, purchaseOrdersSheet, rows, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func summaryRows(view dto.SkuDetailView) [][]any {
	rows := [][]any{
		{"SKU", string(view.SKU)},
		{"Simulation day", view.SimulationDay},
		{"Window start", view.Window.Start},
		{"Window end", view.Window.End},
		{"Call-out", view.CallOut},
		{view.Action.Title, view.Action.Text},
	}
	if metrics := view.Chart.Metrics; metrics != nil {
		rows = append(rows,
			[]any{"Instock rate (%)", metrics.InstockRate},
			[]any{"Lost sales", metrics.LostSales.InexactFloat64()},
			[]any{"Fulfilled", metrics.Fulfilled},
			[]any{"Unfulfilled", metrics.Unfulfilled},
		)
	} else {
		rows = append(rows, []any{view.Chart.Heading, view.Chart.Placeholder})
	}
	if view.Vendor.Available {
		rows = append(rows,
			[]any{"Vendor", string(view.Vendor.VendorID)},
			[]any{"Average delay (days)", view.Vendor.AverageDelay},
			[]any{"Average fill rate", view.Vendor.AverageFillRate},
		)
	} else {
		rows = append(rows, []any{"Vendor", view.Vendor.Placeholder})
	}
	return rows
}

func addTableSheet(f *excelize.File, sheet string, rows [][]any, header int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return fmt.Errorf("failed to address header of %s: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return fmt.Errorf("failed to style sheet %s: %w", sheet, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d of %s: %w", i+1, sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// generateXLSXOutput streams the workbook to the configured writer
func generateXLSXOutput(view dto.SkuDetailView, config Config) error {
	f, err := GenerateWorkbook(view)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(config.writer()); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
