// Package report renders inventory views as XLSX workbooks.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryWorkbook renders an inventory snapshot, one row per site and
// item type.
func InventoryWorkbook(rows []model.InventoryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	data := make([][]any, 0, len(rows))
	for _, r := range rows {
		data = append(data, []any{
			r.SiteName, r.ItemTypeName, string(r.Category),
			r.TotalQuantity, r.AssignedQuantity, r.AvailableQuantity,
		})
	}

	if err := writeSheet(f, "Inventory",
		[]any{"Site", "Item type", "Category", "Total", "Assigned", "Available"}, data,
	); err != nil {
		return nil, err
	}
	return finish(f)
}

// MovementsWorkbook renders a metrics summary followed by the individual
// acquisitions and transfers behind it.
func MovementsWorkbook(m model.Metrics, mv ledger.Movements) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summary := [][]any{
		{"Opening balance", m.OpeningBalance},
		{"Acquisitions", m.Acquisitions},
		{"Transfers in", m.TransferIn},
		{"Transfers out", m.TransferOut},
		{"Assigned", m.Assigned},
		{"Consumed", m.Consumed},
		{"Closing balance", m.ClosingBalance},
	}
	if err := writeSheet(f, "Summary", []any{"Metric", "Quantity"}, summary); err != nil {
		return nil, err
	}

	acq := make([][]any, 0, len(mv.Acquisitions))
	for _, a := range mv.Acquisitions {
		acq = append(acq, []any{a.Date, a.SiteName, a.ItemTypeName, a.Quantity, a.OrderNumber})
	}
	if err := writeSheet(f, "Acquisitions",
		[]any{"Date", "Site", "Item type", "Quantity", "Order number"}, acq,
	); err != nil {
		return nil, err
	}

	transferHeader := []any{"Date", "From", "To", "Item type", "Quantity", "Status", "Order number"}
	for _, s := range []struct {
		name string
		list []model.Transfer
	}{
		{"Transfers in", mv.TransfersIn},
		{"Transfers out", mv.TransfersOut},
	} {
		data := make([][]any, 0, len(s.list))
		for _, t := range s.list {
			data = append(data, []any{t.Date, t.FromSiteName, t.ToSiteName, t.ItemTypeName, t.Quantity, string(t.Status), t.OrderNumber})
		}
		if err := writeSheet(f, s.name, transferHeader, data); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// finish drops the default sheet and serialises the workbook.
func finish(f *excelize.File) ([]byte, error) {
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
