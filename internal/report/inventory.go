package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"givelife/pkg/domain"
	"givelife/pkg/inventory"
)

const (
	totalsSheet    = "Totals"
	hospitalsSheet = "Hospitals"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryWorkbook renders an aggregate as an XLSX workbook with a totals
// sheet in canonical blood-type order and one row per requested hospital.
// names maps hospital ids to display names; unknown ids fall back to the id.
func InventoryWorkbook(summary inventory.Summary, names map[string]string, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(totalsSheet)
	if err != nil {
		return nil, fmt.Errorf("create totals sheet: %w", err)
	}
	if _, err := f.NewSheet(hospitalsSheet); err != nil {
		return nil, fmt.Errorf("create hospitals sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE2E2"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeTotals(f, summary, generatedAt, header); err != nil {
		return nil, err
	}
	if err := writeHospitals(f, summary, names, header); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTotals(f *excelize.File, summary inventory.Summary, generatedAt time.Time, header int) error {
	rows := [][]any{{"Blood Type", "Units Available"}}
	for _, e := range summary.Totals.Entries() {
		rows = append(rows, []any{string(e.BloodType), e.Units})
	}
	rows = append(rows,
		[]any{"Total", summary.Totals.Total()},
		[]any{},
		[]any{"Hospitals included", fmt.Sprintf("%d of %d", summary.Included, summary.Requested)},
		[]any{"Generated at", generatedAt.UTC().Format(time.RFC3339)},
	)
	if err := writeRows(f, totalsSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(totalsSheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("style totals header: %w", err)
	}
	return f.SetColWidth(totalsSheet, "A", "B", 20)
}

func writeHospitals(f *excelize.File, summary inventory.Summary, names map[string]string, header int) error {
	head := []any{"Hospital ID", "Hospital", "Status"}
	for _, bt := range domain.BloodTypes {
		head = append(head, string(bt))
	}
	head = append(head, "Total", "Skipped Rows", "Error")
	rows := [][]any{head}

	for _, h := range summary.Hospitals {
		name := names[h.HospitalID]
		if name == "" {
			name = h.HospitalID
		}
		status := "included"
		if !h.OK() {
			status = "failed"
		}
		row := []any{h.HospitalID, name, status}
		for _, bt := range domain.BloodTypes {
			row = append(row, h.Totals.Get(bt))
		}
		row = append(row, h.Totals.Total(), h.Skipped, h.Error)
		rows = append(rows, row)
	}
	if err := writeRows(f, hospitalsSheet, rows); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(head), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(hospitalsSheet, "A1", last, header); err != nil {
		return fmt.Errorf("style hospitals header: %w", err)
	}
	if err := f.SetColWidth(hospitalsSheet, "A", "B", 24); err != nil {
		return err
	}
	return f.SetPanes(hospitalsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
