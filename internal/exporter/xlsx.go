package exporter

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"combinepulse/internal/analytics"
	"combinepulse/pkg/contracts/domain"
)

const summarySheet = "Summary"

// SheetName names the data sheet of a table export
func SheetName(t *analytics.Table) string {
	if t.Round() > 0 {
		return fmt.Sprintf("%s Round %d", t.Position(), t.Round())
	}
	return string(t.Position())
}

// WriteTableXLSX writes the table and a per-test summary sheet as a workbook
func WriteTableXLSX(w io.Writer, t *analytics.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(t)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headers := Headers(t)
	if err := writeRow(f, sheet, 1, toCells(headers)); err != nil {
		return err
	}
	for i, r := range t.SortedByDraftOrder().Rows() {
		cells := []interface{}{r.Name, optional(r.Height), optional(r.Weight)}
		for _, v := range r.Tests {
			cells = append(cells, optional(v))
		}
		cells = append(cells, r.Year, r.Round, optionalInt(r.Pick))
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), t.Len()+1)
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return fmt.Errorf("add filter: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}

	if err := writeSummarySheet(f, t, header); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeSummarySheet adds the four statistics of each designated test. Tests
// without values get a zero count and blank statistics.
func writeSummarySheet(f *excelize.File, t *analytics.Table, headerStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}

	if err := writeRow(f, summarySheet, 1, []interface{}{"Test", "Count", "Minimum", "Maximum", "Average", "Median"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}

	for i, test := range t.Tests() {
		s, err := analytics.Summarize(t, test)
		cells := []interface{}{string(test), 0}
		switch {
		case errors.Is(err, domain.ErrEmptyAggregate):
		case err != nil:
			return err
		default:
			cells = []interface{}{string(test), s.Count, s.Min, s.Max, s.Mean, s.Median}
		}
		if err := writeRow(f, summarySheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
