package dataset

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"combinepulse/pkg/contracts/domain"
)

// ReadXLSX reads a combine workbook. An empty sheet name selects the first
// sheet; the first row of the sheet is the header.
func (l *Loader) ReadXLSX(ctx context.Context, r io.Reader, sheet, source string) ([]domain.PlayerRecord, *LoadReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("%s: workbook has no sheets", source)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: sheet %q is empty", source, sheet)
	}

	cols, err := indexHeader(rows[0], source)
	if err != nil {
		return nil, nil, err
	}

	report := newReport(source)
	parser := &rowParser{cols: cols, report: report, logger: l.logger}

	var records []domain.PlayerRecord
	for i, row := range rows[1:] {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		records = parser.add(ctx, records, row, i+2)
	}

	report.Kept = len(records)
	return records, report, nil
}
