package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"combinepulse/pkg/contracts/domain"
)

// ReadCSV reads every row of a combine CSV export. The first row must be the
// header.
func (l *Loader) ReadCSV(ctx context.Context, r io.Reader, source string) ([]domain.PlayerRecord, *LoadReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%s: empty CSV file", source)
		}
		return nil, nil, fmt.Errorf("read CSV header: %w", err)
	}

	cols, err := indexHeader(header, source)
	if err != nil {
		return nil, nil, err
	}

	report := newReport(source)
	parser := &rowParser{cols: cols, report: report, logger: l.logger}

	var records []domain.PlayerRecord
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read CSV record (line %d): %w", line, err)
		}
		records = parser.add(ctx, records, row, line)
	}

	report.Kept = len(records)
	return records, report, nil
}
