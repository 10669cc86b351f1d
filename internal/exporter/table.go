package exporter

import (
	"strconv"

	"combinepulse/internal/analytics"
)

// Fixed columns around the designated tests
const (
	ColumnPlayer = "Player"
	ColumnHeight = "Ht"
	ColumnWeight = "Wt"
	ColumnYear   = "Year"
	ColumnRound  = "Round"
	ColumnPick   = "Pick"
)

// Headers returns the column names of a position table export
func Headers(t *analytics.Table) []string {
	headers := []string{ColumnPlayer, ColumnHeight, ColumnWeight}
	for _, test := range t.Tests() {
		headers = append(headers, string(test))
	}
	return append(headers, ColumnYear, ColumnRound, ColumnPick)
}

// Records lays the table rows out in draft order, matching Headers
func Records(t *analytics.Table) [][]string {
	rows := t.SortedByDraftOrder().Rows()
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{r.Name, formatOptional(r.Height), formatOptional(r.Weight)}
		for _, v := range r.Tests {
			record = append(record, formatOptional(v))
		}
		record = append(record, strconv.Itoa(r.Year), strconv.Itoa(r.Round), formatOptionalInt(r.Pick))
		records = append(records, record)
	}
	return records
}
