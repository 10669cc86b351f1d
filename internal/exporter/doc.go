// Package exporter writes position tables as CSV or XLSX.
//
// CSVWriter is the core CSV writer with optional UTF-8 BOM for Excel
// compatibility. The table functions lay a position table out with one
// column per designated test, in draft order, and leave missing results
// blank.
//
// Example usage:
//
//	table, _ := ds.Table(domain.PositionWR)
//	if err := exporter.Export(w, exporter.FormatXLSX, table.FilterRound(1)); err != nil {
//		return err
//	}
package exporter
