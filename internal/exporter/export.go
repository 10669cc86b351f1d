package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"combinepulse/internal/analytics"
	"combinepulse/internal/config"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ContentTypes maps export formats to their MIME types
var ContentTypes = map[string]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ErrUnsupportedFormat is returned for formats other than csv and xlsx
type ErrUnsupportedFormat struct {
	Format string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported export format %q", e.Format)
}

// Export writes the table to w in the given format
func Export(w io.Writer, format string, t *analytics.Table) error {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return NewCSVWriter(nil).Write(w, WriteOptions{
			Headers:   Headers(t),
			Records:   Records(t),
			BOMPrefix: true,
		})
	case FormatXLSX:
		return WriteTableXLSX(w, t)
	default:
		return &ErrUnsupportedFormat{Format: format}
	}
}

// FileName is the download name of a table export
func FileName(t *analytics.Table, format string) string {
	if format == "" {
		format = FormatCSV
	}
	name := "combine_" + strings.ToLower(string(t.Position()))
	if t.Round() > 0 {
		name += fmt.Sprintf("_round%d", t.Round())
	}
	return name + "." + strings.ToLower(format)
}

// ExportFile writes the table to path, choosing the format from the extension
func ExportFile(path string, t *analytics.Table, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	if format == FormatCSV {
		return NewCSVWriter(logger).WriteFile(path, WriteOptions{
			Headers:   Headers(t),
			Records:   Records(t),
			BOMPrefix: true,
		})
	}
	if format != FormatXLSX {
		return &ErrUnsupportedFormat{Format: format}
	}

	if err := config.EnsureParentDir(path); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteTableXLSX(file, t); err != nil {
		file.Close()
		return err
	}

	logger.Info("Wrote XLSX file",
		slog.String("file_path", path),
		slog.Int("record_count", t.Len()))
	return file.Close()
}
