package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"combinepulse/internal/infrastructure"
	"combinepulse/pkg/contracts/domain"
)

// Supported file formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Loader reads combine files into player records
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: infrastructure.WithComponent(logger, "dataset_loader")}
}

// FormatOf returns the file format implied by the path extension
func FormatOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported combine file type %q", ext)
	}
}

// ReadFile reads a CSV or XLSX file chosen by extension
func (l *Loader) ReadFile(ctx context.Context, path, sheet string) ([]domain.PlayerRecord, *LoadReport, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open combine file: %w", err)
	}
	defer file.Close()

	source := filepath.Base(path)
	if format == FormatXLSX {
		return l.ReadXLSX(ctx, file, sheet, source)
	}
	return l.ReadCSV(ctx, file, source)
}

// Source provides the raw combine records a dataset is built from
type Source interface {
	Records(ctx context.Context) ([]domain.PlayerRecord, *LoadReport, error)
	String() string
}

// FileSource reads a CSV or XLSX file on every load
type FileSource struct {
	Path   string
	Sheet  string
	Loader *Loader
}

// Records implements Source
func (s *FileSource) Records(ctx context.Context) ([]domain.PlayerRecord, *LoadReport, error) {
	loader := s.Loader
	if loader == nil {
		loader = NewLoader(nil)
	}
	return loader.ReadFile(ctx, s.Path, s.Sheet)
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}
