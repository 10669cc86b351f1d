package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"combinepulse/internal/analytics"
	"combinepulse/pkg/contracts/domain"
)

// ErrNotLoaded is returned by consumers asked to serve before a dataset exists
var ErrNotLoaded = errors.New("dataset not loaded")

// Dataset is an immutable snapshot of the drafted players and their
// position tables. A reload builds a new Dataset.
type Dataset struct {
	tables      map[domain.Position]*analytics.Table
	report      LoadReport
	drafted     int
	yearFrom    int
	yearTo      int
	fingerprint string
	loadedAt    time.Time
}

// Info describes a dataset for clients
type Info struct {
	Source      string                  `json:"source"`
	Drafted     int                     `json:"drafted"`
	YearFrom    int                     `json:"year_from"`
	YearTo      int                     `json:"year_to"`
	Fingerprint string                  `json:"fingerprint"`
	LoadedAt    time.Time               `json:"loaded_at"`
	Positions   map[domain.Position]int `json:"positions"`
	Report      LoadReport              `json:"report"`
}

// Drafted keeps the players with a team and a draft round between 1 and 7.
// Drafted rows without a usable round are counted as skipped.
func Drafted(records []domain.PlayerRecord, report *LoadReport) []domain.PlayerRecord {
	out := make([]domain.PlayerRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Drafted() {
			if report != nil {
				report.Undrafted++
			}
			continue
		}
		if rec.Round == nil || domain.ValidateRound(*rec.Round) != nil {
			if report != nil {
				report.skip(SkipInvalidRound)
			}
			continue
		}
		out = append(out, rec)
	}
	if report != nil {
		report.Kept = len(out)
	}
	return out
}

// New builds a dataset from raw records read from a source
func New(records []domain.PlayerRecord, report *LoadReport) (*Dataset, error) {
	if report == nil {
		report = newReport("memory")
	}
	if report.SkipReasons == nil {
		report.SkipReasons = make(map[string]int)
	}

	drafted := Drafted(records, report)
	tables, err := analytics.ProjectAll(drafted)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		tables:   tables,
		report:   *report,
		drafted:  len(drafted),
		loadedAt: time.Now().UTC(),
	}
	for i, rec := range drafted {
		if i == 0 || rec.Year < ds.yearFrom {
			ds.yearFrom = rec.Year
		}
		if i == 0 || rec.Year > ds.yearTo {
			ds.yearTo = rec.Year
		}
	}

	ds.fingerprint, err = fingerprint(drafted)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Load reads a source and builds a dataset from it
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	records, report, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}

	ds, err := New(records, report)
	if err != nil {
		return nil, fmt.Errorf("build dataset from %s: %w", src, err)
	}

	logger.InfoContext(ctx, "combine dataset loaded",
		slog.String("source", src.String()),
		slog.Int("rows_read", ds.report.RowsRead),
		slog.Int("drafted", ds.drafted),
		slog.Int("undrafted", ds.report.Undrafted),
		slog.Int("skipped", ds.report.Skipped),
		slog.String("fingerprint", ds.fingerprint[:12]),
		slog.Duration("duration", time.Since(start)))

	return ds, nil
}

// Table returns the table of a tracked position
func (d *Dataset) Table(pos domain.Position) (*analytics.Table, error) {
	t, ok := d.tables[pos]
	if !ok {
		return nil, &domain.InvalidSelectionError{Field: "position", Value: string(pos), Reason: "not a tracked position"}
	}
	return t, nil
}

// Fingerprint identifies the dataset contents
func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}

// YearRange returns the first and last combine year present
func (d *Dataset) YearRange() (int, int) {
	return d.yearFrom, d.yearTo
}

// Info returns the dataset metadata
func (d *Dataset) Info() Info {
	info := Info{
		Source:      d.report.Source,
		Drafted:     d.drafted,
		YearFrom:    d.yearFrom,
		YearTo:      d.yearTo,
		Fingerprint: d.fingerprint,
		LoadedAt:    d.loadedAt,
		Positions:   make(map[domain.Position]int, len(d.tables)),
		Report:      d.report,
	}
	info.Report.SkipReasons = make(map[string]int, len(d.report.SkipReasons))
	for k, v := range d.report.SkipReasons {
		info.Report.SkipReasons[k] = v
	}
	for pos, t := range d.tables {
		info.Positions[pos] = t.Len()
	}
	return info
}

func fingerprint(records []domain.PlayerRecord) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("fingerprint record %q: %w", rec.Name, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
