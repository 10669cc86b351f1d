package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"combinepulse/pkg/contracts/domain"
)

// Skip reasons recorded in a LoadReport
const (
	SkipMissingName  = "missing_name"
	SkipInvalidYear  = "invalid_year"
	SkipInvalidRound = "invalid_round"
	SkipInvalidPick  = "invalid_pick"
)

// LoadReport summarizes one read of a combine source
type LoadReport struct {
	Source      string         `json:"source"`
	RowsRead    int            `json:"rows_read"`
	Kept        int            `json:"kept"`
	Undrafted   int            `json:"undrafted"`
	Skipped     int            `json:"skipped"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
}

func newReport(source string) *LoadReport {
	return &LoadReport{Source: source, SkipReasons: make(map[string]int)}
}

func (r *LoadReport) skip(reason string) {
	if r.SkipReasons == nil {
		r.SkipReasons = make(map[string]int)
	}
	r.Skipped++
	r.SkipReasons[reason]++
}

// rowError is a recoverable problem with one source row
type rowError struct {
	line   int
	reason string
	err    error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.line, e.reason, e.err)
}

func (e *rowError) Unwrap() error {
	return e.err
}

// rowParser converts raw source rows into player records
type rowParser struct {
	cols   columnIndex
	report *LoadReport
	logger *slog.Logger
}

// add parses one row. Rows that cannot be used are counted and logged,
// never fatal.
func (p *rowParser) add(ctx context.Context, out []domain.PlayerRecord, row []string, line int) []domain.PlayerRecord {
	if isBlank(row) {
		return out
	}
	p.report.RowsRead++

	rec, err := p.parseRow(ctx, row, line)
	if err != nil {
		reason := "invalid_row"
		var re *rowError
		if errors.As(err, &re) {
			reason = re.reason
		}
		p.report.skip(reason)
		p.logger.WarnContext(ctx, "skipping combine row",
			slog.String("source", p.report.Source),
			slog.Int("line", line),
			slog.String("reason", reason),
			slog.String("error", err.Error()))
		return out
	}
	return append(out, rec)
}

func (p *rowParser) parseRow(ctx context.Context, row []string, line int) (domain.PlayerRecord, error) {
	rec := domain.PlayerRecord{
		Name:     p.cols.cell(row, ColPlayer),
		Position: strings.ToUpper(p.cols.cell(row, ColPos)),
		Team:     p.cols.cell(row, ColTeam),
	}
	if rec.Name == "" {
		return rec, &rowError{line: line, reason: SkipMissingName, err: fmt.Errorf("empty player name")}
	}

	year, err := parseInt(p.cols.cell(row, ColYear))
	if err != nil || year == nil {
		if err == nil {
			err = fmt.Errorf("empty year")
		}
		return rec, &rowError{line: line, reason: SkipInvalidYear, err: err}
	}
	rec.Year = *year

	round, err := parseInt(p.cols.cell(row, ColRound))
	if err != nil {
		if rec.Drafted() {
			return rec, &rowError{line: line, reason: SkipInvalidRound, err: err}
		}
		round = nil
	}
	rec.Round = round

	pick, err := parseInt(p.cols.cell(row, ColPick))
	if err != nil {
		if rec.Drafted() {
			return rec, &rowError{line: line, reason: SkipInvalidPick, err: err}
		}
		pick = nil
	}
	rec.Pick = pick

	rec.Height = p.measure(ctx, parseHeight, row, ColHt, line)
	rec.Weight = p.measure(ctx, parseFloat, row, ColWt, line)
	rec.Forty = p.measure(ctx, parseFloat, row, ColForty, line)
	rec.Shuttle = p.measure(ctx, parseFloat, row, ColShuttle, line)
	rec.Cone = p.measure(ctx, parseFloat, row, ColCone, line)
	rec.Vertical = p.measure(ctx, parseFloat, row, ColVertical, line)
	rec.BenchReps = p.measure(ctx, parseFloat, row, ColBenchReps, line)

	return rec, nil
}

// measure parses a nullable numeric cell. Unreadable values become null.
func (p *rowParser) measure(ctx context.Context, parse func(string) (*float64, error), row []string, col string, line int) *float64 {
	v, err := parse(p.cols.cell(row, col))
	if err != nil {
		p.logger.WarnContext(ctx, "unreadable measurement treated as missing",
			slog.String("source", p.report.Source),
			slog.Int("line", line),
			slog.String("column", col),
			slog.String("error", err.Error()))
		return nil
	}
	return v
}

func isNull(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "nan", "null", "none", "-":
		return true
	}
	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseFloat returns nil for null markers
func parseFloat(s string) (*float64, error) {
	if isNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}

// parseInt accepts whole numbers written as floats ("1.0")
func parseInt(s string) (*int, error) {
	f, err := parseFloat(s)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, fmt.Errorf("%q is not a whole number", s)
	}
	v := int(*f)
	return &v, nil
}

// parseHeight reads inches, or feet-inches such as "6-2" or 6'2"
func parseHeight(s string) (*float64, error) {
	if isNull(s) {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, `"`)
	for _, sep := range []string{"-", "'"} {
		if feet, inches, ok := strings.Cut(s, sep); ok {
			ft, err := strconv.Atoi(strings.TrimSpace(feet))
			if err != nil {
				return nil, fmt.Errorf("parse height %q: %w", s, err)
			}
			in, err := strconv.ParseFloat(strings.TrimSpace(inches), 64)
			if err != nil {
				return nil, fmt.Errorf("parse height %q: %w", s, err)
			}
			v := float64(ft)*12 + in
			return &v, nil
		}
	}
	return parseFloat(s)
}
