package dataset

import (
	"fmt"
	"strings"
)

// Source column names
const (
	ColPlayer    = "Player"
	ColPos       = "Pos"
	ColHt        = "Ht"
	ColWt        = "Wt"
	ColTeam      = "Team"
	ColYear      = "Year"
	ColRound     = "Round"
	ColPick      = "Pick"
	ColForty     = "Forty"
	ColShuttle   = "Shuttle"
	ColCone      = "Cone"
	ColVertical  = "Vertical"
	ColBenchReps = "BenchReps"
)

// RequiredColumns lists the columns every combine file must provide
var RequiredColumns = []string{
	ColPlayer, ColPos, ColHt, ColWt, ColTeam, ColYear, ColRound, ColPick,
	ColForty, ColShuttle, ColCone, ColVertical, ColBenchReps,
}

// MissingColumnError is returned when a source lacks required columns
type MissingColumnError struct {
	Source  string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Columns, ", "))
}

// columnIndex maps required column names to their position in a header row
type columnIndex map[string]int

// indexHeader matches header cells case-insensitively. Extra columns are
// ignored.
func indexHeader(header []string, source string) (columnIndex, error) {
	seen := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
		if _, dup := seen[name]; !dup {
			seen[name] = i
		}
	}

	idx := make(columnIndex, len(RequiredColumns))
	var missing []string
	for _, col := range RequiredColumns {
		i, ok := seen[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Source: source, Columns: missing}
	}
	return idx, nil
}

// cell returns the trimmed value of col, empty when the row is short
func (c columnIndex) cell(row []string, col string) string {
	i, ok := c[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
