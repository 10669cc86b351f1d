package analytics

import (
	"sort"
	"strings"

	"combinepulse/pkg/contracts/domain"
)

// Row is one player of a position table. Tests follow the position's
// designated test order.
type Row struct {
	Name   string
	Height *float64
	Weight *float64
	Tests  [domain.DesignatedTestCount]*float64
	Year   int
	Round  int
	Pick   *int
}

// Test returns the row's result for the i-th designated test
func (r Row) Test(i int) *float64 {
	if i < 0 || i >= len(r.Tests) {
		return nil
	}
	return r.Tests[i]
}

// Complete reports whether every projected column holds a value
func (r Row) Complete() bool {
	if strings.TrimSpace(r.Name) == "" || r.Height == nil || r.Weight == nil || r.Pick == nil {
		return false
	}
	for _, v := range r.Tests {
		if v == nil {
			return false
		}
	}
	return true
}

func (r Row) clone() Row {
	out := r
	out.Height = cloneFloat(r.Height)
	out.Weight = cloneFloat(r.Weight)
	for i, v := range r.Tests {
		out.Tests[i] = cloneFloat(v)
	}
	if r.Pick != nil {
		out.Pick = domain.Int(*r.Pick)
	}
	return out
}

// Table is the immutable projection of one position. Methods that narrow or
// reorder the table return a new Table.
type Table struct {
	position domain.Position
	tests    [domain.DesignatedTestCount]domain.Test
	round    int // 0 when not filtered
	rows     []Row
}

// Project builds the position table from drafted player records. Every
// record of the position is kept, including rows with missing results.
func Project(records []domain.PlayerRecord, pos domain.Position) (*Table, error) {
	if !pos.Valid() {
		return nil, &domain.InvalidSelectionError{Field: "position", Value: string(pos), Reason: "not a tracked position"}
	}

	t := &Table{position: pos}
	var accessors [domain.DesignatedTestCount]domain.Accessor
	for i, test := range pos.Tests() {
		acc, err := test.Accessor()
		if err != nil {
			return nil, err
		}
		t.tests[i] = test
		accessors[i] = acc
	}

	for _, rec := range records {
		if !strings.EqualFold(strings.TrimSpace(rec.Position), string(pos)) {
			continue
		}
		row := Row{
			Name:   rec.Name,
			Height: cloneFloat(rec.Height),
			Weight: cloneFloat(rec.Weight),
			Year:   rec.Year,
		}
		for i, acc := range accessors {
			row.Tests[i] = cloneFloat(acc(rec))
		}
		if rec.Round != nil {
			row.Round = *rec.Round
		}
		if rec.Pick != nil {
			row.Pick = domain.Int(*rec.Pick)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// ProjectAll builds the table of every tracked position
func ProjectAll(records []domain.PlayerRecord) (map[domain.Position]*Table, error) {
	tables := make(map[domain.Position]*Table, len(domain.Positions()))
	for _, pos := range domain.Positions() {
		t, err := Project(records, pos)
		if err != nil {
			return nil, err
		}
		tables[pos] = t
	}
	return tables, nil
}

// Position returns the table's position
func (t *Table) Position() domain.Position {
	return t.position
}

// Tests returns the designated tests in column order
func (t *Table) Tests() []domain.Test {
	return append([]domain.Test(nil), t.tests[:]...)
}

// Round returns the round the table was filtered to, 0 if unfiltered
func (t *Table) Round() int {
	return t.round
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the table rows
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Column resolves a test to its column index. Tests that are not designated
// for the position are rejected.
func (t *Table) Column(test domain.Test) (int, error) {
	if err := domain.ValidateSelection(t.position, test); err != nil {
		return 0, err
	}
	for i, dt := range t.tests {
		if dt == test {
			return i, nil
		}
	}
	return 0, &domain.InvalidSelectionError{Field: "test", Value: string(test), Reason: "not projected"}
}

// Values returns the non-null results of a test in row order
func (t *Table) Values(test domain.Test) ([]float64, error) {
	col, err := t.Column(test)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(t.rows))
	for _, r := range t.rows {
		if v := r.Tests[col]; v != nil {
			values = append(values, *v)
		}
	}
	return values, nil
}

// FilterRound returns the rows drafted in the given round
func (t *Table) FilterRound(round int) *Table {
	out := &Table{position: t.position, tests: t.tests, round: round}
	for _, r := range t.rows {
		if r.Round == round {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// SortedByDraftOrder returns the rows ordered by round then pick. Rows
// without a pick sort last within their round.
func (t *Table) SortedByDraftOrder() *Table {
	out := &Table{position: t.position, tests: t.tests, round: t.round}
	out.rows = append([]Row(nil), t.rows...)
	sort.SliceStable(out.rows, func(i, j int) bool {
		a, b := out.rows[i], out.rows[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		switch {
		case a.Pick == nil:
			return false
		case b.Pick == nil:
			return true
		default:
			return *a.Pick < *b.Pick
		}
	})
	return out
}

// Rounds returns the distinct rounds present, ascending
func (t *Table) Rounds() []int {
	seen := make(map[int]bool)
	var rounds []int
	for _, r := range t.rows {
		if !seen[r.Round] {
			seen[r.Round] = true
			rounds = append(rounds, r.Round)
		}
	}
	sort.Ints(rounds)
	return rounds
}

func (t *Table) emptyError(op string, test domain.Test) error {
	return &domain.EmptyAggregateError{Position: t.position, Test: test, Round: t.round, Op: op}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v)
}
