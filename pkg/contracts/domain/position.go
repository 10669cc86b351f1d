package domain

import (
	"strings"
)

// Position is one of the draft positions the dashboard tracks
type Position string

const (
	PositionQB  Position = "QB"
	PositionDT  Position = "DT"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionOLB Position = "OLB"
)

// DesignatedTestCount is the number of combine tests tracked per position
const DesignatedTestCount = 3

type positionInfo struct {
	displayName string
	tests       [DesignatedTestCount]Test
}

// positions maps every tracked position to its display name and designated
// tests. The test order is the projection order of the position table.
var positions = map[Position]positionInfo{
	PositionQB:  {"Quarterback", [DesignatedTestCount]Test{TestForty, TestShuttle, TestBenchReps}},
	PositionDT:  {"Defensive Tackle", [DesignatedTestCount]Test{TestForty, TestCone, TestBenchReps}},
	PositionRB:  {"Running Back", [DesignatedTestCount]Test{TestForty, TestShuttle, TestCone}},
	PositionWR:  {"Wide Receiver", [DesignatedTestCount]Test{TestForty, TestShuttle, TestVertical}},
	PositionOLB: {"Outside Line Backer", [DesignatedTestCount]Test{TestVertical, TestShuttle, TestCone}},
}

var positionOrder = []Position{PositionQB, PositionDT, PositionRB, PositionWR, PositionOLB}

// Positions returns the tracked positions in display order
func Positions() []Position {
	out := make([]Position, len(positionOrder))
	copy(out, positionOrder)
	return out
}

// Valid reports whether p is a tracked position
func (p Position) Valid() bool {
	_, ok := positions[p]
	return ok
}

// DisplayName returns the human readable name, e.g. "Wide Receiver"
func (p Position) DisplayName() string {
	if info, ok := positions[p]; ok {
		return info.displayName
	}
	return string(p)
}

// Plural returns the display name in plural form as used in report sentences
func (p Position) Plural() string {
	return p.DisplayName() + "s"
}

// Tests returns the designated tests of the position in projection order
func (p Position) Tests() []Test {
	info, ok := positions[p]
	if !ok {
		return nil
	}
	return append([]Test(nil), info.tests[:]...)
}

// TestIndex returns the projection index of t for the position
func (p Position) TestIndex(t Test) (int, bool) {
	info, ok := positions[p]
	if !ok {
		return 0, false
	}
	for i, dt := range info.tests {
		if dt == t {
			return i, true
		}
	}
	return 0, false
}

// HasTest reports whether t is one of the position's designated tests
func (p Position) HasTest(t Test) bool {
	_, ok := p.TestIndex(t)
	return ok
}

// ParsePosition accepts a position code ("WR") or display name
// ("Wide Receiver"), case-insensitively.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	for _, p := range positionOrder {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, positions[p].displayName) {
			return p, nil
		}
	}
	return "", &InvalidSelectionError{Field: "position", Value: s, Reason: "not a tracked position"}
}

// ValidateSelection checks that t is a designated test of p
func ValidateSelection(p Position, t Test) error {
	if !p.Valid() {
		return &InvalidSelectionError{Field: "position", Value: string(p), Reason: "not a tracked position"}
	}
	if !t.Valid() {
		return &InvalidSelectionError{Field: "test", Value: string(t), Reason: "not a combine test"}
	}
	if !p.HasTest(t) {
		return &InvalidSelectionError{
			Field:  "test",
			Value:  string(t),
			Reason: "not a designated test for " + p.DisplayName(),
		}
	}
	return nil
}
