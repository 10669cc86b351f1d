package domain

import (
	"strings"
)

// Test is a combine drill whose result is recorded per player
type Test string

const (
	TestForty     Test = "Forty"
	TestShuttle   Test = "Shuttle"
	TestCone      Test = "Cone"
	TestVertical  Test = "Vertical"
	TestBenchReps Test = "BenchReps"
)

// Units of measure
const (
	UnitSeconds = "seconds"
	UnitInches  = "inches"
	UnitReps    = "reps"
)

type testInfo struct {
	label         string
	unit          string
	lowerIsBetter bool
	accessor      Accessor
}

// Accessor reads one test value from a record. A nil result means the
// player did not perform the test.
type Accessor func(PlayerRecord) *float64

var tests = map[Test]testInfo{
	TestForty:     {"40-yard dash", UnitSeconds, true, func(r PlayerRecord) *float64 { return r.Forty }},
	TestShuttle:   {"20-yard shuttle", UnitSeconds, true, func(r PlayerRecord) *float64 { return r.Shuttle }},
	TestCone:      {"3-cone drill", UnitSeconds, true, func(r PlayerRecord) *float64 { return r.Cone }},
	TestVertical:  {"Vertical jump", UnitInches, false, func(r PlayerRecord) *float64 { return r.Vertical }},
	TestBenchReps: {"Bench press", UnitReps, false, func(r PlayerRecord) *float64 { return r.BenchReps }},
}

// AllTests returns every combine test the loader reads
func AllTests() []Test {
	return []Test{TestForty, TestVertical, TestBenchReps, TestCone, TestShuttle}
}

// Valid reports whether t is a known combine test
func (t Test) Valid() bool {
	_, ok := tests[t]
	return ok
}

// Label returns the drill name shown to users
func (t Test) Label() string {
	if info, ok := tests[t]; ok {
		return info.label
	}
	return string(t)
}

// Unit returns the unit of measure
func (t Test) Unit() string {
	return tests[t].unit
}

// LowerIsBetter is a display hint; ranking is always ascending.
func (t Test) LowerIsBetter() bool {
	return tests[t].lowerIsBetter
}

// Accessor returns the column accessor for t
func (t Test) Accessor() (Accessor, error) {
	info, ok := tests[t]
	if !ok {
		return nil, &InvalidSelectionError{Field: "test", Value: string(t), Reason: "not a combine test"}
	}
	return info.accessor, nil
}

// ParseTest matches a test name case-insensitively
func ParseTest(s string) (Test, error) {
	s = strings.TrimSpace(s)
	for t := range tests {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", &InvalidSelectionError{Field: "test", Value: s, Reason: "not a combine test"}
}
