package domain

import (
	"strings"
)

// Draft rounds
const (
	MinRound = 1
	MaxRound = 7
)

// PlayerRecord is one combine participant for one year
type PlayerRecord struct {
	Name      string   `json:"name" db:"player"`
	Position  string   `json:"position" db:"pos"`
	Height    *float64 `json:"height,omitempty" db:"ht"`
	Weight    *float64 `json:"weight,omitempty" db:"wt"`
	Forty     *float64 `json:"forty,omitempty" db:"forty"`
	Vertical  *float64 `json:"vertical,omitempty" db:"vertical"`
	BenchReps *float64 `json:"bench_reps,omitempty" db:"bench_reps"`
	Cone      *float64 `json:"cone,omitempty" db:"cone"`
	Shuttle   *float64 `json:"shuttle,omitempty" db:"shuttle"`
	Team      string   `json:"team,omitempty" db:"team"`
	Year      int      `json:"year" db:"year"`
	Round     *int     `json:"round,omitempty" db:"round"`
	Pick      *int     `json:"pick,omitempty" db:"pick"`
}

// Drafted reports whether the player was selected in the draft. The team
// field is the only discriminator.
func (r PlayerRecord) Drafted() bool {
	return strings.TrimSpace(r.Team) != ""
}

// Measurement returns the record's result for t, nil when absent
func (r PlayerRecord) Measurement(t Test) *float64 {
	info, ok := tests[t]
	if !ok {
		return nil
	}
	return info.accessor(r)
}

// ValidateRound checks a draft round selection
func ValidateRound(round int) error {
	if round < MinRound || round > MaxRound {
		return &InvalidSelectionError{Field: "round", Value: itoa(round), Reason: "round must be between 1 and 7"}
	}
	return nil
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
