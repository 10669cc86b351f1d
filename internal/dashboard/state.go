package dashboard

import (
	"fmt"
	"math"
	"strconv"

	"combinepulse/internal/analytics"
	"combinepulse/pkg/contracts/domain"
)

// Sentinel is the candidate value that means "not provided"
const Sentinel = 0.0

// State is everything the user has selected on the dashboard
type State struct {
	Position  domain.Position `json:"position"`
	Test      domain.Test     `json:"test"`
	Round     int             `json:"round"`
	Candidate float64         `json:"value"`
}

// Provided reports whether the user entered a candidate value
func (s State) Provided() bool {
	return s.Candidate != Sentinel
}

// Validate checks the selection against the tracked combinations
func (s State) Validate() error {
	if err := domain.ValidateSelection(s.Position, s.Test); err != nil {
		return err
	}
	if err := domain.ValidateRound(s.Round); err != nil {
		return err
	}
	if math.IsNaN(s.Candidate) || math.IsInf(s.Candidate, 0) || s.Candidate < 0 {
		return &domain.InvalidSelectionError{
			Field:  "value",
			Value:  strconv.FormatFloat(s.Candidate, 'g', -1, 64),
			Reason: "value must be a non-negative number",
		}
	}
	return nil
}

// Key identifies the state for caching
func (s State) Key() string {
	return fmt.Sprintf("%s:%s:%d:%s", s.Position, s.Test, s.Round, strconv.FormatFloat(s.Candidate, 'g', -1, 64))
}

// Policy holds the behaviour switches of the dashboard
type Policy struct {
	// TopPicks is the number of earliest picks averaged per round
	TopPicks int `json:"top_picks"`

	// SkipSentinelPercentile leaves out the percentile when no candidate
	// value was entered
	SkipSentinelPercentile bool `json:"skip_sentinel_percentile"`
}

// DefaultPolicy returns the standard dashboard behaviour
func DefaultPolicy() Policy {
	return Policy{TopPicks: analytics.DefaultTopPicks}
}

// DefaultState is the selection shown before the user changes anything
func DefaultState() State {
	return State{Position: domain.PositionQB, Test: domain.TestForty, Round: domain.MinRound}
}
