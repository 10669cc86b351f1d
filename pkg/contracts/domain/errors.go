package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrEmptyAggregate is returned when a statistic has no values to work on
	ErrEmptyAggregate = errors.New("insufficient data")

	// ErrInvalidSelection is returned for a position, test or round outside
	// the tracked combinations
	ErrInvalidSelection = errors.New("invalid selection")
)

// EmptyAggregateError names the selection that produced no values
type EmptyAggregateError struct {
	Position Position
	Test     Test
	Round    int // 0 means all rounds
	Op       string
}

func (e *EmptyAggregateError) Error() string {
	scope := "all rounds"
	if e.Round > 0 {
		scope = "round " + strconv.Itoa(e.Round)
	}
	subject := string(e.Position)
	if e.Test != "" {
		subject += " " + string(e.Test)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: insufficient data for %s in %s", e.Op, subject, scope)
	}
	return fmt.Sprintf("insufficient data for %s in %s", subject, scope)
}

func (e *EmptyAggregateError) Is(target error) bool {
	return target == ErrEmptyAggregate
}

// InvalidSelectionError describes a rejected dashboard selection
type InvalidSelectionError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidSelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
