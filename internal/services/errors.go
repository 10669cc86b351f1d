package services

import "errors"

// Service errors
var (
	// ErrReloadInProgress is returned when a reload is requested while another runs
	ErrReloadInProgress = errors.New("dataset reload already in progress")

	// ErrServiceUnavailable is returned by readiness when a dependency is down
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
