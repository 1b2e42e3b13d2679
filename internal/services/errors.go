package services

import "errors"

// Service errors
var (
	// ErrNoSelection is returned when the dataset has no class or no subject to preselect
	ErrNoSelection = errors.New("dataset has no class or subject to select")

	// ErrReloadFailed wraps a failed dataset reload; the previous dataset stays active
	ErrReloadFailed = errors.New("dataset reload failed")
)
