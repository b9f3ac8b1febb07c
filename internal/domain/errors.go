package domain

import "errors"

// Domain errors shared across packages.

var (
	// ErrNotFound indicates the requested template does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidPriority indicates an unrecognised priority value.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidRepeatType indicates an unrecognised repeat type.
	ErrInvalidRepeatType = errors.New("invalid repeat type")

	// ErrInvalidSyncInterval indicates an unrecognised sync interval.
	ErrInvalidSyncInterval = errors.New("invalid sync interval")

	// ErrInvalidOccurrenceKey indicates a ghost id that does not follow the
	// "<templateID>_<YYYY-MM-DD>" shape.
	ErrInvalidOccurrenceKey = errors.New("invalid occurrence key")

	// ErrProjectRequired indicates a subscription without a project.
	// Every subscribed task is filed under a project.
	ErrProjectRequired = errors.New("subscription requires a project")
)
