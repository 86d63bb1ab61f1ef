package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrUnknownLeague     = errors.New("unknown league code")
	ErrMalformedRecord   = errors.New("malformed input record")
	ErrInsufficientData  = errors.New("insufficient reference data")
	ErrNoFixturesForDate = errors.New("no fixtures scheduled for date")
)
