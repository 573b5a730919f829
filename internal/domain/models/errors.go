package models

import "errors"

var (
	// ErrUnknownColumn is returned when a feature or target name does not
	// match any dataset column.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrDimensionMismatch is returned when a feature vector does not match
	// the dimensionality of a fitted model.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
