package domain

import "errors"

var (
	// ErrInvalidSelector is returned for an unknown dataset variant, such as
	// an unrecognised party, size band or race source.
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrMissingColumn is returned when a source file lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateKey is returned when a table would hold a key twice.
	ErrDuplicateKey = errors.New("duplicate key")
)
