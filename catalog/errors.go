package catalog

import "errors"

var (
	// ErrDuplicateID is returned when two catalog entries share an ID.
	ErrDuplicateID = errors.New("duplicate candidate id")

	// ErrEmptyCatalog is returned when a catalog file holds no entries.
	ErrEmptyCatalog = errors.New("catalog is empty")
)
