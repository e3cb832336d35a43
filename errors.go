package bioorbit

import "errors"

var (
	// ErrUnknownCandidate is returned for IDs that are not in the pool.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrNoStructure is returned when a candidate has no PDB accession to view.
	ErrNoStructure = errors.New("candidate has no structure")
)
