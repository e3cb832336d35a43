package core

import "errors"

var (
	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrEmptyCandidateID indicates the candidate ID is empty.
	ErrEmptyCandidateID = errors.New("candidate id cannot be empty")

	// ErrEmptyChunk indicates the chunk text is empty.
	ErrEmptyChunk = errors.New("chunk text cannot be empty")

	// ErrInvalidScore indicates a similarity score outside [0,1].
	ErrInvalidScore = errors.New("score must be between 0 and 1")

	// ErrInvalidMoleculeType indicates an unknown molecule type.
	ErrInvalidMoleculeType = errors.New("invalid molecule type")

	// ErrInvalidSearchParams indicates SearchParams failed validation.
	ErrInvalidSearchParams = errors.New("invalid search parameters")

	// ErrInvalidDiversity indicates a diversity coefficient outside [0,1].
	ErrInvalidDiversity = errors.New("diversity must be between 0 and 1")
)
