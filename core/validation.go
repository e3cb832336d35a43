package core

import (
	"fmt"
	"math"
)

func ValidateCandidate(candidate *Candidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyCandidateID)
	}

	if candidate.Chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyChunk)
	}

	score := float64(candidate.Score)
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidCandidate, ErrInvalidScore, candidate.Score)
	}

	if err := ValidateMoleculeType(candidate.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	return nil
}

func ValidateMoleculeType(t MoleculeType) error {
	switch t {
	case MoleculeTypeProtein, MoleculeTypeDNA, MoleculeTypeSmallMolecule:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidMoleculeType, t)
}

// ValidateSearchParams reports parameters a caller should correct. The
// ranking engine itself tolerates invalid parameters.
func ValidateSearchParams(params SearchParams) error {
	if math.IsNaN(params.Diversity) || params.Diversity < 0 || params.Diversity > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidSearchParams, ErrInvalidDiversity, params.Diversity)
	}
	return nil
}
