package storage

import (
	"context"

	"github.com/poiesic/bioorbit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds candidates whose chunk embedding is similar to vector.
	// Returns candidates with cosine similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first). Candidates
	// without an embedding are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.Match, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// CandidateRepository provides operations for managing the candidate pool.
type CandidateRepository interface {
	Repository

	// AddCandidates adds one or more candidates to storage, keyed by
	// Candidate.Key(). Insertion order is remembered and reproduced by
	// ListCandidates.
	// Returns ErrDuplicateKey if a candidate with the same ID already exists.
	AddCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// UpdateCandidates replaces existing candidates.
	// Returns ErrNotFound if any candidate doesn't exist.
	UpdateCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// GetCandidate retrieves a single candidate by its catalog ID.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id string) (*core.Candidate, error)

	// GetCandidates retrieves multiple candidates by their catalog IDs.
	// Returns only the candidates that exist (no error for missing candidates).
	GetCandidates(ctx context.Context, ids ...string) ([]*core.Candidate, error)

	// ListCandidates returns every stored candidate in insertion order.
	ListCandidates(ctx context.Context) ([]*core.Candidate, error)

	// CountCandidates returns the number of stored candidates.
	CountCandidates(ctx context.Context) (int, error)
}
