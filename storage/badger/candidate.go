package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage"
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend  *Backend
	orderSeq *badger.Sequence
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	orderSeq, err := backend.GetSequence(candidateSeq)
	if err != nil {
		return nil, err
	}

	return &CandidateRepository{
		backend:  backend,
		orderSeq: orderSeq,
	}, nil
}

// Close releases the order sequence.
func (r *CandidateRepository) Close() error {
	return r.orderSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *CandidateRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.Match, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// AddCandidates adds one or more candidates to storage.
func (r *CandidateRepository) AddCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, candidate := range candidates {
			if err := core.ValidateCandidate(candidate); err != nil {
				return err
			}

			key := makeCandidateKey(candidate.Key())
			existing, err := r.readCandidate(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: candidate %s", storage.ErrDuplicateKey, candidate.ID)
			}

			position, err := r.orderSeq.Next()
			if err != nil {
				return err
			}

			if err := tx.Set(key, storage.MarshalCandidate(candidate)); err != nil {
				return err
			}
			if err := tx.Set(makeCandidateOrderKey(position), storage.MarshalID(candidate.Key())); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// UpdateCandidates replaces existing candidates.
func (r *CandidateRepository) UpdateCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, candidate := range candidates {
			key := makeCandidateKey(candidate.Key())

			old, err := r.readCandidate(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: candidate %s", storage.ErrNotFound, candidate.ID)
			}

			if err := tx.Set(key, storage.MarshalCandidate(candidate)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// GetCandidate retrieves a single candidate by its catalog ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id string) (*core.Candidate, error) {
	var result *core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readCandidate(tx, makeCandidateKey(core.IDFromContent(id)))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCandidates retrieves multiple candidates by their catalog IDs.
func (r *CandidateRepository) GetCandidates(ctx context.Context, ids ...string) ([]*core.Candidate, error) {
	var result []*core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			candidate, err := r.readCandidate(tx, makeCandidateKey(core.IDFromContent(id)))
			if err != nil {
				return err
			}
			if candidate != nil {
				result = append(result, candidate)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListCandidates walks the order index and returns candidates in insertion order.
func (r *CandidateRepository) ListCandidates(ctx context.Context) ([]*core.Candidate, error) {
	var results []*core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(candidateOrderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			candidate, err := r.readCandidate(tx, makeCandidateKey(id))
			if err != nil {
				return err
			}
			if candidate != nil {
				results = append(results, candidate)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountCandidates returns the number of stored candidates.
func (r *CandidateRepository) CountCandidates(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(candidatePrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readCandidate returns nil, nil when the key is absent.
func (r *CandidateRepository) readCandidate(tx *badger.Txn, key []byte) (*core.Candidate, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var candidate *core.Candidate
	err = item.Value(func(val []byte) error {
		var err error
		candidate, err = storage.UnmarshalCandidate(val)
		return err
	})
	return candidate, err
}
