package badger

import (
	"context"
	"testing"

	"github.com/poiesic/bioorbit/core"
	"github.com/poiesic/bioorbit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaG(f float64) *float64 { return &f }

func TestAddCandidates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	input := &core.Candidate{
		ID:          "res-1hsg",
		Score:       0.92,
		Source:      core.Source{ID: "1HSG", Title: "HIV-1 protease", Authors: []string{"Chen Z"}, DB: core.SourceDBStructure},
		Chunk:       core.Chunk{Text: "Indinavir binds the active site."},
		StructureID: "1HSG",
		DeltaG:      deltaG(-12.5),
		Tags:        []string{"protease"},
		Type:        core.MoleculeTypeProtein,
	}

	added, err := repo.AddCandidates(ctx, input)
	require.NoError(t, err)
	require.Len(t, added, 1)

	got, err := repo.GetCandidate(ctx, "res-1hsg")
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestAddCandidates_Duplicate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddCandidates(ctx, vectorCandidate("dup", nil))
	require.NoError(t, err)

	_, err = repo.AddCandidates(ctx, vectorCandidate("dup", nil))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestAddCandidates_Invalid(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.AddCandidates(context.Background(), &core.Candidate{ID: "x", Type: core.MoleculeTypeDNA})
	assert.ErrorIs(t, err, core.ErrEmptyChunk)

	count, err := repo.CountCandidates(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateCandidates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	c := vectorCandidate("res-1", nil)
	_, err := repo.AddCandidates(ctx, c)
	require.NoError(t, err)

	c.Vector = []float32{0.5, 0.5}
	_, err = repo.UpdateCandidates(ctx, c)
	require.NoError(t, err)

	got, err := repo.GetCandidate(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, got.Vector)

	_, err = repo.UpdateCandidates(ctx, vectorCandidate("missing", nil))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetCandidate_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetCandidate(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetCandidates_SkipsMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddCandidates(ctx, vectorCandidate("a", nil), vectorCandidate("b", nil))
	require.NoError(t, err)

	got, err := repo.GetCandidates(ctx, "b", "missing", "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestListCandidates_InsertionOrder(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ids := []string{"zeta", "alpha", "mu", "beta"}
	for _, id := range ids {
		_, err := repo.AddCandidates(ctx, vectorCandidate(id, nil))
		require.NoError(t, err)
	}

	got, err := repo.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, got[i].ID)
	}

	count, err := repo.CountCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(ids), count)
}
