package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractRecord(id string) *domain.Record {
	return &domain.Record{
		ID:        id,
		Machine:   "contract",
		Input:     "01",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Result: &domain.Result{
			Outcome:    domain.StatusAccepted,
			FinalState: "q1",
			Steps:      3,
			Blank:      "B",
			Tape:       domain.Snapshot{Step: 3, State: "q1", Head: 1, Cells: []domain.Symbol{"0", "1", "B"}},
			Trace: domain.Trace{
				{Step: 0, State: "q0", Head: 0, Cells: []domain.Symbol{"0", "1"}},
				{Step: 3, State: "q1", Head: 1, Cells: []domain.Symbol{"0", "1", "B"}},
			},
		},
	}
}

// RunRunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		record := contractRecord(runID)

		err := store.Save(ctx, record)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, record.Input, loaded.Input)
		assert.Equal(t, record.Machine, loaded.Machine)
		assert.True(t, record.CreatedAt.Equal(loaded.CreatedAt))
		require.NotNil(t, loaded.Result)
		assert.Equal(t, record.Result.Outcome, loaded.Result.Outcome)
		assert.Equal(t, record.Result.Trace, loaded.Result.Trace)
		assert.Equal(t, "01", loaded.Result.Output())
	})

	t.Run("Load Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		loaded.Input = "mutated"
		loaded.Result.Outcome = domain.StatusRejected

		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "01", again.Input)
		assert.Equal(t, domain.StatusAccepted, again.Result.Outcome)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, contractRecord(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, contractRecord(id1))
		_ = store.Save(ctx, contractRecord(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})

	t.Run("List Oldest First", func(t *testing.T) {
		older := contractRecord(runID + "-older")
		older.CreatedAt = older.CreatedAt.Add(-time.Hour)
		newer := contractRecord(runID + "-newer")

		require.NoError(t, store.Save(ctx, newer))
		require.NoError(t, store.Save(ctx, older))
		defer func() {
			_ = store.Delete(ctx, older.ID)
			_ = store.Delete(ctx, newer.ID)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		olderAt, newerAt := -1, -1
		for i, id := range runs {
			switch id {
			case older.ID:
				olderAt = i
			case newer.ID:
				newerAt = i
			}
		}
		require.NotEqual(t, -1, olderAt)
		require.NotEqual(t, -1, newerAt)
		assert.Less(t, olderAt, newerAt)
	})
}

// RunCatalogContract verifies a Catalog seeded with exactly the given definitions.
func RunCatalogContract(t *testing.T, catalog Catalog, seeded ...domain.Definition) {
	ctx := context.Background()

	t.Run("List", func(t *testing.T) {
		names, err := catalog.List(ctx)
		require.NoError(t, err)
		require.Len(t, names, len(seeded))
		assert.IsIncreasing(t, names, "names must be sorted")
		for _, def := range seeded {
			assert.Contains(t, names, def.Name)
		}
	})

	t.Run("Get", func(t *testing.T) {
		for _, def := range seeded {
			got, err := catalog.Get(ctx, def.Name)
			require.NoError(t, err, "Get(%q)", def.Name)
			assert.Equal(t, def.Name, got.Name)
			assert.Equal(t, def.InitialState, got.InitialState)
			assert.Equal(t, len(def.Transitions), len(got.Transitions))
		}
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := catalog.Get(ctx, "non-existent-machine")
		assert.ErrorIs(t, err, domain.ErrMachineNotFound)
	})
}
