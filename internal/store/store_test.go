package store

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxedit/internal/models"
)

// newTestStore creates a new sqlite store in a temp directory for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Initialize())
	t.Cleanup(func() { st.Close() })
	return st
}

func testRecord(inci string) models.Record {
	return models.Record{
		"inci":     inci,
		"inci_ori": inci,
		"NOAEL":    []any{},
	}
}

// ==================== Save Tests ====================

func TestStore_SaveAssignsSequentialVersions(t *testing.T) {
	st := newTestStore(t)

	for i := 1; i <= 3; i++ {
		saved, err := st.Save(&models.Version{
			ThreadID: "t1",
			INCIName: "Retinol",
			Record:   testRecord("Retinol"),
			Summary:  fmt.Sprintf("edit %d", i),
		})
		require.NoError(t, err)
		assert.Equal(t, i, saved.Version)
		assert.False(t, saved.CreatedAt.IsZero())
	}
}

func TestStore_SaveIndependentThreads(t *testing.T) {
	st := newTestStore(t)

	a, err := st.Save(&models.Version{ThreadID: "a", Record: testRecord("A"), Summary: "s"})
	require.NoError(t, err)
	b, err := st.Save(&models.Version{ThreadID: "b", Record: testRecord("B"), Summary: "s"})
	require.NoError(t, err)

	// Each thread numbers from 1 on its own.
	assert.Equal(t, 1, a.Version)
	assert.Equal(t, 1, b.Version)
}

func TestStore_SaveRequiresThreadID(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Save(&models.Version{Record: testRecord("X"), Summary: "s"})
	assert.Error(t, err)
}

func TestStore_SaveConcurrentWritersNoGaps(t *testing.T) {
	st := newTestStore(t)

	const writers = 10
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = st.Save(&models.Version{
				ThreadID: "shared",
				Record:   testRecord("Retinol"),
				Summary:  fmt.Sprintf("writer %d", i),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	history, err := st.History("shared")
	require.NoError(t, err)
	require.Len(t, history, writers)
	for i, entry := range history {
		assert.Equal(t, i+1, entry.Version, "versions must be gapless and ordered")
	}
}

func TestStore_SavePersistsPatchOps(t *testing.T) {
	st := newTestStore(t)

	ops := []models.PatchOperation{
		{Op: models.PatchReplace, Path: "/cas", Value: []any{"68-26-8"}},
	}
	saved, err := st.Save(&models.Version{
		ThreadID: "t1",
		Record:   testRecord("Retinol"),
		Summary:  "replace cas",
		PatchOps: ops,
	})
	require.NoError(t, err)

	got, err := st.GetVersion("t1", saved.Version)
	require.NoError(t, err)
	require.Len(t, got.PatchOps, 1)
	assert.Equal(t, models.PatchReplace, got.PatchOps[0].Op)
	assert.Equal(t, "/cas", got.PatchOps[0].Path)
}

func TestStore_SaveConcurrentDistinctThreads(t *testing.T) {
	st := newTestStore(t)

	const threads = 8
	var wg sync.WaitGroup
	errs := make([]error, threads)
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = st.Save(&models.Version{
				ThreadID: fmt.Sprintf("thread-%d", i),
				Record:   testRecord("Retinol"),
				Summary:  "parallel edit",
			})
		}(i)
	}
	wg.Wait()

	// Writers on distinct threads are independent; none may fail on lock
	// contention.
	for i, err := range errs {
		require.NoError(t, err, "thread-%d", i)
	}
	for i := 0; i < threads; i++ {
		v, err := st.Current(fmt.Sprintf("thread-%d", i))
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, 1, v.Version)
	}
}

// ==================== Read Tests ====================

func TestStore_CurrentEmptyThread(t *testing.T) {
	st := newTestStore(t)

	v, err := st.Current("nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStore_CurrentReturnsLatest(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Save(&models.Version{ThreadID: "t1", Record: testRecord("A"), Summary: "first"})
	require.NoError(t, err)
	_, err = st.Save(&models.Version{ThreadID: "t1", Record: testRecord("A"), Summary: "second"})
	require.NoError(t, err)

	v, err := st.Current("t1")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 2, v.Version)
	assert.Equal(t, "second", v.Summary)
}

func TestStore_GetVersionNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetVersion("t1", 7)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestStore_GetVersionRoundTripsRecord(t *testing.T) {
	st := newTestStore(t)

	record := models.Record{
		"inci":  "Retinol",
		"NOAEL": []any{map[string]any{"value": float64(200), "unit": "mg/kg bw/day"}},
	}
	saved, err := st.Save(&models.Version{ThreadID: "t1", Record: record, Summary: "s"})
	require.NoError(t, err)

	got, err := st.GetVersion("t1", saved.Version)
	require.NoError(t, err)
	assert.Equal(t, "Retinol", got.Record["inci"])

	noael, ok := got.Record["NOAEL"].([]any)
	require.True(t, ok)
	require.Len(t, noael, 1)
	entry := noael[0].(map[string]any)
	assert.Equal(t, float64(200), entry["value"])
}

func TestStore_HistoryAscendingWithPatchCount(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Save(&models.Version{ThreadID: "t1", INCIName: "Retinol", Record: testRecord("Retinol"), Summary: "first"})
	require.NoError(t, err)
	_, err = st.Save(&models.Version{
		ThreadID: "t1", INCIName: "Retinol", Record: testRecord("Retinol"), Summary: "second",
		PatchOps: []models.PatchOperation{
			{Op: models.PatchAdd, Path: "/acute_toxicity/-", Value: map[string]any{"source": "sccs"}},
			{Op: models.PatchReplace, Path: "/category", Value: "VITAMINS"},
		},
	})
	require.NoError(t, err)

	history, err := st.History("t1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Version)
	assert.Equal(t, 0, history[0].PatchCount)
	assert.Equal(t, 2, history[1].Version)
	assert.Equal(t, 2, history[1].PatchCount)
	assert.Equal(t, "Retinol", history[1].INCIName)
}

func TestStore_ByBatch(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Save(&models.Version{ThreadID: "a", Record: testRecord("A"), Summary: "s", BatchID: "batch-1", IsBatchItem: true})
	require.NoError(t, err)
	_, err = st.Save(&models.Version{ThreadID: "b", Record: testRecord("B"), Summary: "s", BatchID: "batch-1", IsBatchItem: true})
	require.NoError(t, err)
	_, err = st.Save(&models.Version{ThreadID: "c", Record: testRecord("C"), Summary: "s"})
	require.NoError(t, err)

	got, err := st.ByBatch("batch-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ThreadID)
	assert.Equal(t, "b", got[1].ThreadID)
	assert.True(t, got[0].IsBatchItem)
	assert.Equal(t, "batch-1", got[0].BatchID)
}

func TestStore_ByIngredientNewestFirst(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Save(&models.Version{ThreadID: "a", INCIName: "Retinol", Record: testRecord("Retinol"), Summary: "old"})
	require.NoError(t, err)
	_, err = st.Save(&models.Version{ThreadID: "b", INCIName: "Retinol", Record: testRecord("Retinol"), Summary: "new"})
	require.NoError(t, err)
	_, err = st.Save(&models.Version{ThreadID: "c", INCIName: "Glycerin", Record: testRecord("Glycerin"), Summary: "other"})
	require.NoError(t, err)

	got, err := st.ByIngredient("Retinol")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Summary)
	assert.Equal(t, "old", got[1].Summary)
}
