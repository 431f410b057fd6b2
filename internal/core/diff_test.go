package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxedit/internal/llm"
	"toxedit/internal/models"
	"toxedit/internal/store"
)

func TestDiff_BetweenVersions(t *testing.T) {
	orch, st := newTestOrchestrator(t, &llm.Mock{})

	_, err := st.Save(&models.Version{
		ThreadID: "t1",
		Record: models.Record{
			"inci":     "Retinol",
			"category": "OTHERS",
			"cas":      []any{},
		},
		Summary: "first",
	})
	require.NoError(t, err)

	_, err = st.Save(&models.Version{
		ThreadID: "t1",
		Record: models.Record{
			"inci":     "Retinol",
			"category": "VITAMINS",
			"NOAEL":    []any{map[string]any{"value": float64(200)}},
		},
		Summary: "second",
	})
	require.NoError(t, err)

	diff, err := orch.Diff("t1", 1, 2)
	require.NoError(t, err)

	assert.Equal(t, "t1", diff.ThreadID)
	assert.Equal(t, 1, diff.FromVersion)
	assert.Equal(t, 2, diff.ToVersion)
	assert.Equal(t, 3, diff.TotalChanges())

	require.Len(t, diff.Added, 1)
	assert.Equal(t, "NOAEL", diff.Added[0].Field)

	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "cas", diff.Removed[0].Field)

	require.Len(t, diff.Changed, 1)
	assert.Equal(t, "category", diff.Changed[0].Field)
	assert.Equal(t, "OTHERS", diff.Changed[0].Old)
	assert.Equal(t, "VITAMINS", diff.Changed[0].New)
}

func TestDiff_SelfIsEmpty(t *testing.T) {
	orch, st := newTestOrchestrator(t, &llm.Mock{})

	_, err := st.Save(&models.Version{
		ThreadID: "t1",
		Record:   models.Record{"inci": "Retinol"},
		Summary:  "only",
	})
	require.NoError(t, err)

	diff, err := orch.Diff("t1", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, diff.TotalChanges())
}

func TestDiff_MissingVersion(t *testing.T) {
	orch, _ := newTestOrchestrator(t, &llm.Mock{})

	_, err := orch.Diff("nope", 1, 2)
	assert.ErrorIs(t, err, store.ErrVersionNotFound)
}
