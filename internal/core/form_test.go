package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toxedit/internal/schema"
)

func noaelPayload() map[string]any {
	return map[string]any{
		"value":             float64(200),
		"source":            "SCCS Opinion",
		"experiment_target": "rat",
		"study_duration":    "90-day",
		"reference_title":   "SCCS/1576/16",
	}
}

func TestApplyPayloads_NOAELDefaults(t *testing.T) {
	record := schema.NewTemplate("Retinol")
	updated, applied := ApplyPayloads(record, map[string]map[string]any{"noael": noaelPayload()}, "Retinol")

	assert.Equal(t, []string{"NOAEL"}, applied)

	noael := updated["NOAEL"].([]any)
	require.Len(t, noael, 1)
	entry := noael[0].(map[string]any)
	assert.Equal(t, float64(200), entry["value"])
	assert.Equal(t, "mg/kg bw/day", entry["unit"])
	assert.Equal(t, "sccs_opinion", entry["source"], "source is normalized")
	assert.Equal(t, "NOAEL", entry["type"])
	assert.Equal(t, "rat", entry["experiment_target"])

	// Input untouched.
	assert.Empty(t, record["NOAEL"].([]any))
}

func TestApplyPayloads_DAPUnitForced(t *testing.T) {
	record := schema.NewTemplate("Retinol")
	payload := map[string]any{
		"value":             float64(50),
		"unit":              "mg/cm2",
		"source":            "SCCS",
		"experiment_target": "human skin",
		"study_duration":    "24h",
		"reference_title":   "SCCS/1576/16",
	}
	updated, _ := ApplyPayloads(record, map[string]map[string]any{"dap": payload}, "Retinol")

	dap := updated["DAP"].([]any)
	require.Len(t, dap, 1)
	assert.Equal(t, "%", dap[0].(map[string]any)["unit"], "dermal absorption is always a percentage")
}

func TestApplyPayloads_MetricReplacesExisting(t *testing.T) {
	record := schema.NewTemplate("Retinol")
	record["NOAEL"] = []any{map[string]any{"value": float64(100)}}

	updated, _ := ApplyPayloads(record, map[string]map[string]any{"noael": noaelPayload()}, "Retinol")

	noael := updated["NOAEL"].([]any)
	require.Len(t, noael, 1)
	assert.Equal(t, float64(200), noael[0].(map[string]any)["value"])
}

func TestApplyPayloads_CompanionEvidence(t *testing.T) {
	record := schema.NewTemplate("Retinol")
	updated, _ := ApplyPayloads(record, map[string]map[string]any{"noael": noaelPayload()}, "Retinol")

	companion := updated["repeated_dose_toxicity"].([]any)
	require.Len(t, companion, 1)
	entry := companion[0].(map[string]any)
	assert.Equal(t, "sccs_opinion", entry["source"])
	assert.Equal(t, "Based on sccs_opinion assessment", entry["statement"])

	ref := entry["reference"].(map[string]any)
	assert.Equal(t, "SCCS/1576/16", ref["title"])

	data := entry["data"].([]any)
	require.Len(t, data, 1)
	assert.Contains(t, data[0].(string), "NOAEL of 200 mg/kg bw/day")
	assert.Contains(t, data[0].(string), "rat")
}

func TestApplyPayloads_CompanionDedupByReferenceTitle(t *testing.T) {
	record := schema.NewTemplate("Retinol")
	record["repeated_dose_toxicity"] = []any{
		map[string]any{
			"reference": map[string]any{"title": "SCCS/1576/16"},
			"source":    "sccs_opinion",
		},
	}

	updated, _ := ApplyPayloads(record, map[string]map[string]any{"noael": noaelPayload()}, "Retinol")

	companion := updated["repeated_dose_toxicity"].([]any)
	assert.Len(t, companion, 1, "an entry with the same reference title must not duplicate")
}

func TestApplyPayloads_SetsIdentityFields(t *testing.T) {
	record := schema.NewTemplate("")
	updated, _ := ApplyPayloads(record, map[string]map[string]any{"noael": noaelPayload()}, "Retinol")

	assert.Equal(t, "Retinol", updated["inci"])
	assert.Equal(t, "Retinol", updated["inci_ori"])
}

func TestApplyPayloads_UnrecognizedFieldIgnored(t *testing.T) {
	record := schema.NewTemplate("Retinol")
	_, applied := ApplyPayloads(record, map[string]map[string]any{"loael": {"value": float64(50)}}, "Retinol")

	assert.Empty(t, applied)
}
