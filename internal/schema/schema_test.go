package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplate_CompleteRecord(t *testing.T) {
	r := NewTemplate("Retinol")

	assert.Equal(t, "Retinol", r["inci"])
	assert.Equal(t, "Retinol", r["inci_ori"])
	assert.Equal(t, "OTHERS", r["category"])
	assert.Equal(t, false, r["isSkip"])
	assert.Equal(t, []any{}, r["cas"])

	for _, f := range EvidenceFields {
		require.Contains(t, r, f)
		assert.Equal(t, []any{}, r[f], f)
	}
	for _, f := range MetricFields {
		require.Contains(t, r, f)
		assert.Equal(t, []any{}, r[f], f)
	}
}

func TestNewTemplate_EmptyNamePlaceholder(t *testing.T) {
	r := NewTemplate("")
	assert.Equal(t, "INCI_NAME", r["inci"])
}

func TestFieldClassification(t *testing.T) {
	assert.True(t, IsEvidenceField("acute_toxicity"))
	assert.True(t, IsEvidenceField("percutaneous_absorption"))
	assert.False(t, IsEvidenceField("NOAEL"))

	assert.True(t, IsMetricField("NOAEL"))
	assert.True(t, IsMetricField("DAP"))
	assert.False(t, IsMetricField("noael"), "metric field names are case-sensitive")

	assert.True(t, IsKnownField("inci"))
	assert.True(t, IsKnownField("isSkip"))
	assert.True(t, IsKnownField("skin_sensitization"))
	assert.False(t, IsKnownField("molecular_weight"))
}

func TestCompanionMapping(t *testing.T) {
	assert.Equal(t, "repeated_dose_toxicity", Companion["NOAEL"])
	assert.Equal(t, "percutaneous_absorption", Companion["DAP"])

	// Every metric has a registered companion evidence field.
	for _, m := range MetricFields {
		companion, ok := Companion[m]
		require.True(t, ok, m)
		assert.True(t, IsEvidenceField(companion), companion)
	}
}

func TestDefaultEvidenceSubfield(t *testing.T) {
	assert.Equal(t, false, DefaultEvidenceSubfield("replaced"))
	assert.Equal(t, "", DefaultEvidenceSubfield("reference"))
	assert.Equal(t, "", DefaultEvidenceSubfield("statement"))
}
