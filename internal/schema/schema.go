// Package schema holds the fixed field registry for toxicology records:
// which fields exist, how they are classed, and the empty record template.
package schema

import "toxedit/internal/models"

// EvidenceFields are the list fields holding study observations. Entries
// carry reference/data/source/statement/replaced sub-fields.
var EvidenceFields = []string{
	"acute_toxicity",
	"skin_irritation",
	"skin_sensitization",
	"ocular_irritation",
	"phototoxicity",
	"repeated_dose_toxicity",
	"percutaneous_absorption",
	"ingredient_profile",
}

// MetricFields are the scalar-with-metadata list fields.
var MetricFields = []string{"NOAEL", "DAP"}

// ScalarFields are the identity and flag fields of a record.
var ScalarFields = []string{"inci", "inci_ori", "cas", "isSkip", "category"}

// Companion maps a metric field to the evidence field that carries its
// supporting study data.
var Companion = map[string]string{
	"NOAEL": "repeated_dose_toxicity",
	"DAP":   "percutaneous_absorption",
}

// RequiredEvidenceSubfields are checked on evidence entries added by patch;
// missing ones are filled with defaults rather than rejected.
var RequiredEvidenceSubfields = []string{"reference", "data", "source", "statement", "replaced"}

var (
	evidenceSet = toSet(EvidenceFields)
	metricSet   = toSet(MetricFields)
	scalarSet   = toSet(ScalarFields)
)

func toSet(fields []string) map[string]struct{} {
	s := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// IsEvidenceField reports whether name is a registered evidence list field.
func IsEvidenceField(name string) bool {
	_, ok := evidenceSet[name]
	return ok
}

// IsMetricField reports whether name is a registered metric field.
func IsMetricField(name string) bool {
	_, ok := metricSet[name]
	return ok
}

// IsKnownField reports whether name is any registered record field.
func IsKnownField(name string) bool {
	if _, ok := scalarSet[name]; ok {
		return true
	}
	return IsEvidenceField(name) || IsMetricField(name)
}

// NewTemplate returns a complete empty record for the given ingredient.
// Records are always complete documents; partial records never persist.
func NewTemplate(inci string) models.Record {
	if inci == "" {
		inci = "INCI_NAME"
	}
	r := models.Record{
		"inci":     inci,
		"cas":      []any{},
		"isSkip":   false,
		"category": "OTHERS",
		"inci_ori": inci,
	}
	for _, f := range EvidenceFields {
		r[f] = []any{}
	}
	for _, f := range MetricFields {
		r[f] = []any{}
	}
	return r
}

// DefaultEvidenceSubfield returns the fill-in value for a missing required
// sub-field on an evidence entry: false for the replaced marker, empty
// string otherwise.
func DefaultEvidenceSubfield(name string) any {
	if name == "replaced" {
		return false
	}
	return ""
}
