// Package models defines the core data structures used throughout toxedit
// including records, versions, patch operations, and edit results.
package models

import "encoding/json"

// Record is the toxicology document for one ingredient. It is kept as a
// generic JSON document because patch paths and generated updates may
// address any field; the schema package owns the field registry.
type Record map[string]any

// Clone returns a deep copy of the record via a JSON round trip.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		// A record always originates from JSON, so this cannot fail in
		// practice; return an empty record rather than panic.
		return Record{}
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return Record{}
	}
	return out
}

// INCI returns the ingredient name of the record, or "" if unset.
func (r Record) INCI() string {
	if v, ok := r["inci"].(string); ok {
		return v
	}
	return ""
}

// List returns the named list field as a slice, or nil if absent or not a list.
func (r Record) List(field string) []any {
	if v, ok := r[field].([]any); ok {
		return v
	}
	return nil
}

// Equal reports whether two records serialize to the same JSON document.
func (r Record) Equal(other Record) bool {
	a, err := json.Marshal(r)
	if err != nil {
		return false
	}
	b, err := json.Marshal(other)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// Reference identifies the study or document an evidence entry came from.
type Reference struct {
	Title string  `json:"title"`
	Link  *string `json:"link"`
}

// Replaced marks an evidence entry that substitutes data from another ingredient.
type Replaced struct {
	ReplacedINCI string `json:"replaced_inci"`
	ReplacedType string `json:"replaced_type"`
}

// EvidenceEntry is one study observation in an evidence list field
// (acute_toxicity, repeated_dose_toxicity, ...).
type EvidenceEntry struct {
	Reference Reference `json:"reference"`
	Data      []string  `json:"data"`
	Source    string    `json:"source"`
	Statement string    `json:"statement"`
	Replaced  Replaced  `json:"replaced"`
}

// MetricEntry is one scalar-with-metadata entry in a metric field (NOAEL, DAP).
type MetricEntry struct {
	Note             *string `json:"note"`
	Unit             string  `json:"unit"`
	ExperimentTarget *string `json:"experiment_target"`
	Source           string  `json:"source"`
	Type             string  `json:"type"`
	StudyDuration    *string `json:"study_duration"`
	Value            float64 `json:"value"`
}

// AsMap converts a typed entry to the generic form stored in a Record.
func AsMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
