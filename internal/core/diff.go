package core

import (
	"encoding/json"
	"fmt"
	"sort"

	"toxedit/internal/models"
)

// FieldChange is one field-level difference between two record snapshots.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old,omitempty"`
	New   any    `json:"new,omitempty"`
}

// DiffResult is the structural difference between two versions.
type DiffResult struct {
	ThreadID    string        `json:"thread_id"`
	FromVersion int           `json:"from_version"`
	ToVersion   int           `json:"to_version"`
	Added       []FieldChange `json:"added"`
	Removed     []FieldChange `json:"removed"`
	Changed     []FieldChange `json:"changed"`
}

// TotalChanges returns the number of differing fields.
func (d *DiffResult) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}

// Diff computes the field-level difference between two stored versions of a
// thread. Readers never mutate the store.
func (o *Orchestrator) Diff(threadID string, from, to int) (*DiffResult, error) {
	a, err := o.store.GetVersion(threadID, from)
	if err != nil {
		return nil, fmt.Errorf("load version %d: %w", from, err)
	}
	b, err := o.store.GetVersion(threadID, to)
	if err != nil {
		return nil, fmt.Errorf("load version %d: %w", to, err)
	}
	return diffRecords(threadID, from, to, a.Record, b.Record), nil
}

func diffRecords(threadID string, from, to int, a, b models.Record) *DiffResult {
	result := &DiffResult{
		ThreadID:    threadID,
		FromVersion: from,
		ToVersion:   to,
		Added:       []FieldChange{},
		Removed:     []FieldChange{},
		Changed:     []FieldChange{},
	}

	fields := map[string]struct{}{}
	for k := range a {
		fields[k] = struct{}{}
	}
	for k := range b {
		fields[k] = struct{}{}
	}
	sorted := make([]string, 0, len(fields))
	for k := range fields {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for _, field := range sorted {
		oldVal, inOld := a[field]
		newVal, inNew := b[field]
		switch {
		case !inOld:
			result.Added = append(result.Added, FieldChange{Field: field, New: newVal})
		case !inNew:
			result.Removed = append(result.Removed, FieldChange{Field: field, Old: oldVal})
		case !jsonEqual(oldVal, newVal):
			result.Changed = append(result.Changed, FieldChange{Field: field, Old: oldVal, New: newVal})
		}
	}

	return result
}

func jsonEqual(a, b any) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}
