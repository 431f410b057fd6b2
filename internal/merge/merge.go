// Package merge implements the deterministic rules for combining a current
// record with a proposed field update: scalars replace, metric lists replace
// wholesale, evidence lists append with de-duplication.
package merge

import (
	"log/slog"

	"toxedit/internal/models"
	"toxedit/internal/schema"
)

// Merge folds updates into record and returns a new record; neither input is
// mutated. Nil values in updates are skipped so a generated update can mark
// untouched fields with null without erasing data. Field names outside the
// registry are still added — the schema is additive, not closed.
func Merge(record models.Record, updates map[string]any) models.Record {
	merged := record.Clone()
	if merged == nil {
		merged = models.Record{}
	}

	for key, value := range Normalize(updates) {
		if value == nil {
			continue
		}

		switch {
		case key == "inci":
			merged["inci"] = value
			merged["inci_ori"] = value

		case schema.IsEvidenceField(key):
			incoming, ok := value.([]any)
			if !ok || len(incoming) == 0 {
				if !ok {
					merged[key] = value
				}
				continue
			}
			merged[key] = MergeEvidence(merged.List(key), incoming)

		case schema.IsMetricField(key):
			// Metric lists model "the current value", not a log of
			// superseded values.
			merged[key] = value

		default:
			if !schema.IsKnownField(key) {
				slog.Warn("merging unregistered field", "field", key)
			}
			merged[key] = value
		}
	}

	return merged
}

// MergeEvidence appends incoming entries to existing, folding an incoming
// entry into an existing one field-wise when both share the same
// (source, reference.title) pair.
func MergeEvidence(existing, incoming []any) []any {
	out := make([]any, len(existing))
	copy(out, existing)

	for _, item := range incoming {
		entry, ok := item.(map[string]any)
		if !ok {
			out = append(out, item)
			continue
		}

		idx := -1
		for i, have := range out {
			haveEntry, ok := have.(map[string]any)
			if !ok {
				continue
			}
			if haveEntry["source"] == entry["source"] &&
				referenceTitle(haveEntry) == referenceTitle(entry) {
				idx = i
				break
			}
		}

		if idx >= 0 {
			updated := map[string]any{}
			for k, v := range out[idx].(map[string]any) {
				updated[k] = v
			}
			for k, v := range entry {
				updated[k] = v
			}
			out[idx] = updated
		} else {
			out = append(out, entry)
		}
	}

	return out
}

func referenceTitle(entry map[string]any) any {
	ref, ok := entry["reference"].(map[string]any)
	if !ok {
		return nil
	}
	return ref["title"]
}
