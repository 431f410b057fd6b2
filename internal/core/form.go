package core

import (
	"fmt"
	"log/slog"
	"strings"

	"toxedit/internal/models"
	"toxedit/internal/schema"
)

// ApplyPayloads applies structured metric payloads to a copy of record using
// the replace-for-metric / append-for-evidence rule. The result is fully
// deterministic; no generation call is involved. It returns the new record
// and the metric fields that were applied.
func ApplyPayloads(record models.Record, payloads map[string]map[string]any, inci string) (models.Record, []string) {
	updated := record.Clone()
	var applied []string

	for field, payload := range payloads {
		switch strings.ToLower(field) {
		case "noael":
			applyMetric(updated, "NOAEL", payload, inci)
			applied = append(applied, "NOAEL")
		case "dap":
			applyMetric(updated, "DAP", payload, inci)
			applied = append(applied, "DAP")
		default:
			slog.Warn("ignoring payload for unrecognized metric field", "field", field)
		}
	}

	return updated, applied
}

// applyMetric replaces the metric list with one entry built from the payload
// and appends a companion evidence entry, guarded against duplicates by
// reference title.
func applyMetric(record models.Record, metric string, payload map[string]any, inci string) {
	value := floatValue(payload["value"])
	source := normalizeSource(stringValue(payload["source"]))
	target := stringValue(payload["experiment_target"])
	duration := stringValue(payload["study_duration"])
	refTitle := stringValue(payload["reference_title"])
	statement := stringValue(payload["statement"])

	unit := stringValue(payload["unit"])
	var sentence string
	switch metric {
	case "DAP":
		unit = "%"
		sentence = fmt.Sprintf(
			"Dermal absorption estimated at %v%% in %s (%s study) based on %s assessment",
			trimFloat(value), target, duration, source)
	default:
		if unit == "" {
			unit = "mg/kg bw/day"
		}
		sentence = fmt.Sprintf(
			"NOAEL of %v %s established in %s (%s study) based on %s assessment",
			trimFloat(value), unit, target, duration, source)
	}

	entry := map[string]any{
		"note":              payload["note"],
		"unit":              unit,
		"experiment_target": target,
		"source":            source,
		"type":              metric,
		"study_duration":    duration,
		"value":             value,
	}

	if statement == "" {
		statement = fmt.Sprintf("Based on %s assessment", source)
	}
	evidence := map[string]any{
		"reference": map[string]any{
			"title": refTitle,
			"link":  payload["reference_link"],
		},
		"data":      []any{sentence},
		"source":    source,
		"statement": statement,
		"replaced": map[string]any{
			"replaced_inci": "",
			"replaced_type": "",
		},
	}

	if inci != "" {
		record["inci"] = inci
		record["inci_ori"] = inci
	}

	// The metric list models the current value: replace, don't append.
	record[metric] = []any{entry}

	companion := schema.Companion[metric]
	existing := record.List(companion)
	if !hasReferenceTitle(existing, refTitle) {
		record[companion] = append(existing, evidence)
	}
}

func hasReferenceTitle(entries []any, title string) bool {
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if ref, ok := entry["reference"].(map[string]any); ok {
			if t, _ := ref["title"].(string); t == title {
				return true
			}
		}
	}
	return false
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func normalizeSource(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// trimFloat renders whole numbers without a trailing ".0".
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
