package merge

import "log/slog"

// Normalize corrects recognized structural mistakes in a generated update
// object before merging: mis-cased identity field, a field block nested one
// level too deep, and placeholder arrays. The rewrite table is fixed; it is
// not a general repair pass.
func Normalize(updates map[string]any) map[string]any {
	out := make(map[string]any, len(updates))
	for k, v := range updates {
		out[k] = v
	}

	if v, ok := out["INCI"]; ok {
		if _, exists := out["inci"]; !exists {
			slog.Debug("normalizing field name", "from", "INCI", "to", "inci")
			out["inci"] = v
		}
		delete(out, "INCI")
	}

	// A "toxicology" wrapper one level too deep is hoisted to the top.
	if nested, ok := out["toxicology"].(map[string]any); ok {
		slog.Debug("hoisting nested toxicology block")
		delete(out, "toxicology")
		for k, v := range nested {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}

	// Single-element "..." arrays are placeholders, not data.
	for k, v := range out {
		if list, ok := v.([]any); ok && len(list) == 1 {
			if s, ok := list[0].(string); ok && s == "..." {
				slog.Debug("dropping placeholder array", "field", k)
				delete(out, k)
			}
		}
	}

	return out
}
