// Package patch implements the safe-apply protocol for generated patch
// operations. Generated patches are untrusted: every set is validated and
// applied atomically against a copy, so a rejected set leaves the record
// byte-for-byte unchanged.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"toxedit/internal/models"
	"toxedit/internal/schema"
)

var (
	// ErrRejected means the set failed validation or a precondition;
	// the caller may fall back to full-record regeneration.
	ErrRejected = errors.New("patch set rejected")
	// ErrUnknownField means an operation addresses a field outside the
	// registry. This is a structurally nonsensical edit and must not
	// fall back.
	ErrUnknownField = errors.New("patch references unknown field")
)

// Apply validates ops and applies them as one atomic sequence against a copy
// of record. On success it returns the new record and the normalized
// operations (evidence entries with defaults filled in). On any failure the
// original record is returned unchanged along with a non-nil error.
func Apply(record models.Record, ops []models.PatchOperation) (models.Record, []models.PatchOperation, error) {
	if len(ops) == 0 {
		return record, nil, fmt.Errorf("%w: empty operation list", ErrRejected)
	}

	normalized := make([]models.PatchOperation, len(ops))
	for i, op := range ops {
		norm, err := validate(op)
		if err != nil {
			return record, nil, err
		}
		normalized[i] = norm
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return record, nil, fmt.Errorf("%w: marshal record: %v", ErrRejected, err)
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return record, nil, fmt.Errorf("%w: marshal operations: %v", ErrRejected, err)
	}

	p, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return record, nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	// Apply works on the serialized document, so a failed test or a bad
	// pointer cannot leave a partially mutated record behind.
	updated, err := p.Apply(doc)
	if err != nil {
		return record, nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	var out models.Record
	if err := json.Unmarshal(updated, &out); err != nil {
		return record, nil, fmt.Errorf("%w: result not an object: %v", ErrRejected, err)
	}
	return out, normalized, nil
}

// validate checks a single operation and returns it with evidence defaults
// filled in where the protocol allows.
func validate(op models.PatchOperation) (models.PatchOperation, error) {
	switch op.Op {
	case models.PatchAdd, models.PatchRemove, models.PatchReplace,
		models.PatchMove, models.PatchCopy, models.PatchTest:
	default:
		return op, fmt.Errorf("%w: unsupported op %q", ErrRejected, op.Op)
	}

	if !strings.HasPrefix(op.Path, "/") {
		return op, fmt.Errorf("%w: path %q must start with '/'", ErrRejected, op.Path)
	}
	if (op.Op == models.PatchAdd || op.Op == models.PatchReplace) && op.Value == nil {
		return op, fmt.Errorf("%w: %s at %s requires a value", ErrRejected, op.Op, op.Path)
	}
	if (op.Op == models.PatchMove || op.Op == models.PatchCopy) && !strings.HasPrefix(op.From, "/") {
		return op, fmt.Errorf("%w: %s requires a from pointer", ErrRejected, op.Op)
	}

	field := op.Field()
	if field == "" || !schema.IsKnownField(field) {
		return op, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if schema.IsEvidenceField(field) && op.Op == models.PatchAdd {
		if entry, ok := op.Value.(map[string]any); ok {
			op.Value = fillEvidenceDefaults(entry)
		}
	}

	if schema.IsMetricField(field) && op.Op == models.PatchAdd {
		switch op.Value.(type) {
		case float64, int, int64, string, map[string]any:
		case json.Number:
		default:
			return op, fmt.Errorf("%w: metric value for %s must be numeric, string, or object (got %T)",
				ErrRejected, field, op.Value)
		}
		// A structured metric entry must carry its measurement.
		if entry, ok := op.Value.(map[string]any); ok {
			if _, present := entry["value"]; !present {
				return op, fmt.Errorf("%w: metric entry for %s missing value", ErrRejected, field)
			}
		}
	}

	return op, nil
}

// fillEvidenceDefaults adds type-appropriate defaults for missing required
// sub-fields. Optional metadata favors availability over strict rejection.
func fillEvidenceDefaults(entry map[string]any) map[string]any {
	filled := make(map[string]any, len(entry))
	for k, v := range entry {
		filled[k] = v
	}
	for _, sub := range schema.RequiredEvidenceSubfields {
		if _, ok := filled[sub]; !ok {
			filled[sub] = schema.DefaultEvidenceSubfield(sub)
		}
	}
	return filled
}
