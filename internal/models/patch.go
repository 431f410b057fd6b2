package models

import "strings"

// PatchOp is an RFC 6902 operation kind.
type PatchOp string

const (
	PatchAdd     PatchOp = "add"
	PatchRemove  PatchOp = "remove"
	PatchReplace PatchOp = "replace"
	PatchMove    PatchOp = "move"
	PatchCopy    PatchOp = "copy"
	PatchTest    PatchOp = "test"
)

// PatchOperation is one pointer-addressed mutation against a record.
// A patch set is an ordered list applied atomically.
type PatchOperation struct {
	Op    PatchOp `json:"op"`
	Path  string  `json:"path"`
	Value any     `json:"value,omitempty"`
	From  string  `json:"from,omitempty"`
}

// Field returns the top-level record field the operation addresses,
// e.g. "/NOAEL/-" -> "NOAEL".
func (p PatchOperation) Field() string {
	trimmed := strings.TrimPrefix(p.Path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// NeedsValue reports whether the operation kind requires a value.
func (p PatchOperation) NeedsValue() bool {
	return p.Op == PatchAdd || p.Op == PatchReplace || p.Op == PatchTest
}
