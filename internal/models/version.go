package models

import "time"

// Version is an immutable snapshot of a record on a thread. Version numbers
// per thread start at 1 and are gapless; the highest number is current.
type Version struct {
	ID           int64            `json:"id,omitempty"`
	ThreadID     string           `json:"thread_id"`
	Version      int              `json:"version"`
	INCIName     string           `json:"inci_name,omitempty"`
	Record       Record           `json:"record"`
	Summary      string           `json:"summary"`
	Instruction  string           `json:"instruction,omitempty"`
	PatchOps     []PatchOperation `json:"patch_ops,omitempty"`
	BatchID      string           `json:"batch_id,omitempty"`
	IsBatchItem  bool             `json:"is_batch_item"`
	FallbackUsed bool             `json:"fallback_used"`
	CreatedAt    time.Time        `json:"created_at"`
}

// VersionSummary is the history-listing view of a version, without the snapshot.
type VersionSummary struct {
	Version      int       `json:"version"`
	INCIName     string    `json:"inci_name,omitempty"`
	Summary      string    `json:"summary"`
	PatchCount   int       `json:"patch_count"`
	BatchID      string    `json:"batch_id,omitempty"`
	FallbackUsed bool      `json:"fallback_used"`
	CreatedAt    time.Time `json:"created_at"`
}
