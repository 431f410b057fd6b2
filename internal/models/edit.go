package models

// EditRequest is one edit call into the orchestrator.
type EditRequest struct {
	INCIName    string `json:"inci_name,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	// Payloads maps a metric field name (lowercase, e.g. "noael") to its
	// structured form payload. When set, the structured path is taken
	// without any classification or generation call.
	Payloads map[string]map[string]any `json:"payloads,omitempty"`
	ThreadID string                    `json:"thread_id,omitempty"`
	BatchID  string                    `json:"-"`
	IsBatch  bool                      `json:"-"`
}

// EditResult reports the outcome of one edit call.
type EditResult struct {
	ThreadID     string           `json:"thread_id"`
	INCIName     string           `json:"inci_name"`
	Record       Record           `json:"record"`
	PathTaken    Intent           `json:"path_taken"`
	FallbackUsed bool             `json:"fallback_used"`
	Version      int              `json:"version"`
	PatchOps     []PatchOperation `json:"patch_ops,omitempty"`
	Summary      string           `json:"summary"`
}

// BatchEditItem is one (ingredient, instruction) pair in a batch call.
type BatchEditItem struct {
	INCIName    string `json:"inci_name"`
	Instruction string `json:"instruction"`
}

// BatchItemResult is the per-item outcome; failed items carry Error and do
// not abort the batch.
type BatchItemResult struct {
	INCIName string      `json:"inci_name"`
	ThreadID string      `json:"thread_id"`
	Result   *EditResult `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// BatchResult groups the outcomes of one batch call.
type BatchResult struct {
	BatchID   string            `json:"batch_id"`
	ThreadMap map[string]string `json:"thread_map"`
	Items     []BatchItemResult `json:"items"`
}
