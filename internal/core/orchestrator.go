// Package core implements the edit orchestration engine: intent routing,
// the patch-then-fallback edit paths, deterministic payload application,
// diffing, and batch coordination.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"toxedit/internal/intent"
	"toxedit/internal/llm"
	"toxedit/internal/merge"
	"toxedit/internal/models"
	"toxedit/internal/patch"
	"toxedit/internal/schema"
	"toxedit/internal/store"
)

var (
	// ErrMalformedFallback means the fallback full-update output could not
	// be used; the edit is rejected and the prior version stays current.
	ErrMalformedFallback = errors.New("fallback output malformed, edit rejected")
	// ErrGeneration means a generation call failed on a path that has no
	// further fallback.
	ErrGeneration = errors.New("generation failed")
)

// Orchestrator drives one edit call through classify, path-specific
// application, and persist. It holds no record state beyond the in-flight
// request; the store is the single source of truth.
type Orchestrator struct {
	store      *store.Store
	gen        llm.Generator
	log        *slog.Logger
	genTimeout time.Duration
}

// New creates an orchestrator. genTimeout bounds every generator call;
// zero means 60s.
func New(st *store.Store, gen llm.Generator, logger *slog.Logger, genTimeout time.Duration) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if genTimeout <= 0 {
		genTimeout = 60 * time.Second
	}
	return &Orchestrator{store: st, gen: gen, log: logger, genTimeout: genTimeout}
}

// Edit performs one edit call: load current record, classify, run the
// matching path, and persist a new version. Every call that returns nil
// error has durably written a version — including no-op paths, which keep
// the audit trail complete.
func (o *Orchestrator) Edit(ctx context.Context, req models.EditRequest) (*models.EditResult, error) {
	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	current, err := o.store.Current(threadID)
	if err != nil {
		return nil, fmt.Errorf("load current version: %w", err)
	}

	inci := intent.ExtractINCI(req.Instruction)
	if inci == "" {
		inci = req.INCIName
	}

	var record models.Record
	if current != nil {
		record = current.Record
		if inci == "" {
			inci = record.INCI()
		}
	} else {
		// First edit on a thread starts from the registry template.
		record = schema.NewTemplate(inci)
		if inci == "" {
			inci = record.INCI()
		}
	}

	path := intent.Classify(ctx, req.Instruction, req.Payloads, o.gen)
	o.log.Debug("classified edit", "thread", threadID, "inci", inci, "path", path)

	var (
		candidate    models.Record
		summary      string
		patchOps     []models.PatchOperation
		fallbackUsed bool
	)

	switch path {
	case models.IntentNLI:
		candidate, patchOps, fallbackUsed, summary, err = o.runNLI(ctx, record, req.Instruction, inci)
	case models.IntentStructured:
		payloads := req.Payloads
		if len(payloads) == 0 {
			payloads = intent.ExtractFormPayloads(req.Instruction)
		}
		candidate, summary = o.runStructured(record, payloads, inci)
	case models.IntentRaw:
		candidate, summary, err = o.runRaw(ctx, record, req.Instruction, inci)
	default: // NO_EDIT
		candidate = record
		summary = "no edit requested"
	}
	if err != nil {
		return nil, err
	}

	saved, err := o.store.Save(&models.Version{
		ThreadID:     threadID,
		INCIName:     inci,
		Record:       candidate,
		Summary:      summary,
		Instruction:  req.Instruction,
		PatchOps:     patchOps,
		BatchID:      req.BatchID,
		IsBatchItem:  req.IsBatch,
		FallbackUsed: fallbackUsed,
	})
	if err != nil {
		return nil, fmt.Errorf("save version: %w", err)
	}

	return &models.EditResult{
		ThreadID:     threadID,
		INCIName:     inci,
		Record:       saved.Record,
		PathTaken:    path,
		FallbackUsed: fallbackUsed,
		Version:      saved.Version,
		PatchOps:     patchOps,
		Summary:      summary,
	}, nil
}

// runNLI drives the natural-language path: inline structured sections apply
// without any generation call; otherwise generate a patch set, apply it
// safely, and fall back to one full-update merge if it cannot be applied.
func (o *Orchestrator) runNLI(ctx context.Context, record models.Record, instruction, inci string) (models.Record, []models.PatchOperation, bool, string, error) {
	if sections := intent.ExtractSections(instruction); len(sections) > 0 {
		updates := make(map[string]any, len(sections))
		var ops []models.PatchOperation
		fields := make([]string, 0, len(sections))
		for field, data := range sections {
			updates[field] = data
			fields = append(fields, field)
			for _, item := range data {
				ops = append(ops, models.PatchOperation{
					Op: models.PatchAdd, Path: "/" + field + "/-", Value: item,
				})
			}
		}
		sort.Strings(fields)
		o.log.Info("fast-path structured sections", "inci", inci, "fields", fields)
		merged := merge.Merge(record, updates)
		return merged, ops, false, "updated " + strings.Join(fields, ", "), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	ops, err := o.gen.GeneratePatch(genCtx, record, instruction, inci)
	if err != nil {
		o.log.Warn("patch generation failed, using fallback", "error", err)
		return o.runFallback(ctx, record, instruction, inci)
	}

	updated, normalized, err := patch.Apply(record, ops)
	if err != nil {
		if errors.Is(err, patch.ErrUnknownField) {
			// A structurally nonsensical edit; regenerating would only
			// launder the error.
			return nil, nil, false, "", err
		}
		o.log.Warn("patch rejected, using fallback", "error", err)
		return o.runFallback(ctx, record, instruction, inci)
	}

	summary := describePatch(normalized)
	return updated, normalized, false, summary, nil
}

// runFallback asks for a complete field-update object and merges it. One
// attempt is the hard limit: a failure here rejects the edit.
func (o *Orchestrator) runFallback(ctx context.Context, record models.Record, instruction, inci string) (models.Record, []models.PatchOperation, bool, string, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	updates, err := o.gen.GenerateFullUpdate(genCtx, record, instruction, inci)
	if err != nil {
		if errors.Is(err, llm.ErrMalformedOutput) {
			return nil, nil, false, "", fmt.Errorf("%w: %v", ErrMalformedFallback, err)
		}
		return nil, nil, false, "", fmt.Errorf("%w: fallback full update: %v", ErrGeneration, err)
	}

	merged := merge.Merge(record, updates)

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return merged, nil, true, "updated " + strings.Join(keys, ", "), nil
}

// runStructured applies already-parsed payloads. This path is fully
// deterministic: zero generation calls.
func (o *Orchestrator) runStructured(record models.Record, payloads map[string]map[string]any, inci string) (models.Record, string) {
	if len(payloads) == 0 {
		return record, "no form payloads found"
	}
	updated, applied := ApplyPayloads(record, payloads, inci)
	if len(applied) == 0 {
		return record, "no form payloads found"
	}
	return updated, "form data applied: " + strings.Join(applied, ", ")
}

// runRaw extracts payloads from pasted correction-form text, then applies
// them like the structured path. Empty extraction is a no-op, not an error.
func (o *Orchestrator) runRaw(ctx context.Context, record models.Record, instruction, inci string) (models.Record, string, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.genTimeout)
	defer cancel()

	payloads, err := o.gen.ExtractPayloads(genCtx, instruction)
	if err != nil {
		return nil, "", fmt.Errorf("%w: raw form extraction: %v", ErrGeneration, err)
	}
	if len(payloads) == 0 {
		return record, "no toxicity data found in text", nil
	}

	updated, applied := ApplyPayloads(record, payloads, inci)
	if len(applied) == 0 {
		return record, "no toxicity data found in text", nil
	}
	return updated, "extracted and applied: " + strings.Join(applied, ", "), nil
}

// describePatch summarizes a patch set for the version audit row.
func describePatch(ops []models.PatchOperation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = string(op.Op) + " at " + op.Path
	}
	return strings.Join(parts, "; ")
}
