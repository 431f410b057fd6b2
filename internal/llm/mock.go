package llm

import (
	"context"

	"toxedit/internal/models"
)

// Mock is a Generator for tests and for running without a provider.
// Set the response fields to script behavior; the call counters record how
// often each path was exercised.
type Mock struct {
	PatchOps []models.PatchOperation
	PatchErr error

	FullUpdate    map[string]any
	FullUpdateErr error

	Payloads   map[string]map[string]any
	ExtractErr error

	Label       string
	ClassifyErr error

	PatchCalls    int
	FullCalls     int
	ExtractCalls  int
	ClassifyCalls int
}

// NewMock returns an empty mock; with nothing scripted, every call reports
// no usable output.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GeneratePatch(ctx context.Context, record models.Record, instruction, inci string) ([]models.PatchOperation, error) {
	m.PatchCalls++
	if m.PatchErr != nil {
		return nil, m.PatchErr
	}
	if m.PatchOps == nil {
		return nil, ErrNoOutput
	}
	return m.PatchOps, nil
}

func (m *Mock) GenerateFullUpdate(ctx context.Context, record models.Record, instruction, inci string) (map[string]any, error) {
	m.FullCalls++
	if m.FullUpdateErr != nil {
		return nil, m.FullUpdateErr
	}
	if m.FullUpdate == nil {
		return nil, ErrNoOutput
	}
	return m.FullUpdate, nil
}

func (m *Mock) ExtractPayloads(ctx context.Context, rawText string) (map[string]map[string]any, error) {
	m.ExtractCalls++
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Payloads, nil
}

func (m *Mock) ClassifyAmbiguous(ctx context.Context, instruction string) (string, error) {
	m.ClassifyCalls++
	if m.ClassifyErr != nil {
		return "", m.ClassifyErr
	}
	if m.Label == "" {
		return "", ErrNoOutput
	}
	return m.Label, nil
}
