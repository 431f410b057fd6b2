// Package llm defines the text-generation collaborator interface and its
// implementations. The generator is a black box: nothing here is trusted for
// structural validity — all trust decisions live in the patch and merge
// packages.
package llm

import (
	"context"
	"errors"

	"toxedit/internal/models"
)

var (
	// ErrNoOutput means the model returned an empty or unusable completion.
	ErrNoOutput = errors.New("generator returned no usable output")
	// ErrMalformedOutput means the completion could not be parsed into the
	// expected shape.
	ErrMalformedOutput = errors.New("generator output malformed")
)

// Generator is the external text-generation collaborator. All calls are
// context-bound; a timeout is treated by callers exactly like a generation
// failure.
type Generator interface {
	// GeneratePatch proposes patch operations for a natural-language edit.
	GeneratePatch(ctx context.Context, record models.Record, instruction, inci string) ([]models.PatchOperation, error)

	// GenerateFullUpdate proposes a partial field-update object (changed
	// top-level fields only) for the fallback full-rewrite path.
	GenerateFullUpdate(ctx context.Context, record models.Record, instruction, inci string) (map[string]any, error)

	// ExtractPayloads pulls structured metric payloads out of pasted
	// correction-form text. An empty map means nothing was found; that is
	// not an error.
	ExtractPayloads(ctx context.Context, rawText string) (map[string]map[string]any, error)

	// ClassifyAmbiguous forces a single intent label for input no
	// heuristic matched.
	ClassifyAmbiguous(ctx context.Context, instruction string) (string, error)
}
