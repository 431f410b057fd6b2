// Package intent decides which of the four edit paths applies to a request.
// Classification is a pure function of the input except for the final
// ambiguous-case fallback, which asks the text-generation collaborator for a
// forced single label.
package intent

import (
	"context"
	"log/slog"
	"strings"

	"toxedit/internal/models"
)

// AmbiguousClassifier is the collaborator used for inputs no heuristic
// matches. Its answer is trusted as-is: misclassification only routes to a
// different safe path, never to unsafe mutation.
type AmbiguousClassifier interface {
	ClassifyAmbiguous(ctx context.Context, instruction string) (string, error)
}

// nliPrefixes are imperative edit verbs that mark a natural-language edit.
var nliPrefixes = []string{
	"change ", "update ", "set ", "delete ", "add ", "remove ",
	"modify ", "edit ", "replace ", "fix ", "correct ", "for ",
}

// questionPrefixes mark interrogative, non-edit input.
var questionPrefixes = []string{"what ", "how ", "why ", "is ", "can "}

// rawIndicators are correction-form label markers; two or more of them mean
// pasted raw form text rather than an instruction.
var rawIndicators = []string{
	"noael:", "loael:", "pod:", "hed:", "species:", "duration:",
	"study type:", "endpoint:", "correction form", "unit-", "value-",
}

// formKeys identify a structured payload object.
var formKeys = []string{"noael", "dap", "noael_payload", "dap_payload", "value", "unit"}

// Classify returns the edit path for the given instruction text and optional
// pre-parsed payload. Heuristics are ordered; the first match wins.
func Classify(ctx context.Context, text string, payloads map[string]map[string]any, clf AmbiguousClassifier) models.Intent {
	if len(payloads) > 0 {
		return models.IntentStructured
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.IntentNoEdit
	}
	lower := strings.ToLower(trimmed)

	if parsed := ExtractJSON(text); parsed != nil {
		for _, key := range formKeys {
			if _, ok := parsed[key]; ok {
				return models.IntentStructured
			}
		}
	}

	// Imperative prefixes take priority over raw-form markers: "set NOAEL
	// to 200" is an instruction even though it names a form label.
	for _, p := range nliPrefixes {
		if strings.HasPrefix(lower, p) {
			return models.IntentNLI
		}
	}

	if strings.HasSuffix(lower, "?") {
		return models.IntentNoEdit
	}
	for _, p := range questionPrefixes {
		if strings.HasPrefix(lower, p) {
			return models.IntentNoEdit
		}
	}

	hits := 0
	for _, ind := range rawIndicators {
		if strings.Contains(lower, ind) {
			hits++
		}
	}
	if hits >= 2 {
		return models.IntentRaw
	}

	if clf != nil {
		label, err := clf.ClassifyAmbiguous(ctx, text)
		if err != nil {
			slog.Warn("ambiguous intent classification failed", "error", err)
		} else if it := models.Intent(strings.ToUpper(strings.TrimSpace(label))); it.Valid() {
			return it
		}
	}

	return models.IntentNLI
}
