package models

// Intent is the edit path chosen for an incoming request.
type Intent string

const (
	// IntentNLI routes through patch generation with full-rewrite fallback.
	IntentNLI Intent = "NLI_EDIT"
	// IntentStructured applies an already-parsed payload deterministically.
	IntentStructured Intent = "FORM_EDIT_STRUCTURED"
	// IntentRaw extracts payloads from pasted correction-form text first.
	IntentRaw Intent = "FORM_EDIT_RAW"
	// IntentNoEdit performs a no-op save for audit purposes.
	IntentNoEdit Intent = "NO_EDIT"
)

// Valid reports whether s is one of the four known intent labels.
func (i Intent) Valid() bool {
	switch i {
	case IntentNLI, IntentStructured, IntentRaw, IntentNoEdit:
		return true
	}
	return false
}
