// internal/apperr/apperr.go
//
// Request-scoped error taxonomy.
//
// Context
// -------
// Services return these sentinels (usually wrapped with `%w`) so the HTTP
// layer can pick a status code without knowing where the failure came
// from.  The mapping lives in internal/respond.
//
//   - ErrUnauthenticated  no valid identity on the request.
//   - ErrForbidden        identity known, action not permitted.
//   - ErrNotFound         object missing or not visible to the caller.
//   - ErrConflict         unique constraint hit (domain, section key).
//   - *ValidationError    malformed or out-of-range input.
//
// Notes
// -----
// • Not-found deliberately covers "exists but hidden" for read paths.
// • Oxford commas, two spaces after periods.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// ValidationError carries per-field messages.  Fields may be empty when
// the whole payload is unusable (e.g. bad JSON).
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{
		Message: "invalid input",
		Fields:  map[string]string{field: msg},
	}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
