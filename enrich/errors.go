package enrich

import (
	"errors"
	"fmt"
)

// Sentinel errors for the enrichment client.
var (
	// ErrEmptyPrompt is returned when the prompt is blank.
	ErrEmptyPrompt = errors.New("enrich: prompt cannot be empty")

	// ErrInvalidParams is returned when generation parameters fail
	// validation before any backend call.
	ErrInvalidParams = errors.New("enrich: invalid parameters")

	// ErrEmptyResponse is returned when the backend call succeeds but
	// the response carries no usable text.
	ErrEmptyResponse = errors.New("enrich: backend returned no text")
)

// BackendError is the failure type the enrichment client returns. CallMade
// reports whether a backend request was actually issued: false means the
// failure happened before any I/O (validation), true means the call was
// made and failed or returned an unusable response. Callers that fall back
// to the original prompt can key off this distinction.
type BackendError struct {
	CallMade bool
	Err      error
}

func (e *BackendError) Error() string {
	if e.CallMade {
		return fmt.Sprintf("enrichment backend call failed: %v", e.Err)
	}
	return fmt.Sprintf("enrichment rejected before call: %v", e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
