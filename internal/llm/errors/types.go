// Package errors defines the failure taxonomy for work item inference.
// Transport failures are fatal and carry operation context, response
// failures reject untrustworthy model output, and ClassifyError maps any of
// them onto retry guidance for the activity boundary.
package errors

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// ErrorType categorizes engine failures for retry classification.
type ErrorType string

const (
	// ErrorTypeTransport indicates the inference or retrieval service was unreachable (retryable).
	ErrorTypeTransport ErrorType = "transport"

	// ErrorTypeMalformedResponse indicates missing or unparseable JSON in model output.
	ErrorTypeMalformedResponse ErrorType = "malformed_response"

	// ErrorTypeTruncatedResponse indicates the output-token ceiling was reached.
	ErrorTypeTruncatedResponse ErrorType = "truncated_response"

	// ErrorTypeValidation indicates caller input failed validation.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeCanceled indicates the caller canceled the context.
	ErrorTypeCanceled ErrorType = "canceled"

	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	// ErrTransport indicates a collaborator call failed before a response was received.
	ErrTransport = errors.New("inference transport failure")

	// ErrMalformedResponse indicates model output did not contain the expected structure.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrTruncatedResponse indicates model output hit the token ceiling.
	ErrTruncatedResponse = errors.New("truncated model response")

	// ErrInvalidWorkItem indicates that a work item failed validation.
	ErrInvalidWorkItem = domain.ErrInvalidWorkItem
)

// TransportError wraps a failed inference call with the context needed to
// correlate it. It never carries credentials.
type TransportError struct {
	Operation  domain.Operation `json:"operation"`
	Model      string           `json:"model"`
	WorkItemID int              `json:"work_item_id"`
	Cause      error            `json:"-"`
}

// Error returns the failure with operation, model, and work item context.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: operation=%s model=%s work_item=%d: %v",
		ErrTransport, e.Operation, e.Model, e.WorkItemID, e.Cause)
}

// Unwrap returns the underlying collaborator error.
func (e *TransportError) Unwrap() error { return e.Cause }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// MalformedResponseError reports model output that could not be turned into
// a typed result.
type MalformedResponseError struct {
	Reason  string `json:"reason"`
	Snippet string `json:"snippet,omitempty"` // Leading model text for diagnosis
}

// maxSnippet bounds how much raw model text an error retains.
const maxSnippet = 200

// NewMalformedResponseError builds the error, keeping a bounded snippet of raw.
func NewMalformedResponseError(reason, raw string) *MalformedResponseError {
	if len(raw) > maxSnippet {
		n := maxSnippet
		for n > 0 && !utf8.RuneStart(raw[n]) {
			n--
		}
		raw = raw[:n]
	}
	return &MalformedResponseError{Reason: reason, Snippet: raw}
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
}

// Is matches ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// TruncatedResponseError reports output usage at or above the ceiling, or a
// service that stopped generating because a token cap was hit.
type TruncatedResponseError struct {
	OutputTokens int    `json:"output_tokens"`
	Limit        int    `json:"limit,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

func (e *TruncatedResponseError) Error() string {
	if e.Limit == 0 {
		return fmt.Sprintf("%s: stopped after %d output tokens (finish reason %q)", ErrTruncatedResponse, e.OutputTokens, e.FinishReason)
	}
	return fmt.Sprintf("%s: %d output tokens reached limit %d", ErrTruncatedResponse, e.OutputTokens, e.Limit)
}

// Is matches ErrTruncatedResponse.
func (e *TruncatedResponseError) Is(target error) bool { return target == ErrTruncatedResponse }

// ValidationError captures input validation failures at the activity boundary.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}
