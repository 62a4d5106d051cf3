package errors

import (
	"context"
	"errors"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// ClassifyError transforms engine errors into WorkflowError with retry guidance.
// Typed errors are checked first, then sentinels; anything else is unknown
// and non-retryable.
func ClassifyError(err error) *WorkflowError {
	if err == nil {
		return nil
	}

	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr
	}

	if classified := classifyTypedErrors(err); classified != nil {
		return classified
	}

	return classifySentinelErrors(err)
}

// classifyTypedErrors handles strongly-typed error classification.
func classifyTypedErrors(err error) *WorkflowError {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return &WorkflowError{
			Type:      ErrorTypeTransport,
			Message:   transportErr.Error(),
			Code:      "TRANSPORT",
			Retryable: true,
			Details: map[string]any{
				"operation":    string(transportErr.Operation),
				"model":        transportErr.Model,
				"work_item_id": transportErr.WorkItemID,
			},
			Cause: err,
		}
	}

	var malformedErr *MalformedResponseError
	if errors.As(err, &malformedErr) {
		return &WorkflowError{
			Type:      ErrorTypeMalformedResponse,
			Message:   malformedErr.Error(),
			Code:      "MALFORMED_RESPONSE",
			Retryable: false,
			Details:   map[string]any{"reason": malformedErr.Reason},
			Cause:     err,
		}
	}

	var truncatedErr *TruncatedResponseError
	if errors.As(err, &truncatedErr) {
		return &WorkflowError{
			Type:      ErrorTypeTruncatedResponse,
			Message:   truncatedErr.Error(),
			Code:      "TRUNCATED_RESPONSE",
			Retryable: false,
			Details: map[string]any{
				"output_tokens": truncatedErr.OutputTokens,
				"limit":         truncatedErr.Limit,
				"finish_reason": truncatedErr.FinishReason,
			},
			Cause: err,
		}
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return &WorkflowError{
			Type:      ErrorTypeValidation,
			Message:   valErr.Error(),
			Code:      "VALIDATION",
			Retryable: false,
			Details:   map[string]any{"field": valErr.Field},
			Cause:     err,
		}
	}

	return nil
}

// classifySentinelErrors handles sentinel error classification via errors.Is.
func classifySentinelErrors(err error) *WorkflowError {
	switch {
	case errors.Is(err, ErrTransport):
		return &WorkflowError{Type: ErrorTypeTransport, Message: err.Error(), Code: "TRANSPORT", Retryable: true, Cause: err}
	case errors.Is(err, ErrMalformedResponse):
		return &WorkflowError{Type: ErrorTypeMalformedResponse, Message: err.Error(), Code: "MALFORMED_RESPONSE", Cause: err}
	case errors.Is(err, ErrTruncatedResponse):
		return &WorkflowError{Type: ErrorTypeTruncatedResponse, Message: err.Error(), Code: "TRUNCATED_RESPONSE", Cause: err}
	case errors.Is(err, domain.ErrInvalidWorkItem),
		errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrNotDecomposable),
		errors.Is(err, domain.ErrUnsupportedType):
		return &WorkflowError{Type: ErrorTypeValidation, Message: err.Error(), Code: "VALIDATION", Cause: err}
	case errors.Is(err, context.Canceled):
		return &WorkflowError{Type: ErrorTypeCanceled, Message: err.Error(), Code: "CANCELED", Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &WorkflowError{Type: ErrorTypeTransport, Message: err.Error(), Code: "TIMEOUT", Retryable: true, Cause: err}
	}

	return &WorkflowError{
		Type:      ErrorTypeUnknown,
		Message:   "Unknown error",
		Code:      "UNKNOWN",
		Retryable: false,
		Details:   map[string]any{"original_error": err.Error()},
		Cause:     err,
	}
}
