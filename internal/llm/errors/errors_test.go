package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	transport := &TransportError{Operation: domain.OperationGenerate, Model: "gpt-4o", WorkItemID: 7, Cause: cause}

	wrapped := fmt.Errorf("generate children for work item 7: %w", transport)
	assert.ErrorIs(t, wrapped, ErrTransport)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, transport.Error(), "operation=generate")
	assert.Contains(t, transport.Error(), "work_item=7")

	malformed := NewMalformedResponseError("missing pass", "noise")
	assert.ErrorIs(t, malformed, ErrMalformedResponse)
	assert.NotErrorIs(t, malformed, ErrTruncatedResponse)

	truncated := &TruncatedResponseError{OutputTokens: 10240, Limit: 10240}
	assert.ErrorIs(t, truncated, ErrTruncatedResponse)
	assert.Equal(t, "truncated model response: 10240 output tokens reached limit 10240", truncated.Error())
}

func TestNewMalformedResponseErrorBoundsSnippet(t *testing.T) {
	raw := make([]byte, 1000)
	for i := range raw {
		raw[i] = 'x'
	}
	err := NewMalformedResponseError("no json", string(raw))
	assert.Len(t, err.Snippet, maxSnippet)

	multi := strings.Repeat("x", maxSnippet-1) + "é and more"
	err = NewMalformedResponseError("no json", multi)
	assert.True(t, utf8.ValidString(err.Snippet))
	assert.Equal(t, strings.Repeat("x", maxSnippet-1), err.Snippet)
}

func TestTruncatedResponseErrorFromFinishReason(t *testing.T) {
	err := &TruncatedResponseError{OutputTokens: 4000, FinishReason: "length"}
	assert.ErrorIs(t, err, ErrTruncatedResponse)
	assert.Equal(t, `truncated model response: stopped after 4000 output tokens (finish reason "length")`, err.Error())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{name: "transport", err: &TransportError{Operation: domain.OperationEvaluate, Cause: errors.New("eof")}, wantType: ErrorTypeTransport, retryable: true},
		{name: "wrapped transport", err: fmt.Errorf("evaluate work item 1: %w", &TransportError{Cause: errors.New("eof")}), wantType: ErrorTypeTransport, retryable: true},
		{name: "malformed", err: NewMalformedResponseError("no json", ""), wantType: ErrorTypeMalformedResponse},
		{name: "truncated", err: &TruncatedResponseError{OutputTokens: 10300, Limit: 10240}, wantType: ErrorTypeTruncatedResponse},
		{name: "validation", err: &ValidationError{Field: "title", Message: "required"}, wantType: ErrorTypeValidation},
		{name: "invalid work item", err: fmt.Errorf("%w: title", domain.ErrInvalidWorkItem), wantType: ErrorTypeValidation},
		{name: "not decomposable", err: domain.ErrNotDecomposable, wantType: ErrorTypeValidation},
		{name: "deadline", err: context.DeadlineExceeded, wantType: ErrorTypeTransport, retryable: true},
		{name: "canceled", err: context.Canceled, wantType: ErrorTypeCanceled},
		{name: "unknown", err: errors.New("boom"), wantType: ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wfErr := ClassifyError(tt.err)
			require.NotNil(t, wfErr)
			assert.Equal(t, tt.wantType, wfErr.Type)
			assert.Equal(t, tt.retryable, wfErr.ShouldRetry())
			assert.ErrorIs(t, wfErr, tt.err)
		})
	}

	assert.Nil(t, ClassifyError(nil))
}

func TestWorkflowError(t *testing.T) {
	wfErr := &WorkflowError{Type: ErrorTypeTransport, Message: "unreachable", Code: "TRANSPORT"}
	assert.Equal(t, "[transport:TRANSPORT] unreachable", wfErr.Error())
	assert.True(t, wfErr.IsRetryable())

	noCode := &WorkflowError{Type: ErrorTypeMalformedResponse, Message: "no json"}
	assert.Equal(t, "[malformed_response] no json", noCode.Error())
	assert.False(t, noCode.IsRetryable())

	existing := &WorkflowError{Type: ErrorTypeValidation, Message: "x"}
	assert.Same(t, existing, ClassifyError(fmt.Errorf("wrap: %w", existing)))
}
