// Package activity provides common infrastructure for Temporal activity
// implementations: execution context extraction, context-safe logging and
// heartbeats, and mapping of classified errors to Temporal application errors.
package activity

import (
	"context"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
)

// ExecutionContext identifies the activity execution for log correlation.
type ExecutionContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
	Attempt    int32
}

// BaseActivities provides helpers shared by activity types. It works both
// inside a Temporal activity context and in plain unit tests.
type BaseActivities struct{}

// NewBaseActivities creates a BaseActivities instance.
func NewBaseActivities() BaseActivities {
	return BaseActivities{}
}

// GetExecutionContext extracts execution details from ctx. Outside an
// activity context, where activity.GetInfo panics, it returns test IDs.
func (b *BaseActivities) GetExecutionContext(ctx context.Context) ExecutionContext {
	var ec ExecutionContext

	func() {
		defer func() {
			if r := recover(); r != nil {
				ec = ExecutionContext{
					WorkflowID: "test-workflow",
					RunID:      "test-run-" + uuid.New().String()[:8],
					ActivityID: "test-activity",
					Attempt:    1,
				}
			}
		}()

		info := activity.GetInfo(ctx)
		ec.WorkflowID = info.WorkflowExecution.ID
		ec.RunID = info.WorkflowExecution.RunID
		ec.ActivityID = info.ActivityID
		ec.Attempt = info.Attempt
	}()

	return ec
}

// RecordHeartbeat records a heartbeat; ignored outside activity contexts.
func (b *BaseActivities) RecordHeartbeat(ctx context.Context, details ...any) {
	RecordHeartbeat(ctx, details...)
}

// ApplicationError converts err into a Temporal application error tagged
// with its classification. Only errors classified as retryable are left
// retryable; the rest fail the activity permanently.
func ApplicationError(op string, err error) error {
	if err == nil {
		return nil
	}

	wfErr := llmerrors.ClassifyError(err)
	details := []any{string(wfErr.Type), wfErr.Code}
	if wfErr.ShouldRetry() {
		return temporal.NewApplicationErrorWithCause(op+": "+wfErr.Message, string(wfErr.Type), err, details...)
	}
	return temporal.NewNonRetryableApplicationError(op+": "+wfErr.Message, string(wfErr.Type), err, details...)
}

// SafeLog logs at info level through the activity logger. Outside an
// activity context the call is dropped.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore
		}
	}()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogWarn is SafeLog at warn level.
func SafeLogWarn(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore
		}
	}()
	activity.GetLogger(ctx).Warn(msg, keyvals...)
}

// SafeLogError is SafeLog at error level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore
		}
	}()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat records an activity heartbeat; ignored outside activity contexts.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() {
		if recover() != nil {
			// Not an activity context, ignore
		}
	}()
	activity.RecordHeartbeat(ctx, details...)
}
