// Package activities exposes the engine operations as Temporal activities.
// The activities add duplicate-evaluation suppression and retry
// classification; all domain behavior lives in the engine.
package activities

import (
	"context"
	"strings"

	"github.com/ahrav/go-taskgenie/internal/domain"
	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
	"github.com/ahrav/go-taskgenie/pkg/activity"
)

// Engine is the subset of *engine.Engine used by the activities.
type Engine interface {
	EvaluateWorkItem(ctx context.Context, item *domain.WorkItem) (domain.EvaluationResult, error)
	GenerateChildren(ctx context.Context, item *domain.WorkItem, existing []domain.WorkItem, params *domain.InferenceParams) (domain.GenerationResult, error)
	RefineChildren(ctx context.Context, item *domain.WorkItem, drafts []domain.GeneratedWorkItem, instructions string, existing []domain.WorkItem, params *domain.InferenceParams) (domain.GenerationResult, error)
}

// Activities handles work item Temporal activities.
type Activities struct {
	activity.BaseActivities
	engine Engine
}

// NewActivities creates activities backed by eng.
func NewActivities(base activity.BaseActivities, eng Engine) *Activities {
	return &Activities{BaseActivities: base, engine: eng}
}

// EvaluateWorkItem judges whether the work item is ready to be worked on.
// Items already tagged as evaluated are skipped without calling the model.
func (a *Activities) EvaluateWorkItem(ctx context.Context, input EvaluateInput) (*EvaluateOutput, error) {
	ec := a.GetExecutionContext(ctx)
	item := input.WorkItem

	if item.HasTag(domain.EvaluatedTag) {
		activity.SafeLog(ctx, "Work item already evaluated, skipping",
			"workflow_id", ec.WorkflowID,
			"work_item_id", item.ID)
		return &EvaluateOutput{Result: domain.SkippedResult(), Skipped: true}, nil
	}

	activity.SafeLog(ctx, "Starting EvaluateWorkItem activity",
		"workflow_id", ec.WorkflowID,
		"attempt", ec.Attempt,
		"work_item_id", item.ID,
		"work_item_type", item.Type)

	result, err := a.engine.EvaluateWorkItem(ctx, &item)
	if err != nil {
		activity.SafeLogError(ctx, "EvaluateWorkItem failed", "work_item_id", item.ID, "error", err)
		return nil, activity.ApplicationError("EvaluateWorkItem", err)
	}

	activity.SafeLog(ctx, "EvaluateWorkItem completed",
		"work_item_id", item.ID,
		"pass", result.Pass,
		"sources_count", len(result.Sources))
	return &EvaluateOutput{Result: result}, nil
}

// GenerateChildren decomposes the work item into child items.
func (a *Activities) GenerateChildren(ctx context.Context, input GenerateInput) (*domain.GenerationResult, error) {
	ec := a.GetExecutionContext(ctx)
	item := input.WorkItem

	activity.SafeLog(ctx, "Starting GenerateChildren activity",
		"workflow_id", ec.WorkflowID,
		"attempt", ec.Attempt,
		"work_item_id", item.ID,
		"work_item_type", item.Type,
		"existing_count", len(input.ExistingChildren))

	result, err := a.engine.GenerateChildren(ctx, &item, input.ExistingChildren, input.Params)
	if err != nil {
		activity.SafeLogError(ctx, "GenerateChildren failed", "work_item_id", item.ID, "error", err)
		return nil, activity.ApplicationError("GenerateChildren", err)
	}

	a.RecordHeartbeat(ctx, len(result.WorkItems))
	activity.SafeLog(ctx, "GenerateChildren completed",
		"work_item_id", item.ID,
		"generated_count", len(result.WorkItems),
		"documents_count", len(result.Documents))
	return &result, nil
}

// RefineChildren revises a draft list of children from user instructions.
func (a *Activities) RefineChildren(ctx context.Context, input RefineInput) (*domain.GenerationResult, error) {
	ec := a.GetExecutionContext(ctx)
	item := input.WorkItem

	activity.SafeLog(ctx, "Starting RefineChildren activity",
		"workflow_id", ec.WorkflowID,
		"attempt", ec.Attempt,
		"work_item_id", item.ID,
		"draft_count", len(input.Drafts))

	if strings.TrimSpace(input.Instructions) == "" {
		activity.SafeLogWarn(ctx, "RefineChildren rejected, no instructions", "work_item_id", item.ID)
		return nil, activity.ApplicationError("RefineChildren",
			&llmerrors.ValidationError{Field: "instructions", Message: "refinement instructions are required"})
	}

	result, err := a.engine.RefineChildren(ctx, &item, input.Drafts, input.Instructions, input.ExistingChildren, input.Params)
	if err != nil {
		activity.SafeLogError(ctx, "RefineChildren failed", "work_item_id", item.ID, "error", err)
		return nil, activity.ApplicationError("RefineChildren", err)
	}

	activity.SafeLog(ctx, "RefineChildren completed",
		"work_item_id", item.ID,
		"refined_count", len(result.WorkItems))
	return &result, nil
}
