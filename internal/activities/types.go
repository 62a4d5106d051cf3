package activities

import "github.com/ahrav/go-taskgenie/internal/domain"

// EvaluateInput is the payload for EvaluateWorkItem.
type EvaluateInput struct {
	WorkItem domain.WorkItem `json:"workItem"`
}

// EvaluateOutput carries the verdict. Skipped is set when the item was
// already evaluated and the model was not called.
type EvaluateOutput struct {
	Result  domain.EvaluationResult `json:"result"`
	Skipped bool                    `json:"skipped"`
}

// GenerateInput is the payload for GenerateChildren.
type GenerateInput struct {
	WorkItem         domain.WorkItem         `json:"workItem"`
	ExistingChildren []domain.WorkItem       `json:"existingChildren,omitempty"`
	Params           *domain.InferenceParams `json:"params,omitempty"`
}

// RefineInput is the payload for RefineChildren.
type RefineInput struct {
	WorkItem         domain.WorkItem            `json:"workItem"`
	Drafts           []domain.GeneratedWorkItem `json:"drafts"`
	Instructions     string                     `json:"instructions"`
	ExistingChildren []domain.WorkItem          `json:"existingChildren,omitempty"`
	Params           *domain.InferenceParams    `json:"params,omitempty"`
}
