// Package domain provides core types for work item evaluation and decomposition.
// It defines work items and their hierarchy, knowledge documents, inference
// parameters, and the result values returned by the engine. Values are built
// fresh per call and never mutated by the engine.
package domain

import (
	"fmt"
	"slices"
	"strings"
)

// WorkItemType identifies the variant of a work item.
// The type governs which criteria field is populated and which child type
// is produced when the item is decomposed.
type WorkItemType string

const (
	// TypeEpic is a high-level business objective decomposed into Features.
	TypeEpic WorkItemType = "Epic"

	// TypeFeature is a cohesive piece of functionality decomposed into
	// User Stories or Product Backlog Items.
	TypeFeature WorkItemType = "Feature"

	// TypeUserStory is an Agile backlog item decomposed into Tasks.
	TypeUserStory WorkItemType = "User Story"

	// TypeProductBacklogItem is a Scrum backlog item decomposed into Tasks.
	TypeProductBacklogItem WorkItemType = "Product Backlog Item"

	// TypeTask is a leaf item and cannot be decomposed further.
	TypeTask WorkItemType = "Task"
)

// Plural returns the display plural used in prompts and log lines.
func (t WorkItemType) Plural() string {
	switch t {
	case TypeEpic:
		return "Epics"
	case TypeFeature:
		return "Features"
	case TypeUserStory:
		return "User Stories"
	case TypeProductBacklogItem:
		return "Product Backlog Items"
	case TypeTask:
		return "Tasks"
	default:
		return "child work items"
	}
}

// IsBacklogItem reports whether the type is a User Story or Product Backlog Item.
func (t WorkItemType) IsBacklogItem() bool {
	return t == TypeUserStory || t == TypeProductBacklogItem
}

// IsPortfolioItem reports whether the type is an Epic or Feature.
func (t WorkItemType) IsPortfolioItem() bool {
	return t == TypeEpic || t == TypeFeature
}

// ProcessTemplate is the Azure DevOps process a team project follows.
type ProcessTemplate string

const (
	ProcessAgile ProcessTemplate = "Agile"
	ProcessScrum ProcessTemplate = "Scrum"
	ProcessBasic ProcessTemplate = "Basic"
	ProcessCMMI  ProcessTemplate = "CMMI"
)

// ChildTypeOf returns the work item type produced when decomposing t.
// Features yield Product Backlog Items under Scrum and User Stories otherwise.
// The boolean is false for types that cannot be decomposed.
func ChildTypeOf(t WorkItemType, p ProcessTemplate) (WorkItemType, bool) {
	switch t {
	case TypeEpic:
		return TypeFeature, true
	case TypeFeature:
		if p == ProcessScrum {
			return TypeProductBacklogItem, true
		}
		return TypeUserStory, true
	case TypeUserStory, TypeProductBacklogItem:
		return TypeTask, true
	default:
		return "", false
	}
}

// CriteriaKind names the criteria field that governs a work item type.
type CriteriaKind string

const (
	CriteriaNone       CriteriaKind = ""
	CriteriaAcceptance CriteriaKind = "Acceptance Criteria"
	CriteriaSuccess    CriteriaKind = "Success Criteria"
)

// EvaluatedTag marks items that were already processed upstream.
const EvaluatedTag = "Task Genie"

// WorkItemImage references an image embedded in a work item's rich-text fields.
// Entries with a blank URL are skipped when content is built.
type WorkItemImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// WorkItem is a unit of planned work tracked in Azure DevOps.
// Base attributes are shared by every variant; variant fields are only
// meaningful for the type noted next to them.
type WorkItem struct {
	ID              int             `json:"workItemId" validate:"gte=0"`
	Rev             int             `json:"rev,omitempty"`
	Type            WorkItemType    `json:"workItemType" validate:"required,oneof=Epic Feature 'User Story' 'Product Backlog Item' Task"`
	TeamProject     string          `json:"teamProject,omitempty"`
	AreaPath        string          `json:"areaPath,omitempty"`
	IterationPath   string          `json:"iterationPath,omitempty"`
	BusinessUnit    string          `json:"businessUnit,omitempty"`
	System          string          `json:"system,omitempty"`
	ProcessTemplate ProcessTemplate `json:"processTemplate,omitempty"`
	Title           string          `json:"title" validate:"required"`
	Description     string          `json:"description,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	ChangedBy       string          `json:"changedBy,omitempty"`
	Images          []WorkItemImage `json:"images,omitempty"`

	// User Story and Product Backlog Item.
	AcceptanceCriteria string `json:"acceptanceCriteria,omitempty"`
	// User Story.
	Importance string `json:"importance,omitempty"`
	// Product Backlog Item.
	ReleaseNotes string `json:"releaseNotes,omitempty"`
	QANotes      string `json:"qaNotes,omitempty"`

	// Epic and Feature.
	SuccessCriteria string `json:"successCriteria,omitempty"`
	// Epic.
	Objective              string `json:"objective,omitempty"`
	AddressedRisks         string `json:"addressedRisks,omitempty"`
	PursueRisk             string `json:"pursueRisk,omitempty"`
	MostRecentUpdate       string `json:"mostRecentUpdate,omitempty"`
	OutstandingActionItems string `json:"outstandingActionItems,omitempty"`
	// Feature.
	BusinessDeliverable string `json:"businessDeliverable,omitempty"`
}

// Validate checks the work item against its struct constraints.
func (w *WorkItem) Validate() error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkItem, err)
	}
	return nil
}

// CriteriaKind returns the criteria field governing this item's type.
func (w *WorkItem) CriteriaKind() CriteriaKind {
	switch {
	case w.Type.IsBacklogItem():
		return CriteriaAcceptance
	case w.Type.IsPortfolioItem():
		return CriteriaSuccess
	default:
		return CriteriaNone
	}
}

// Criteria returns the populated criteria text for the item's type.
// Returns an empty string when the governing field is empty.
func (w *WorkItem) Criteria() string {
	switch w.CriteriaKind() {
	case CriteriaAcceptance:
		return w.AcceptanceCriteria
	case CriteriaSuccess:
		return w.SuccessCriteria
	default:
		return ""
	}
}

// ChildType returns the type produced when decomposing this item.
func (w *WorkItem) ChildType() (WorkItemType, bool) {
	return ChildTypeOf(w.Type, w.ProcessTemplate)
}

// ContextKey scopes feedback lookups to the item's organizational context.
func (w *WorkItem) ContextKey() ContextKey {
	return NewContextKey(w.AreaPath, w.BusinessUnit, w.System)
}

// PromptKey scopes stored prompt overrides to the item's type and context.
func (w *WorkItem) PromptKey() string {
	return fmt.Sprintf("%s#%s", w.Type, w.ContextKey())
}

// HasTag reports whether the item carries tag, ignoring case and surrounding space.
func (w *WorkItem) HasTag(tag string) bool {
	return slices.ContainsFunc(w.Tags, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), tag)
	})
}

// ContextKey is the composite areaPath#businessUnit#system identifier.
type ContextKey string

// NewContextKey joins the context parts with '#'. Empty parts are kept so
// that keys stay positional.
func NewContextKey(areaPath, businessUnit, system string) ContextKey {
	return ContextKey(strings.Join([]string{areaPath, businessUnit, system}, "#"))
}
