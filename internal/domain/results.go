package domain

// EvaluationResult is the verdict on whether a work item is well-defined.
// Comment is non-empty whenever Pass is false.
type EvaluationResult struct {
	Pass    bool     `json:"pass"`
	Comment string   `json:"comment,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// GeneratedWorkItem is one child item proposed by the model.
type GeneratedWorkItem struct {
	Type                WorkItemType `json:"workItemType"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	AcceptanceCriteria  string       `json:"acceptanceCriteria,omitempty"`
	SuccessCriteria     string       `json:"successCriteria,omitempty"`
	BusinessDeliverable string       `json:"businessDeliverable,omitempty"`
}

// GenerationResult holds generated children and the knowledge used to produce them.
type GenerationResult struct {
	WorkItems []GeneratedWorkItem  `json:"workItems"`
	Documents []KnowledgeDocument `json:"documents"`
}

// Sources returns the document sources backing the result.
func (r *GenerationResult) Sources() []string {
	return Sources(r.Documents)
}

// SkippedResult builds the evaluation result returned for items already
// carrying EvaluatedTag.
func SkippedResult() EvaluationResult {
	return EvaluationResult{Pass: true, Comment: "Work item already evaluated."}
}

// CloneWorkItems copies items so prompt composition never holds references
// into caller state.
func CloneWorkItems(items []WorkItem) []WorkItem {
	if items == nil {
		return nil
	}
	out := make([]WorkItem, len(items))
	for i, it := range items {
		it.Tags = cloneStrings(it.Tags)
		if it.Images != nil {
			it.Images = append([]WorkItemImage(nil), it.Images...)
		}
		out[i] = it
	}
	return out
}
