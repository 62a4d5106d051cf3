package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// DefaultMaxImages bounds the images listed in a prompt.
const DefaultMaxImages = 3

// Excerpt lengths for knowledge documents and refinement drafts.
const (
	knowledgeExcerpt           = 500
	refinementKnowledgeExcerpt = 300
	draftDescriptionExcerpt    = 150
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Prompt is a composed system and user prompt pair.
type Prompt struct {
	System string
	User   string
}

// Composer assembles prompts from a dispatch table keyed by operation,
// parent type, and child type.
type Composer struct {
	maxImages int
	logger    *slog.Logger
}

// NewComposer creates a Composer. A non-positive maxImages uses DefaultMaxImages.
func NewComposer(maxImages int, logger *slog.Logger) *Composer {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	if logger == nil {
		logger = slog.Default().With("component", "prompt_composer")
	}
	return &Composer{maxImages: maxImages, logger: logger}
}

// ComposeEvaluation builds the prompts asking whether item is well-defined.
// The model must answer {"pass": bool, "comment": string}, with the comment
// required when pass is false.
func (c *Composer) ComposeEvaluation(ctx context.Context, item *domain.WorkItem, docs []domain.KnowledgeDocument) (Prompt, error) {
	tmpl, err := lookupTemplate(domain.OperationEvaluate, item.Type, "")
	if err != nil {
		return Prompt{}, err
	}

	system := fmt.Sprintf(`You are an AI assistant that reviews Azure DevOps work items.
**Instructions**
- Evaluate the work item to check if it is reasonably clear and has enough detail for a developer or team to begin with minimal clarification.
- Your task is to assess the quality of a %s based on the provided title, description, and available criteria fields.
%s
  - If images are provided, treat them as additional context to understand the work item.

%s`, item.Type, tmpl.instructions, tmpl.outputRules)

	var b strings.Builder
	b.WriteString("**Context**\n- Work item:\nUse this information to understand the scope and expectation for evaluation.\n")
	writeWorkItemDetails(&b, item)
	b.WriteString("\n\n- Additional contextual knowledge (if any):\n")
	b.WriteString("Extra domain knowledge, system information, or reference material to guide more context-aware and accurate evaluation.\n  ")
	b.WriteString(orNone(knowledgeSection(docs, knowledgeExcerpt)))
	b.WriteString("\n\n- Images (if any):\n")
	b.WriteString("Visual aids or references that provide additional context for evaluation.\n  ")
	b.WriteString(orNone(c.imagesSection(ctx, item)))

	return Prompt{System: system, User: b.String()}, nil
}

// ComposeGeneration builds the prompts for decomposing item. basePrompt
// replaces the default instructions when non-empty; the output rules for
// the child type are always appended. Existing children are enumerated so
// the model does not duplicate them.
func (c *Composer) ComposeGeneration(
	ctx context.Context,
	item *domain.WorkItem,
	existing []domain.WorkItem,
	docs []domain.KnowledgeDocument,
	feedback string,
	basePrompt string,
) (Prompt, error) {
	child, system, err := c.generationSystem(item, basePrompt)
	if err != nil {
		return Prompt{}, err
	}

	var b strings.Builder
	b.WriteString("**Context**\n- Work item:\nUse this information to understand the scope and expectation to generate relevant ")
	b.WriteString(strings.ToLower(child.Plural()))
	b.WriteString(".\n")
	writeWorkItemDetails(&b, item)

	fmt.Fprintf(&b, "\n\n- Existing %s (if any):\n", child.Plural())
	fmt.Fprintf(&b, "Current %s already created for this %s. Avoid duplicating these; generate only missing or supplementary %s for completeness.\n  ",
		child.Plural(), item.Type, child.Plural())
	b.WriteString(existingChildrenSection(child, existing))

	b.WriteString("\n\n- Images (if any):\n")
	b.WriteString("Visual aids or references that provide additional context for generation.\n  ")
	b.WriteString(orNone(c.imagesSection(ctx, item)))

	b.WriteString("\n\n- Additional contextual knowledge (if any):\n")
	b.WriteString("Extra domain knowledge, system information, or reference material to guide more context-aware and accurate generation.\n  ")
	b.WriteString(orNone(knowledgeSection(docs, knowledgeExcerpt)))

	if strings.TrimSpace(feedback) != "" {
		b.WriteString("\n\n")
		b.WriteString(feedback)
	}

	fmt.Fprintf(&b, "\n\nDo not create %s that only cover analysis, investigation, testing, or deployment.", child.Plural())

	return Prompt{System: system, User: b.String()}, nil
}

// ComposeRefinement builds the prompts for revising a draft list of children
// according to free-text instructions. The model must return the complete
// corrected list, keeping untouched items stable.
func (c *Composer) ComposeRefinement(
	ctx context.Context,
	item *domain.WorkItem,
	drafts []domain.GeneratedWorkItem,
	instructions string,
	existing []domain.WorkItem,
	docs []domain.KnowledgeDocument,
	basePrompt string,
) (Prompt, error) {
	child, system, err := c.generationSystem(item, basePrompt)
	if err != nil {
		return Prompt{}, err
	}

	var b strings.Builder
	b.WriteString("**Refinement Request**\n\n")
	fmt.Fprintf(&b, "You have previously generated a list of %s for the %s: %q.\n", child.Plural(), item.Type, item.Title)
	if crit := item.Criteria(); crit != "" {
		fmt.Fprintf(&b, "%s: %s\n", item.CriteriaKind(), crit)
	}

	b.WriteString("\n**Current Draft List:**\n")
	b.WriteString(orNone(draftSection(drafts)))

	fmt.Fprintf(&b, "\n\n**User Instructions:**\n%q\n", strings.TrimSpace(instructions))

	if len(existing) > 0 {
		fmt.Fprintf(&b, "\n**Existing %s (keep out of the list):**\n", child.Plural())
		b.WriteString(existingChildrenSection(child, existing))
		b.WriteString("\n")
	}

	if ks := knowledgeSection(docs, refinementKnowledgeExcerpt); ks != "" {
		b.WriteString("\nReference Context:\n")
		b.WriteString(ks)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `
**Task:**
Update the list of %s based on the User Instructions.
- If the user asks to add something, add it as a new item.
- If the user asks to remove something, remove it.
- If the user asks to change details, update the relevant item.
- Keep the rest of the list stable unless the instructions imply broader changes.
- Ensure all items remain clear, actionable, and appropriately sized.

Return the COMPLETE updated list of work items in the specified JSON format.`, child.Plural())

	return Prompt{System: system, User: b.String()}, nil
}

func (c *Composer) generationSystem(item *domain.WorkItem, basePrompt string) (domain.WorkItemType, string, error) {
	child, ok := item.ChildType()
	if !ok {
		return "", "", fmt.Errorf("%w: %s", domain.ErrNotDecomposable, item.Type)
	}
	tmpl, err := lookupTemplate(domain.OperationGenerate, item.Type, child)
	if err != nil {
		return "", "", err
	}

	base := strings.TrimSpace(basePrompt)
	if base == "" {
		base = tmpl.instructions
	}
	return child, base + "\n\n" + tmpl.outputRules, nil
}

// imagesSection lists at most maxImages images with alt text.
func (c *Composer) imagesSection(ctx context.Context, item *domain.WorkItem) string {
	images := item.Images
	if len(images) > c.maxImages {
		c.logger.InfoContext(ctx, "Truncating image list",
			"work_item_id", item.ID,
			"images_count", len(images),
			"max_images", c.maxImages)
		images = images[:c.maxImages]
	}

	lines := make([]string, 0, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			c.logger.WarnContext(ctx, "Omitting image without URL", "work_item_id", item.ID)
			continue
		}
		line := fmt.Sprintf("%d. %s", len(lines)+1, img.URL)
		if img.Alt != "" {
			line += " (" + img.Alt + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// writeWorkItemDetails writes the shared item fields, the governing criteria
// when populated, and the variant-specific fields.
func writeWorkItemDetails(b *strings.Builder, item *domain.WorkItem) {
	fmt.Fprintf(b, "  - Work Item Type: %s\n", item.Type)
	fmt.Fprintf(b, "  - Title: %s\n", item.Title)
	fmt.Fprintf(b, "  - Description: %s", item.Description)
	if crit := item.Criteria(); crit != "" {
		fmt.Fprintf(b, "\n  - %s: %s", item.CriteriaKind(), crit)
	}

	for _, f := range variantFields(item) {
		if f.value != "" {
			fmt.Fprintf(b, "\n  - %s: %s", f.label, f.value)
		}
	}
}

type field struct{ label, value string }

func variantFields(item *domain.WorkItem) []field {
	switch item.Type {
	case domain.TypeEpic:
		return []field{
			{"Objective", item.Objective},
			{"Addressed Risks", item.AddressedRisks},
			{"Pursue Risk", item.PursueRisk},
			{"Most Recent Update", item.MostRecentUpdate},
			{"Outstanding Action Items", item.OutstandingActionItems},
		}
	case domain.TypeFeature:
		return []field{{"Business Deliverable", item.BusinessDeliverable}}
	case domain.TypeProductBacklogItem:
		return []field{{"Release Notes", item.ReleaseNotes}, {"QA Notes", item.QANotes}}
	case domain.TypeUserStory:
		return []field{{"Importance", item.Importance}}
	default:
		return nil
	}
}

// existingChildrenSection enumerates children verbatim with detail lines
// chosen by the child type.
func existingChildrenSection(child domain.WorkItemType, existing []domain.WorkItem) string {
	if len(existing) == 0 {
		return "None"
	}

	entries := make([]string, 0, len(existing))
	for i := range existing {
		it := &existing[i]
		var details []field
		switch child {
		case domain.TypeFeature:
			details = []field{{"Business Deliverable", it.BusinessDeliverable}, {"Success Criteria", it.SuccessCriteria}}
		case domain.TypeProductBacklogItem:
			details = []field{
				{"Description", it.Description},
				{"Acceptance Criteria", it.AcceptanceCriteria},
				{"Release Notes", it.ReleaseNotes},
				{"QA Notes", it.QANotes},
			}
		case domain.TypeUserStory:
			details = []field{
				{"Description", it.Description},
				{"Acceptance Criteria", it.AcceptanceCriteria},
				{"Importance", it.Importance},
			}
		default:
			details = []field{{"Description", it.Description}}
		}

		entry := fmt.Sprintf("%d. %s", i+1, it.Title)
		for _, d := range details {
			if d.value != "" {
				entry += fmt.Sprintf("\n   %s: %s", d.label, d.value)
			}
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, "\n\n")
}

func draftSection(drafts []domain.GeneratedWorkItem) string {
	entries := make([]string, 0, len(drafts))
	for i, d := range drafts {
		desc := truncate(htmlTag.ReplaceAllString(d.Description, ""), draftDescriptionExcerpt)
		entries = append(entries, fmt.Sprintf("%d. %s\n   Description: %s...", i+1, d.Title, desc))
	}
	return strings.Join(entries, "\n\n")
}

func knowledgeSection(docs []domain.KnowledgeDocument, excerpt int) string {
	lines := make([]string, 0, len(docs))
	for _, d := range docs {
		lines = append(lines, "- "+truncate(d.Content, excerpt)+"...")
	}
	return strings.Join(lines, "\n")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
