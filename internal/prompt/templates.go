package prompt

import (
	"fmt"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// templateKey selects a template. Child is empty for evaluation; for
// generation and refinement it encodes the process-template dependence of
// Feature decomposition.
type templateKey struct {
	op     domain.Operation
	parent domain.WorkItemType
	child  domain.WorkItemType
}

// template holds the type-specific instructions for one key.
type template struct {
	// instructions is the evaluation criteria block, or the default
	// decomposition prompt used when no override resolves.
	instructions string
	// outputRules describes the required JSON shape.
	outputRules string
}

var templates = buildTemplates()

func lookupTemplate(op domain.Operation, parent, child domain.WorkItemType) (template, error) {
	if op == domain.OperationRefine {
		op = domain.OperationGenerate
	}
	t, ok := templates[templateKey{op: op, parent: parent, child: child}]
	if !ok {
		return template{}, fmt.Errorf("%w: %s %s", domain.ErrUnsupportedType, op, parent)
	}
	return t, nil
}

func buildTemplates() map[templateKey]template {
	storyCriteria := func(noun string) string {
		return fmt.Sprintf(`- Evaluate the %s based on the following criteria:
  - It should generally state the user, the need, and the business value in some way.
  - The acceptance criteria should provide guidance that is testable or verifiable, though it need not be exhaustive.
  - The story should be appropriately sized for a development team to complete within a sprint.`, noun)
	}

	m := map[templateKey]template{
		{op: domain.OperationEvaluate, parent: domain.TypeUserStory}: {
			instructions: storyCriteria("user story"),
			outputRules:  evaluationOutputRules(domain.TypeUserStory),
		},
		{op: domain.OperationEvaluate, parent: domain.TypeProductBacklogItem}: {
			instructions: storyCriteria("product backlog item"),
			outputRules:  evaluationOutputRules(domain.TypeProductBacklogItem),
		},
		{op: domain.OperationEvaluate, parent: domain.TypeEpic}: {
			instructions: `- Evaluate the epic based on the following criteria:
  - It should clearly describe a high-level business objective or strategic goal.
  - The description should provide sufficient business context and rationale.
  - Success criteria should define measurable outcomes or business value.
  - The scope should be appropriate for breaking down into multiple features.`,
			outputRules: evaluationOutputRules(domain.TypeEpic),
		},
		{op: domain.OperationEvaluate, parent: domain.TypeFeature}: {
			instructions: `- Evaluate the feature based on the following criteria:
  - It should describe a cohesive piece of functionality that delivers user value.
  - The description should clearly define the functional boundaries and user interactions.
  - Success criteria should be testable and define what constitutes completion.
  - The scope should be appropriate for breaking down into multiple user stories.`,
			outputRules: evaluationOutputRules(domain.TypeFeature),
		},
	}

	for _, parent := range []domain.WorkItemType{domain.TypeUserStory, domain.TypeProductBacklogItem} {
		m[templateKey{op: domain.OperationGenerate, parent: parent, child: domain.TypeTask}] = template{
			instructions: decompositionPrompt(parent, domain.TypeTask,
				"Your task is to break down the provided %s into a sequence of Tasks that are clear and actionable for developers to work on. Each task should be independent and deployable.",
				"Ensure each Task has a title and a description that guides the developer (why, what, how, technical details, references to relevant systems/APIs).",
				"Do NOT create any Tasks for analysis, investigation, testing, or deployment."),
			outputRules: generationOutputRules("task", false, ""),
		}
	}

	for _, child := range []domain.WorkItemType{domain.TypeUserStory, domain.TypeProductBacklogItem} {
		m[templateKey{op: domain.OperationGenerate, parent: domain.TypeFeature, child: child}] = template{
			instructions: decompositionPrompt(domain.TypeFeature, child,
				"Your task is to break down the provided %s into a sequence of "+child.Plural()+" that are clear and deliver business value.",
				"Ensure each "+string(child)+" has a title, description, and acceptance criteria."),
			outputRules: generationOutputRules(lowerNoun(child), true, "acceptanceCriteria"),
		}
	}

	m[templateKey{op: domain.OperationGenerate, parent: domain.TypeEpic, child: domain.TypeFeature}] = template{
		instructions: decompositionPrompt(domain.TypeEpic, domain.TypeFeature,
			"Your task is to break down the provided %s into a sequence of Features that are clear and deliver business value.",
			"Ensure each Feature has a title, a comprehensive description, and success criteria."),
		outputRules: generationOutputRules("feature", true, "successCriteria"),
	}

	return m
}

func decompositionPrompt(parent, child domain.WorkItemType, scope string, rules ...string) string {
	article := "a"
	if parent == domain.TypeEpic {
		article = "an"
	}
	s := fmt.Sprintf("You are an expert Agile software development assistant that specializes in decomposing %s %s into clear, actionable, and appropriately sized %s.\n**Instructions**\n- %s",
		article, parent, child.Plural(), fmt.Sprintf(scope, parent))
	for _, r := range rules {
		s += "\n- " + r
	}
	return s + fmt.Sprintf("\n- Avoid creating duplicate %s if they already exist.", child.Plural())
}

func evaluationOutputRules(t domain.WorkItemType) string {
	return fmt.Sprintf(`**Output Rules**
- Return a JSON object with the following structure:
  - "pass": boolean (true if the work item is good enough to proceed, false only if it is seriously incomplete or confusing)
  - if "pass" is false, include a "comment" field (string) with a clear explanation of what's missing or unclear, and provide an example of a higher-quality %s that would pass. If you have multiple feedback points, use line breaks and indentations with HTML tags.
- Only output the JSON object, no extra text outside it.`, t)
}

func generationOutputRules(noun string, withCriteria bool, criteriaField string) string {
	title := titleCase(noun)
	s := fmt.Sprintf(`**Output Rules**
- ONLY return a JSON object with the following structure:
  - "workItems": array of %s objects, each with:
    - "title": string (%s title, prefixed with order, e.g., "1. %s Title")
    - "description": string (detailed %s description with HTML formatting)`, noun, noun, title, noun)
	if withCriteria {
		label := "acceptance criteria"
		if criteriaField == "successCriteria" {
			label = "success criteria"
		}
		s += fmt.Sprintf("\n    - %q: string (detailed %s with HTML formatting)", criteriaField, label)
	}
	return s + "\n- DO NOT output any text outside of the JSON object."
}

func lowerNoun(t domain.WorkItemType) string {
	switch t {
	case domain.TypeUserStory:
		return "user story"
	case domain.TypeProductBacklogItem:
		return "product backlog item"
	default:
		return "work item"
	}
}

func titleCase(noun string) string {
	out := []byte(noun)
	upper := true
	for i, c := range out {
		if upper && c >= 'a' && c <= 'z' {
			out[i] = c - 'a' + 'A'
		}
		upper = c == ' '
	}
	return string(out)
}
