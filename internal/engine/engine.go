// Package engine evaluates work items and decomposes them into children.
// Each call is an independent unit of work: knowledge retrieval, optional
// feedback, prompt resolution and composition, image assembly, inference,
// and response parsing run sequentially, and the first fatal error is
// returned with the operation and work item ID.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahrav/go-taskgenie/internal/content"
	"github.com/ahrav/go-taskgenie/internal/domain"
	"github.com/ahrav/go-taskgenie/internal/feedback"
	"github.com/ahrav/go-taskgenie/internal/knowledge"
	"github.com/ahrav/go-taskgenie/internal/llm"
	"github.com/ahrav/go-taskgenie/internal/prompt"
)

// ErrMissingInvoker is returned by New when no inference invoker is supplied.
var ErrMissingInvoker = errors.New("engine requires an inference invoker")

var errNilItem = fmt.Errorf("%w: nil work item", domain.ErrInvalidWorkItem)

// Dependencies are the collaborators used by the engine. Only Invoker is
// required; nil components fall back to disabled variants.
type Dependencies struct {
	Invoker   *llm.Invoker
	Retriever *knowledge.Retriever
	Resolver  *prompt.Resolver
	Composer  *prompt.Composer
	Content   *content.Builder
	// Feedback is nil when feedback-driven enhancement is disabled.
	Feedback *feedback.Builder
}

// Engine exposes the evaluation, generation, and refinement operations.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	invoker   *llm.Invoker
	retriever *knowledge.Retriever
	resolver  *prompt.Resolver
	composer  *prompt.Composer
	content   *content.Builder
	feedback  *feedback.Builder
	logger    *slog.Logger
}

// New creates an Engine from deps.
func New(deps Dependencies, logger *slog.Logger) (*Engine, error) {
	if deps.Invoker == nil {
		return nil, ErrMissingInvoker
	}
	if logger == nil {
		logger = slog.Default().With("component", "engine")
	}

	e := &Engine{
		invoker:   deps.Invoker,
		retriever: deps.Retriever,
		resolver:  deps.Resolver,
		composer:  deps.Composer,
		content:   deps.Content,
		feedback:  deps.Feedback,
		logger:    logger,
	}
	if e.retriever == nil {
		e.retriever = knowledge.NewRetriever(nil, 0, logger)
	}
	if e.resolver == nil {
		e.resolver = prompt.NewResolver(nil, logger)
	}
	if e.composer == nil {
		e.composer = prompt.NewComposer(0, logger)
	}
	if e.content == nil {
		e.content = content.NewBuilder(nil, 0, 0, logger)
	}
	return e, nil
}

// EvaluateWorkItem judges whether item is defined well enough to start.
// A failing verdict always carries a comment explaining what is missing.
func (e *Engine) EvaluateWorkItem(ctx context.Context, item *domain.WorkItem) (domain.EvaluationResult, error) {
	if item == nil {
		return domain.EvaluationResult{}, fmt.Errorf("evaluate work item: %w", errNilItem)
	}
	wrap := func(err error) error { return fmt.Errorf("evaluate work item %d: %w", item.ID, err) }
	if err := item.Validate(); err != nil {
		return domain.EvaluationResult{}, wrap(err)
	}

	docs := e.retrieve(ctx, knowledge.BuildEvaluationQuery(item), knowledge.BuildEvaluationFilters(item.Type))

	p, err := e.composer.ComposeEvaluation(ctx, item, docs)
	if err != nil {
		return domain.EvaluationResult{}, wrap(err)
	}

	var params *domain.InferenceParams
	resp, err := e.invoke(ctx, domain.OperationEvaluate, item, p, params.Sampling(domain.OperationEvaluate))
	if err != nil {
		return domain.EvaluationResult{}, wrap(err)
	}

	result, err := llm.ParseEvaluation(resp)
	if err != nil {
		return domain.EvaluationResult{}, wrap(err)
	}
	result.Sources = domain.Sources(docs)

	e.logger.InfoContext(ctx, "Work item evaluated",
		"work_item_id", item.ID,
		"work_item_type", item.Type,
		"pass", result.Pass)
	return result, nil
}

// GenerateChildren decomposes item into children of its child type,
// avoiding duplicates of existing. params may be nil.
func (e *Engine) GenerateChildren(
	ctx context.Context,
	item *domain.WorkItem,
	existing []domain.WorkItem,
	params *domain.InferenceParams,
) (domain.GenerationResult, error) {
	if item == nil {
		return domain.GenerationResult{}, fmt.Errorf("generate children: %w", errNilItem)
	}
	wrap := func(err error) error { return fmt.Errorf("generate children for work item %d: %w", item.ID, err) }
	if err := item.Validate(); err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	child, err := checkDecomposable(item, params)
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	docs := e.retrieve(ctx, knowledge.BuildGenerationQuery(item), knowledge.BuildGenerationFilters(item))
	advisory := e.feedbackBlock(ctx, item)
	base := e.resolver.Resolve(ctx, explicitPrompt(params), item.PromptKey())

	p, err := e.composer.ComposeGeneration(ctx, item, domain.CloneWorkItems(existing), docs, advisory, base.Prompt)
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	resp, err := e.invoke(ctx, domain.OperationGenerate, item, p, params.Sampling(domain.OperationGenerate))
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	items, err := llm.ParseGeneration(resp, child)
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	e.logger.InfoContext(ctx, "Child work items generated",
		"work_item_id", item.ID,
		"work_item_type", item.Type,
		"child_type", child,
		"prompt_source", base.Source,
		"generated_count", len(items),
		"existing_count", len(existing))
	return domain.GenerationResult{WorkItems: items, Documents: docs}, nil
}

// RefineChildren revises a draft list of children according to free-text
// instructions and returns the complete revised list. params may be nil.
func (e *Engine) RefineChildren(
	ctx context.Context,
	item *domain.WorkItem,
	drafts []domain.GeneratedWorkItem,
	instructions string,
	existing []domain.WorkItem,
	params *domain.InferenceParams,
) (domain.GenerationResult, error) {
	if item == nil {
		return domain.GenerationResult{}, fmt.Errorf("refine children: %w", errNilItem)
	}
	wrap := func(err error) error { return fmt.Errorf("refine children for work item %d: %w", item.ID, err) }
	if err := item.Validate(); err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	if strings.TrimSpace(instructions) == "" {
		return domain.GenerationResult{}, wrap(fmt.Errorf("%w: refinement instructions are required", domain.ErrInvalidParams))
	}
	child, err := checkDecomposable(item, params)
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	docs := e.retrieve(ctx, knowledge.BuildGenerationQuery(item), knowledge.BuildGenerationFilters(item))
	base := e.resolver.Resolve(ctx, explicitPrompt(params), item.PromptKey())

	p, err := e.composer.ComposeRefinement(ctx, item, append([]domain.GeneratedWorkItem(nil), drafts...),
		instructions, domain.CloneWorkItems(existing), docs, base.Prompt)
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	resp, err := e.invoke(ctx, domain.OperationRefine, item, p, params.Sampling(domain.OperationRefine))
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	items, err := llm.ParseGeneration(resp, child)
	if err != nil {
		return domain.GenerationResult{}, wrap(err)
	}

	e.logger.InfoContext(ctx, "Child work items refined",
		"work_item_id", item.ID,
		"child_type", child,
		"draft_count", len(drafts),
		"refined_count", len(items))
	return domain.GenerationResult{WorkItems: items, Documents: docs}, nil
}

func (e *Engine) retrieve(ctx context.Context, query string, filter *knowledge.Filter) []domain.KnowledgeDocument {
	return optional(ctx, e.logger, "knowledge_retrieval", []domain.KnowledgeDocument(nil),
		func(ctx context.Context) ([]domain.KnowledgeDocument, error) {
			return e.retriever.Retrieve(ctx, query, filter), nil
		})
}

func (e *Engine) feedbackBlock(ctx context.Context, item *domain.WorkItem) string {
	if e.feedback == nil || !feedback.Applies(item) {
		return ""
	}
	return optional(ctx, e.logger, "feedback_context", "",
		func(ctx context.Context) (string, error) {
			return e.feedback.Build(ctx, item), nil
		})
}

func (e *Engine) invoke(
	ctx context.Context,
	op domain.Operation,
	item *domain.WorkItem,
	p prompt.Prompt,
	sampling domain.Sampling,
) (*llm.Response, error) {
	textOnly := []llm.ContentBlock{llm.TextBlock(p.User)}
	blocks := optional(ctx, e.logger, "image_content", textOnly,
		func(ctx context.Context) ([]llm.ContentBlock, error) {
			return e.content.Build(ctx, item, p.User), nil
		})

	return e.invoker.Invoke(ctx, &llm.Request{
		Operation:  op,
		WorkItemID: item.ID,
		System:     p.System,
		Content:    blocks,
		Sampling:   sampling,
	})
}


func checkDecomposable(item *domain.WorkItem, params *domain.InferenceParams) (domain.WorkItemType, error) {
	if params != nil {
		if err := params.Validate(); err != nil {
			return "", err
		}
	}
	child, ok := item.ChildType()
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotDecomposable, item.Type)
	}
	return child, nil
}

func explicitPrompt(params *domain.InferenceParams) string {
	if params == nil {
		return ""
	}
	return params.Prompt
}
