// Package feedback turns historical acceptance, modification, and deletion
// signals into an advisory block for task generation prompts.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

// Limits applied to the feedback block.
const (
	DefaultMaxChars     = 2000
	maxSuccessPatterns  = 3
	maxAntiPatterns     = 3
	maxInsights         = 5
	insightConfidence   = 0.7
	exampleDescriptions = 120
)

// Query reads aggregated feedback for a context key. Implementations return
// a nil pattern and no examples when no data exists.
type Query interface {
	GetPatterns(ctx context.Context, key domain.ContextKey) (*domain.FeedbackPattern, error)
	GetExamples(ctx context.Context, key domain.ContextKey) ([]domain.FeedbackExample, error)
}

// Builder produces the advisory block. It never fails: missing or
// unreadable feedback yields an empty string.
type Builder struct {
	query    Query
	maxChars int
	logger   *slog.Logger
}

// NewBuilder creates a Builder. A nil query disables feedback.
func NewBuilder(query Query, maxChars int, logger *slog.Logger) *Builder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if logger == nil {
		logger = slog.Default().With("component", "feedback")
	}
	return &Builder{query: query, maxChars: maxChars, logger: logger}
}

// Applies reports whether feedback is used for item. Only User Story task
// generation is in scope.
func Applies(item *domain.WorkItem) bool {
	return item.Type == domain.TypeUserStory
}

// Build returns the advisory block for item, or "" when feedback does not
// apply or no usable data exists.
func (b *Builder) Build(ctx context.Context, item *domain.WorkItem) string {
	if b.query == nil || !Applies(item) {
		return ""
	}
	key := item.ContextKey()

	pattern, err := b.query.GetPatterns(ctx, key)
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to read feedback patterns", "context_key", key, "error", err)
		pattern = nil
	}
	examples, err := b.query.GetExamples(ctx, key)
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to read feedback examples", "context_key", key, "error", err)
		examples = nil
	}

	sections := make([]string, 0, 4)
	if s := successSection(examples); s != "" {
		sections = append(sections, s)
	}
	if s := antiPatternSection(examples); s != "" {
		sections = append(sections, s)
	}
	if pattern != nil && pattern.SampleSize > 0 {
		sections = append(sections, ratesSection(pattern))
	}
	if pattern != nil {
		if s := insightsSection(pattern.Insights); s != "" {
			sections = append(sections, s)
		}
	}
	if len(sections) == 0 {
		return ""
	}

	block := "**Historical Feedback (advisory)**\nLessons from how teams in this context handled previously generated tasks:\n\n" +
		strings.Join(sections, "\n\n")
	block = bound(block, b.maxChars)

	b.logger.InfoContext(ctx, "Built feedback context",
		"work_item_id", item.ID,
		"context_key", key,
		"examples_count", len(examples),
		"feedback_length", len(block))
	return block
}

func successSection(examples []domain.FeedbackExample) string {
	var lines []string
	for _, ex := range examples {
		if ex.Action != domain.FeedbackAccepted {
			continue
		}
		lines = append(lines, "- "+exampleLine(ex))
		if len(lines) == maxSuccessPatterns {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Tasks that were accepted as generated:\n" + strings.Join(lines, "\n")
}

func antiPatternSection(examples []domain.FeedbackExample) string {
	var lines []string
	for _, ex := range examples {
		if ex.Action != domain.FeedbackDeleted && ex.Action != domain.FeedbackModified {
			continue
		}
		line := fmt.Sprintf("- (%s) %s", ex.Action, exampleLine(ex))
		if ex.Reason != "" {
			line += " Reason: " + ex.Reason
		}
		lines = append(lines, line)
		if len(lines) == maxAntiPatterns {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Tasks that were deleted or reworked (avoid similar output):\n" + strings.Join(lines, "\n")
}

func ratesSection(p *domain.FeedbackPattern) string {
	return fmt.Sprintf("Observed rates over %d generated tasks: %s modified, %s deleted, %s missed (added manually).",
		p.SampleSize, percent(p.ModificationRate), percent(p.DeletionRate), percent(p.MissedTaskRate))
}

func insightsSection(insights []domain.FeedbackInsight) string {
	var lines []string
	for _, in := range insights {
		if in.Confidence <= insightConfidence || strings.TrimSpace(in.Text) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (confidence %s)", in.Text, percent(in.Confidence)))
		if len(lines) == maxInsights {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Insights:\n" + strings.Join(lines, "\n")
}

func exampleLine(ex domain.FeedbackExample) string {
	if ex.Description == "" {
		return ex.Title
	}
	desc := []rune(ex.Description)
	if len(desc) > exampleDescriptions {
		return ex.Title + ": " + string(desc[:exampleDescriptions]) + "..."
	}
	return ex.Title + ": " + ex.Description
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

// bound cuts s to at most n bytes, preferring the last full line.
func bound(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return cut[:i]
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
