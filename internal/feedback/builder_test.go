package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

type fakeQuery struct {
	pattern     *domain.FeedbackPattern
	examples    []domain.FeedbackExample
	patternErr  error
	examplesErr error
	keys        []domain.ContextKey
}

func (f *fakeQuery) GetPatterns(_ context.Context, key domain.ContextKey) (*domain.FeedbackPattern, error) {
	f.keys = append(f.keys, key)
	return f.pattern, f.patternErr
}

func (f *fakeQuery) GetExamples(_ context.Context, _ domain.ContextKey) ([]domain.FeedbackExample, error) {
	return f.examples, f.examplesErr
}

func story() *domain.WorkItem {
	return &domain.WorkItem{ID: 3, Type: domain.TypeUserStory, Title: "Pay", AreaPath: "Shop", BusinessUnit: "Retail", System: "Web"}
}

func TestBuildFullBlock(t *testing.T) {
	q := &fakeQuery{
		pattern: &domain.FeedbackPattern{
			SampleSize:       40,
			ModificationRate: 0.25,
			DeletionRate:     0.1,
			MissedTaskRate:   0.05,
			Insights: []domain.FeedbackInsight{
				{Text: "Teams split API and UI work", Confidence: 0.9},
				{Text: "Low confidence guess", Confidence: 0.7},
			},
		},
		examples: []domain.FeedbackExample{
			{Action: domain.FeedbackAccepted, Title: "Add payment endpoint", Description: "POST /payments"},
			{Action: domain.FeedbackDeleted, Title: "Write test plan", Reason: "testing-only task"},
			{Action: domain.FeedbackModified, Title: "Build UI"},
			{Action: domain.FeedbackMissed, Title: "Add audit log"},
		},
	}

	block := NewBuilder(q, 0, nil).Build(context.Background(), story())

	assert.Equal(t, []domain.ContextKey{"Shop#Retail#Web"}, q.keys)
	assert.Contains(t, block, "- Add payment endpoint: POST /payments")
	assert.Contains(t, block, "- (deleted) Write test plan Reason: testing-only task")
	assert.Contains(t, block, "- (modified) Build UI")
	assert.NotContains(t, block, "Add audit log")
	assert.Contains(t, block, "40 generated tasks: 25% modified, 10% deleted, 5% missed")
	assert.Contains(t, block, "Teams split API and UI work (confidence 90%)")
	assert.NotContains(t, block, "Low confidence guess", "threshold is strictly above 0.7")
}

func TestBuildLimits(t *testing.T) {
	var examples []domain.FeedbackExample
	for i := 0; i < 6; i++ {
		examples = append(examples,
			domain.FeedbackExample{Action: domain.FeedbackAccepted, Title: "accepted-" + string(rune('a'+i))},
			domain.FeedbackExample{Action: domain.FeedbackDeleted, Title: "deleted-" + string(rune('a'+i))},
		)
	}
	var insights []domain.FeedbackInsight
	for i := 0; i < 8; i++ {
		insights = append(insights, domain.FeedbackInsight{Text: "insight-" + string(rune('a'+i)), Confidence: 0.95})
	}
	q := &fakeQuery{examples: examples, pattern: &domain.FeedbackPattern{Insights: insights}}

	block := NewBuilder(q, 0, nil).Build(context.Background(), story())
	assert.Equal(t, 3, strings.Count(block, "accepted-"))
	assert.Equal(t, 3, strings.Count(block, "deleted-"))
	assert.Equal(t, 5, strings.Count(block, "insight-"))
	assert.NotContains(t, block, "Observed rates", "no rates without samples")
}

func TestBuildBoundsLength(t *testing.T) {
	long := strings.Repeat("x", 300)
	examples := []domain.FeedbackExample{
		{Action: domain.FeedbackAccepted, Title: long},
		{Action: domain.FeedbackAccepted, Title: long},
		{Action: domain.FeedbackDeleted, Title: long},
	}
	block := NewBuilder(&fakeQuery{examples: examples}, 500, nil).Build(context.Background(), story())
	assert.LessOrEqual(t, len(block), 500)
	assert.NotEmpty(t, block)
}

func TestBuildNeverFails(t *testing.T) {
	ctx := context.Background()

	failing := &fakeQuery{patternErr: errors.New("redis down"), examplesErr: errors.New("redis down")}
	assert.Empty(t, NewBuilder(failing, 0, nil).Build(ctx, story()))

	assert.Empty(t, NewBuilder(&fakeQuery{}, 0, nil).Build(ctx, story()))
	assert.Empty(t, NewBuilder(nil, 0, nil).Build(ctx, story()))

	partial := &fakeQuery{patternErr: errors.New("boom"), examples: []domain.FeedbackExample{{Action: domain.FeedbackAccepted, Title: "ok"}}}
	assert.Contains(t, NewBuilder(partial, 0, nil).Build(ctx, story()), "- ok")
}

func TestBuildOnlyForUserStories(t *testing.T) {
	q := &fakeQuery{examples: []domain.FeedbackExample{{Action: domain.FeedbackAccepted, Title: "x"}}}
	for _, typ := range []domain.WorkItemType{domain.TypeEpic, domain.TypeFeature, domain.TypeProductBacklogItem} {
		item := story()
		item.Type = typ
		assert.Empty(t, NewBuilder(q, 0, nil).Build(context.Background(), item), typ)
	}
	assert.Empty(t, q.keys)
}

func TestBound(t *testing.T) {
	assert.Equal(t, "abc", bound("abc", 10))
	assert.Equal(t, "line1", bound("line1\nline2", 8))
	assert.Equal(t, "é", bound("éé", 3))
}
