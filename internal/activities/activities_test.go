package activities

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/go-taskgenie/internal/domain"
	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
	"github.com/ahrav/go-taskgenie/pkg/activity"
)

// fakeEngine returns canned results and counts calls.
type fakeEngine struct {
	evalCalls   int
	genCalls    int
	refineCalls int

	evalResult domain.EvaluationResult
	genResult  domain.GenerationResult
	err        error

	lastInstructions string
}

func (f *fakeEngine) EvaluateWorkItem(context.Context, *domain.WorkItem) (domain.EvaluationResult, error) {
	f.evalCalls++
	return f.evalResult, f.err
}

func (f *fakeEngine) GenerateChildren(context.Context, *domain.WorkItem, []domain.WorkItem, *domain.InferenceParams) (domain.GenerationResult, error) {
	f.genCalls++
	return f.genResult, f.err
}

func (f *fakeEngine) RefineChildren(_ context.Context, _ *domain.WorkItem, _ []domain.GeneratedWorkItem, instructions string, _ []domain.WorkItem, _ *domain.InferenceParams) (domain.GenerationResult, error) {
	f.refineCalls++
	f.lastInstructions = instructions
	return f.genResult, f.err
}

func storyItem() domain.WorkItem {
	return domain.WorkItem{ID: 7, Type: domain.TypeUserStory, Title: "Save card", AcceptanceCriteria: "Tokenized"}
}

func TestEvaluateWorkItemActivity(t *testing.T) {
	t.Run("skips already evaluated items", func(t *testing.T) {
		eng := &fakeEngine{}
		a := NewActivities(activity.NewBaseActivities(), eng)

		item := storyItem()
		item.Tags = []string{"backlog", " task genie "}

		out, err := a.EvaluateWorkItem(context.Background(), EvaluateInput{WorkItem: item})
		require.NoError(t, err)
		assert.True(t, out.Skipped)
		assert.True(t, out.Result.Pass)
		assert.Equal(t, 0, eng.evalCalls)
	})

	t.Run("runs in the temporal test environment", func(t *testing.T) {
		eng := &fakeEngine{evalResult: domain.EvaluationResult{Pass: false, Comment: "Needs acceptance criteria.", Sources: []string{"doc"}}}
		a := NewActivities(activity.NewBaseActivities(), eng)

		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestActivityEnvironment()
		env.RegisterActivity(a.EvaluateWorkItem)

		val, err := env.ExecuteActivity(a.EvaluateWorkItem, EvaluateInput{WorkItem: storyItem()})
		require.NoError(t, err)

		var out *EvaluateOutput
		require.NoError(t, val.Get(&out))
		assert.False(t, out.Skipped)
		assert.False(t, out.Result.Pass)
		assert.Equal(t, "Needs acceptance criteria.", out.Result.Comment)
		assert.Equal(t, []string{"doc"}, out.Result.Sources)
		assert.Equal(t, 1, eng.evalCalls)
	})
}

func TestGenerateChildrenActivity(t *testing.T) {
	eng := &fakeEngine{genResult: domain.GenerationResult{
		WorkItems: []domain.GeneratedWorkItem{{Type: domain.TypeTask, Title: "Create vault client"}},
	}}
	a := NewActivities(activity.NewBaseActivities(), eng)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(a.GenerateChildren)

	val, err := env.ExecuteActivity(a.GenerateChildren, GenerateInput{WorkItem: storyItem()})
	require.NoError(t, err)

	var out *domain.GenerationResult
	require.NoError(t, val.Get(&out))
	require.Len(t, out.WorkItems, 1)
	assert.Equal(t, "Create vault client", out.WorkItems[0].Title)
}

func TestRefineChildrenActivity(t *testing.T) {
	eng := &fakeEngine{genResult: domain.GenerationResult{
		WorkItems: []domain.GeneratedWorkItem{{Type: domain.TypeTask, Title: "A"}, {Type: domain.TypeTask, Title: "B"}},
	}}
	a := NewActivities(activity.NewBaseActivities(), eng)

	out, err := a.RefineChildren(context.Background(), RefineInput{
		WorkItem:     storyItem(),
		Drafts:       []domain.GeneratedWorkItem{{Type: domain.TypeTask, Title: "A"}},
		Instructions: "add B",
	})
	require.NoError(t, err)
	assert.Len(t, out.WorkItems, 2)
	assert.Equal(t, "add B", eng.lastInstructions)
}

func TestRefineChildrenActivityRequiresInstructions(t *testing.T) {
	eng := &fakeEngine{}
	a := NewActivities(activity.NewBaseActivities(), eng)

	_, err := a.RefineChildren(context.Background(), RefineInput{
		WorkItem:     storyItem(),
		Drafts:       []domain.GeneratedWorkItem{{Type: domain.TypeTask, Title: "A"}},
		Instructions: "  ",
	})
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, string(llmerrors.ErrorTypeValidation), appErr.Type())

	var valErr *llmerrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "instructions", valErr.Field)
	assert.Equal(t, 0, eng.refineCalls)
}

func TestActivityErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		nonRetryable bool
	}{
		{
			name: "transport failure retries",
			err: fmt.Errorf("generate children for work item 7: %w",
				&llmerrors.TransportError{Operation: domain.OperationGenerate, Cause: errors.New("503")}),
		},
		{
			name:         "truncation does not retry",
			err:          fmt.Errorf("generate children for work item 7: %w", &llmerrors.TruncatedResponseError{OutputTokens: 10240, Limit: 10240}),
			nonRetryable: true,
		},
		{
			name:         "not decomposable does not retry",
			err:          fmt.Errorf("generate children for work item 7: %w", domain.ErrNotDecomposable),
			nonRetryable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewActivities(activity.NewBaseActivities(), &fakeEngine{err: tt.err})

			_, err := a.GenerateChildren(context.Background(), GenerateInput{WorkItem: storyItem()})
			require.Error(t, err)

			var appErr *temporal.ApplicationError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.nonRetryable, appErr.NonRetryable())
		})
	}
}
