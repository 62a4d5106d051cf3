package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-taskgenie/internal/domain"
	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
)

// fakeService records requests and returns canned results.
type fakeService struct {
	mu    sync.Mutex
	reqs  []*Request
	resp  *Response
	err   error
	model string
}

func (f *fakeService) Invoke(_ context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return nil, nil
	}
	cp := *f.resp
	return &cp, nil
}

func (f *fakeService) Model() string {
	if f.model == "" {
		return "gpt-4o"
	}
	return f.model
}

func f64(v float64) *float64 { return &v }

func validRequest() *Request {
	return &Request{
		Operation:  domain.OperationGenerate,
		WorkItemID: 42,
		System:     "system",
		Content:    []ContentBlock{TextBlock("user"), ImageBlock(FormatPNG, make([]byte, 2048))},
		Sampling:   domain.Sampling{MaxTokens: 10240, Temperature: f64(0.5)},
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
				order = append(order, name)
				return next.Handle(ctx, req)
			})
		}
	}
	core := HandlerFunc(func(context.Context, *Request) (*Response, error) {
		order = append(order, "core")
		return &Response{}, nil
	})

	_, err := Chain(core, mw("outer"), mw("inner")).Handle(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "core"}, order)
}

func TestInvoker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("success assigns request id", func(t *testing.T) {
		svc := &fakeService{resp: &Response{Text: `{"pass":true}`, Usage: Usage{OutputTokens: 12, Reported: true}}}
		resp, err := NewInvoker(svc, logger).Invoke(context.Background(), validRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, resp.RequestID)
		assert.Equal(t, "gpt-4o", resp.Model)
		require.Len(t, svc.reqs, 1)
		assert.Equal(t, resp.RequestID, svc.reqs[0].RequestID)
	})

	t.Run("service failure becomes transport error", func(t *testing.T) {
		svc := &fakeService{err: errors.New("503 service unavailable"), model: "gpt-4o-mini"}
		_, err := NewInvoker(svc, logger).Invoke(context.Background(), validRequest())
		require.ErrorIs(t, err, llmerrors.ErrTransport)

		var transportErr *llmerrors.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, domain.OperationGenerate, transportErr.Operation)
		assert.Equal(t, "gpt-4o-mini", transportErr.Model)
		assert.Equal(t, 42, transportErr.WorkItemID)
		assert.Len(t, svc.reqs, 1, "no retry inside the invoker")
	})

	t.Run("nil response becomes transport error", func(t *testing.T) {
		_, err := NewInvoker(&fakeService{}, logger).Invoke(context.Background(), validRequest())
		assert.ErrorIs(t, err, llmerrors.ErrTransport)
	})

	t.Run("rejects both sampling controls", func(t *testing.T) {
		req := validRequest()
		req.Sampling.TopP = f64(0.9)
		svc := &fakeService{resp: &Response{}}
		_, err := NewInvoker(svc, logger).Invoke(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Empty(t, svc.reqs)
	})

	t.Run("rejects image-first content", func(t *testing.T) {
		req := validRequest()
		req.Content = req.Content[1:]
		_, err := NewInvoker(&fakeService{resp: &Response{}}, logger).Invoke(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestLoggingMiddlewareOmitsPrompts(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	svc := &fakeService{resp: &Response{Text: "{}", Usage: Usage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120, Reported: true}}}
	req := validRequest()
	req.System = "SECRET SYSTEM PROMPT"
	_, err := NewInvoker(svc, logger).Invoke(context.Background(), req)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "LLM request started")
	assert.Contains(t, out, "LLM request completed")
	assert.Contains(t, out, "images_count=1")
	assert.Contains(t, out, "output_tokens=20")
	assert.NotContains(t, out, "SECRET SYSTEM PROMPT")
}
