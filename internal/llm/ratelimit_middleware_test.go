package llm

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	calls := 0
	core := HandlerFunc(func(context.Context, *Request) (*Response, error) {
		calls++
		return &Response{Text: "ok"}, nil
	})

	// A near-zero rate leaves only the initial burst available.
	h := Chain(core, NewRateLimitMiddleware(0.001, 1, logger))

	resp, err := h.Handle(context.Background(), &Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Handle(ctx, &Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
