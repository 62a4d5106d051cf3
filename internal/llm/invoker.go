package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ErrInvalidRequest indicates an inference request was assembled incorrectly.
var ErrInvalidRequest = errors.New("invalid inference request")

// Invoker sends assembled prompts to the inference service through a
// middleware chain: logging outermost, then any extra middleware, then the
// core service handler.
type Invoker struct {
	handler Handler
}

// NewInvoker builds an Invoker around svc.
func NewInvoker(svc Service, logger *slog.Logger, middlewares ...Middleware) *Invoker {
	chain := append([]Middleware{NewLoggingMiddleware(logger)}, middlewares...)
	return &Invoker{handler: Chain(&serviceHandler{svc: svc}, chain...)}
}

// Invoke performs one inference call. Exactly one of temperature and topP
// must be set. Service failures are returned as *errors.TransportError.
func (i *Invoker) Invoke(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	return i.handler.Handle(ctx, req)
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if len(req.Content) == 0 || req.Content[0].Type != ContentText {
		return fmt.Errorf("%w: content must start with a text block", ErrInvalidRequest)
	}
	if (req.Sampling.Temperature == nil) == (req.Sampling.TopP == nil) {
		return fmt.Errorf("%w: exactly one of temperature and top_p must be set", ErrInvalidRequest)
	}
	if req.Sampling.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive", ErrInvalidRequest)
	}
	return nil
}
