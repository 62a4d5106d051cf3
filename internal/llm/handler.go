package llm

import (
	"context"
	"errors"

	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
)

// Service is the hosted inference collaborator.
// Implementations send the system prompt and ordered content blocks with the
// given sampling configuration and return the raw model text.
type Service interface {
	Invoke(ctx context.Context, req *Request) (*Response, error)
	// Model identifies the deployment or model id used for error context.
	Model() string
}

// Handler processes inference requests through a composable middleware pipeline.
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, *Request) (*Response, error)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Middleware transforms a Handler into an enhanced Handler.
type Middleware func(Handler) Handler

// Chain builds a middleware pipeline around a core handler.
// Middleware executes in the order provided with first middleware outermost.
func Chain(h Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// serviceHandler is the core handler that calls the inference service.
// Any service failure becomes a TransportError; there is no retry here.
type serviceHandler struct {
	svc Service
}

// Handle implements Handler by invoking the service once.
func (h *serviceHandler) Handle(ctx context.Context, req *Request) (*Response, error) {
	resp, err := h.svc.Invoke(ctx, req)
	if err != nil {
		var transportErr *llmerrors.TransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		return nil, &llmerrors.TransportError{
			Operation:  req.Operation,
			Model:      h.svc.Model(),
			WorkItemID: req.WorkItemID,
			Cause:      err,
		}
	}
	if resp == nil {
		return nil, &llmerrors.TransportError{
			Operation:  req.Operation,
			Model:      h.svc.Model(),
			WorkItemID: req.WorkItemID,
			Cause:      errors.New("service returned no response"),
		}
	}
	if resp.Model == "" {
		resp.Model = h.svc.Model()
	}
	resp.RequestID = req.RequestID
	return resp, nil
}
