package llm

import (
	"context"
	"log/slog"
	"time"

	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
)

// LoggingMiddleware records the lifecycle of each inference call.
// Prompt text is never logged; only its length.
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates observability middleware with structured logging.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default().With("component", "llm")
	}
	lm := &LoggingMiddleware{logger: logger}
	return lm.Middleware
}

// Middleware wraps handlers with start, completion, and failure logs.
func (m *LoggingMiddleware) Middleware(next Handler) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
		m.logRequest(ctx, req)

		start := time.Now()
		resp, err := next.Handle(ctx, req)
		duration := time.Since(start)

		if err != nil {
			m.handleError(ctx, req, err, duration)
		} else if resp != nil {
			m.handleSuccess(ctx, req, resp, duration)
		}

		return resp, err
	})
}

func (m *LoggingMiddleware) logRequest(ctx context.Context, req *Request) {
	imagesCount, imagesBytes := req.ImageStats()
	fields := []any{
		"request_id", req.RequestID,
		"operation", req.Operation,
		"work_item_id", req.WorkItemID,
		"max_tokens", req.Sampling.MaxTokens,
		"content_blocks", len(req.Content),
		"images_count", imagesCount,
		"images_size_kb", imagesBytes / 1024,
		"system_prompt_length", len(req.System),
	}
	if req.Sampling.Temperature != nil {
		fields = append(fields, "temperature", *req.Sampling.Temperature)
	}
	if req.Sampling.TopP != nil {
		fields = append(fields, "top_p", *req.Sampling.TopP)
	}

	m.logger.InfoContext(ctx, "LLM request started", fields...)
}

func (m *LoggingMiddleware) handleError(ctx context.Context, req *Request, err error, duration time.Duration) {
	errorType := "unknown"
	if wfErr := llmerrors.ClassifyError(err); wfErr != nil {
		errorType = string(wfErr.Type)
	}

	m.logger.ErrorContext(ctx, "LLM request failed",
		"request_id", req.RequestID,
		"operation", req.Operation,
		"work_item_id", req.WorkItemID,
		"duration_ms", duration.Milliseconds(),
		"error_type", errorType,
		"error", err.Error(),
	)
}

func (m *LoggingMiddleware) handleSuccess(ctx context.Context, req *Request, resp *Response, duration time.Duration) {
	m.logger.InfoContext(ctx, "LLM request completed",
		"request_id", req.RequestID,
		"operation", req.Operation,
		"work_item_id", req.WorkItemID,
		"model", resp.Model,
		"duration_ms", duration.Milliseconds(),
		"finish_reason", resp.FinishReason,
		"content_length", len(resp.Text),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"total_tokens", resp.Usage.TotalTokens,
	)
}
