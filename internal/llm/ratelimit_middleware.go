package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// slowWaitThreshold is the wait after which a throttled call is logged.
const slowWaitThreshold = time.Second

// NewRateLimitMiddleware paces inference calls with a process-wide token
// bucket. Calls wait for capacity rather than fail; a canceled context ends
// the wait with the context error.
func NewRateLimitMiddleware(perSecond float64, burst int, logger *slog.Logger) Middleware {
	if burst < 1 {
		burst = 1
	}
	if logger == nil {
		logger = slog.Default().With("component", "llm_ratelimit")
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for inference capacity: %w", err)
			}
			if waited := time.Since(start); waited >= slowWaitThreshold {
				logger.InfoContext(ctx, "Inference call throttled",
					"request_id", req.RequestID,
					"operation", req.Operation,
					"waited_ms", waited.Milliseconds())
			}
			return next.Handle(ctx, req)
		})
	}
}
