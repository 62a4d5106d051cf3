package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// optional runs a best-effort step. A returned error or a panic in fn is
// logged and replaced by fallback, so auxiliary lookups never fail the
// operation that uses them.
func optional[T any](ctx context.Context, logger *slog.Logger, name string, fallback T, fn func(context.Context) (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Optional step panicked, using fallback",
				"step", name,
				"error", fmt.Sprint(r))
			out = fallback
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Optional step failed, using fallback",
			"step", name,
			"error", err)
		return fallback
	}
	return v
}
