package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptional(t *testing.T) {
	ctx := context.Background()
	log := discardLogger()

	got := optional(ctx, log, "ok", "fallback", func(context.Context) (string, error) { return "value", nil })
	assert.Equal(t, "value", got)

	got = optional(ctx, log, "err", "fallback", func(context.Context) (string, error) { return "partial", errors.New("boom") })
	assert.Equal(t, "fallback", got)

	got = optional(ctx, log, "panic", "fallback", func(context.Context) (string, error) { panic("boom") })
	assert.Equal(t, "fallback", got)
}
