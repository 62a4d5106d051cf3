// Package prompt resolves prompt overrides and composes the system and user
// prompts for each operation and work item type.
package prompt

import (
	"context"
	"log/slog"
	"strings"
)

// ConfigLookup reads stored prompt overrides by prompt key
// (type#areaPath#businessUnit#system). A missing key reports found=false.
type ConfigLookup interface {
	Get(ctx context.Context, key string) (prompt string, found bool, err error)
}

// Source records where a resolved prompt came from.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceStored   Source = "stored"
	SourceDefault  Source = "default"
)

// Resolution is the effective base prompt. Prompt is empty when Source is
// SourceDefault, meaning the built-in template applies.
type Resolution struct {
	Prompt string
	Source Source
}

// Resolver applies override priority: explicit per-call prompt, then a
// stored override, then the built-in default.
type Resolver struct {
	lookup ConfigLookup
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil lookup disables stored overrides.
func NewResolver(lookup ConfigLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default().With("component", "prompt_resolver")
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve never fails: lookup errors are logged and treated as no override.
func (r *Resolver) Resolve(ctx context.Context, explicit, key string) Resolution {
	if p := strings.TrimSpace(explicit); p != "" {
		r.logger.DebugContext(ctx, "Using explicit prompt override", "prompt_key", key)
		return Resolution{Prompt: p, Source: SourceExplicit}
	}

	if r.lookup == nil {
		r.logger.WarnContext(ctx, "Prompt config store not configured, using default prompt", "prompt_key", key)
		return Resolution{Source: SourceDefault}
	}

	stored, found, err := r.lookup.Get(ctx, key)
	switch {
	case err != nil:
		r.logger.WarnContext(ctx, "Prompt override lookup failed, using default prompt", "prompt_key", key, "error", err)
	case found && strings.TrimSpace(stored) != "":
		r.logger.InfoContext(ctx, "Using stored prompt override", "prompt_key", key)
		return Resolution{Prompt: strings.TrimSpace(stored), Source: SourceStored}
	}
	return Resolution{Source: SourceDefault}
}
