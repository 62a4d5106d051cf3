// Package worker builds the engine from configuration and registers its
// activities with a Temporal worker.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-taskgenie/internal/configuration"
	"github.com/ahrav/go-taskgenie/internal/content"
	"github.com/ahrav/go-taskgenie/internal/engine"
	"github.com/ahrav/go-taskgenie/internal/feedback"
	"github.com/ahrav/go-taskgenie/internal/knowledge"
	"github.com/ahrav/go-taskgenie/internal/llm"
	"github.com/ahrav/go-taskgenie/internal/prompt"
	"github.com/ahrav/go-taskgenie/internal/store"
)

// Runtime is the engine plus the connections it owns.
type Runtime struct {
	Engine *engine.Engine
	redis  *redis.Client
}

// Close releases connections held by the runtime.
func (r *Runtime) Close() error {
	if r.redis == nil {
		return nil
	}
	return r.redis.Close()
}

// InitializeEngine wires production collaborators from cfg. Inference is
// required; knowledge retrieval, stored prompts, feedback, and
// authenticated image downloads degrade to disabled when unconfigured or
// unreachable.
func InitializeEngine(ctx context.Context, cfg *configuration.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("initialize engine: nil configuration")
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := llm.NewAzureOpenAIService(cfg.AzureOpenAI.Endpoint, cfg.AzureOpenAI.APIKey, cfg.AzureOpenAI.Deployment)
	if err != nil {
		return nil, fmt.Errorf("initialize inference service: %w", err)
	}

	var middlewares []llm.Middleware
	if rps := cfg.AzureOpenAI.RequestsPerSecond; rps > 0 {
		middlewares = append(middlewares, llm.NewRateLimitMiddleware(rps, cfg.AzureOpenAI.Burst, logger.With("component", "llm_ratelimit")))
	}

	rt := &Runtime{}
	deps := engine.Dependencies{
		Invoker:   llm.NewInvoker(svc, logger.With("component", "llm"), middlewares...),
		Retriever: knowledge.NewRetriever(initKnowledge(ctx, cfg, logger), cfg.Knowledge.MaxResults, logger.With("component", "knowledge")),
		Composer:  prompt.NewComposer(cfg.Content.MaxImages, logger.With("component", "prompt_composer")),
	}

	var lookup prompt.ConfigLookup
	if cfg.RedisEnabled() {
		client, err := store.NewRedisClient(ctx, store.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.WarnContext(ctx, "Redis unavailable, stored prompts and feedback disabled", "error", err)
		} else {
			rt.redis = client
			lookup = store.NewRedisConfigStore(client)
			if cfg.Feedback.Enabled {
				deps.Feedback = feedback.NewBuilder(
					store.NewRedisFeedbackStore(client, cfg.Feedback.TTL),
					cfg.Feedback.MaxChars,
					logger.With("component", "feedback"))
			}
		}
	}
	deps.Resolver = prompt.NewResolver(lookup, logger.With("component", "prompt_resolver"))

	fetcher := content.NewHTTPImageFetcher(content.HTTPFetcherConfig{
		Timeout:  cfg.Content.FetchTimeout,
		MaxBytes: cfg.Content.MaxImageBytes,
	}, initTokens(ctx, cfg, logger), logger.With("component", "image_fetcher"))
	deps.Content = content.NewBuilder(fetcher, cfg.Content.MaxImages, cfg.Content.MaxImageBytes,
		logger.With("component", "content_builder"))

	eng, err := engine.New(deps, logger.With("component", "engine"))
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Engine = eng

	logger.InfoContext(ctx, "Engine initialized",
		"deployment", svc.Model(),
		"retrieval_enabled", cfg.RetrievalEnabled(),
		"stored_prompts_enabled", lookup != nil,
		"feedback_enabled", deps.Feedback != nil)
	return rt, nil
}

func initKnowledge(ctx context.Context, cfg *configuration.Config, logger *slog.Logger) knowledge.Service {
	if !cfg.RetrievalEnabled() {
		return nil
	}
	kb, err := knowledge.NewBedrockRetriever(ctx, cfg.Knowledge.Region, cfg.Knowledge.KnowledgeBaseID)
	if err != nil {
		logger.WarnContext(ctx, "Knowledge base unavailable, retrieval disabled", "error", err)
		return nil
	}
	return kb
}

func initTokens(ctx context.Context, cfg *configuration.Config, logger *slog.Logger) content.TokenSource {
	ado := cfg.AzureDevOps
	if ado.ClientSecret == "" {
		return nil
	}
	tokens, err := content.NewClientSecretTokenCache(ado.TenantID, ado.ClientID, ado.ClientSecret, ado.Scope)
	if err != nil {
		logger.WarnContext(ctx, "Azure DevOps credential unavailable, attachment downloads disabled", "error", err)
		return nil
	}
	return tokens
}
