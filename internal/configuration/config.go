// Package configuration holds worker settings and loads them from the
// environment.
package configuration

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds settings for the engine and its collaborators.
type Config struct {
	AzureOpenAI AzureOpenAIConfig `json:"azure_openai"`
	Knowledge   KnowledgeConfig   `json:"knowledge"`
	Redis       RedisConfig       `json:"redis"`
	AzureDevOps AzureDevOpsConfig `json:"azure_devops"`
	Temporal    TemporalConfig    `json:"temporal"`
	Content     ContentConfig     `json:"content"`
	Feedback    FeedbackConfig    `json:"feedback"`
}

// AzureOpenAIConfig selects the chat deployment used for inference.
type AzureOpenAIConfig struct {
	Endpoint   string `json:"endpoint" validate:"required,url"`
	APIKey     string `json:"-" validate:"required"` // Sensitive
	Deployment string `json:"deployment" validate:"required"`

	// RequestsPerSecond paces inference calls; zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gte=0"`
	Burst             int     `json:"burst" validate:"gte=0"`
}

// KnowledgeConfig points at the Bedrock knowledge base. An empty
// KnowledgeBaseID disables retrieval.
type KnowledgeConfig struct {
	Region          string `json:"region" validate:"required_with=KnowledgeBaseID"`
	KnowledgeBaseID string `json:"knowledge_base_id"`
	MaxResults      int    `json:"max_results" validate:"gte=1,lte=100"`
}

// RedisConfig is used for prompt overrides and feedback. An empty Addr
// disables both.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"-"` // Sensitive
	DB       int    `json:"db" validate:"gte=0"`
}

// AzureDevOpsConfig holds the service principal used to download
// attachments. Without a client secret, Azure DevOps attachment URLs fail to
// fetch and are skipped; images hosted elsewhere are fetched anonymously.
type AzureDevOpsConfig struct {
	TenantID     string `json:"tenant_id" validate:"required_with=ClientSecret"`
	ClientID     string `json:"client_id" validate:"required_with=ClientSecret"`
	ClientSecret string `json:"-"` // Sensitive
	Scope        string `json:"scope" validate:"required"`
}

// TemporalConfig identifies the Temporal frontend and task queue.
type TemporalConfig struct {
	HostPort  string `json:"host_port" validate:"required,hostname_port"`
	Namespace string `json:"namespace" validate:"required"`
	TaskQueue string `json:"task_queue" validate:"required"`
}

// ContentConfig bounds image attachments sent to the model.
type ContentConfig struct {
	MaxImages     int           `json:"max_images" validate:"gte=1,lte=10"`
	MaxImageBytes int           `json:"max_image_bytes" validate:"gt=0"`
	FetchTimeout  time.Duration `json:"fetch_timeout" validate:"gt=0"`
}

// FeedbackConfig controls the advisory feedback block for task generation.
type FeedbackConfig struct {
	Enabled  bool          `json:"enabled"`
	MaxChars int           `json:"max_chars" validate:"gt=0"`
	TTL      time.Duration `json:"ttl" validate:"gte=0"`
}

// Validate checks the configuration for missing or out-of-range values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Feedback.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("invalid configuration: feedback requires a redis address")
	}
	return nil
}

// RetrievalEnabled reports whether a knowledge base is configured.
func (c *Config) RetrievalEnabled() bool { return c.Knowledge.KnowledgeBaseID != "" }

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool { return c.Redis.Addr != "" }
