package configuration

import "time"

// Inference and retrieval defaults.
const (
	DefaultInferenceBurst        = 1
	DefaultMaxKnowledgeDocuments = 3
	DefaultAWSRegion             = "us-west-2"
)

// Content defaults.
const (
	DefaultMaxImages      = 3
	DefaultMaxImageSizeMB = 5
	DefaultFetchTimeout   = 30 * time.Second
	bytesPerMB            = 1024 * 1024
)

// Feedback defaults.
const (
	DefaultFeedbackMaxChars = 2000
	DefaultFeedbackTTL      = 7 * 24 * time.Hour
)

// Temporal defaults.
const (
	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "taskgenie"
)

// DefaultAzureDevOpsScope is the Entra ID resource scope for Azure DevOps.
const DefaultAzureDevOpsScope = "499b84ac-1321-427f-aa17-267ca6975798/.default"

// DefaultConfig returns a configuration with every optional setting filled
// in. Credentials and endpoints are left empty.
func DefaultConfig() *Config {
	return &Config{
		AzureOpenAI: AzureOpenAIConfig{
			Burst: DefaultInferenceBurst,
		},
		Knowledge: KnowledgeConfig{
			Region:     DefaultAWSRegion,
			MaxResults: DefaultMaxKnowledgeDocuments,
		},
		AzureDevOps: AzureDevOpsConfig{
			Scope: DefaultAzureDevOpsScope,
		},
		Temporal: TemporalConfig{
			HostPort:  DefaultTemporalHostPort,
			Namespace: DefaultTemporalNamespace,
			TaskQueue: DefaultTaskQueue,
		},
		Content: ContentConfig{
			MaxImages:     DefaultMaxImages,
			MaxImageBytes: DefaultMaxImageSizeMB * bytesPerMB,
			FetchTimeout:  DefaultFetchTimeout,
		},
		Feedback: FeedbackConfig{
			Enabled:  false,
			MaxChars: DefaultFeedbackMaxChars,
			TTL:      DefaultFeedbackTTL,
		},
	}
}
