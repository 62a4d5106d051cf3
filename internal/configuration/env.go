package configuration

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// FromEnv returns DefaultConfig overlaid with process environment variables
// and validated.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

// Load overlays variables read through lookup onto DefaultConfig.
func Load(lookup LookupFunc) (*Config, error) {
	cfg := DefaultConfig()
	l := loader{lookup: lookup}

	l.stringVar("AZURE_OPENAI_ENDPOINT", &cfg.AzureOpenAI.Endpoint)
	l.stringVar("AZURE_OPENAI_KEY", &cfg.AzureOpenAI.APIKey)
	l.stringVar("AZURE_OPENAI_DEPLOYMENT", &cfg.AzureOpenAI.Deployment)
	l.floatVar("INFERENCE_REQUESTS_PER_SECOND", &cfg.AzureOpenAI.RequestsPerSecond)
	l.intVar("INFERENCE_BURST", &cfg.AzureOpenAI.Burst)

	l.stringVar("AWS_REGION", &cfg.Knowledge.Region)
	l.stringVar("AWS_BEDROCK_KNOWLEDGE_BASE_ID", &cfg.Knowledge.KnowledgeBaseID)
	l.intVar("MAX_KNOWLEDGE_DOCUMENTS", &cfg.Knowledge.MaxResults)

	l.stringVar("REDIS_ADDR", &cfg.Redis.Addr)
	l.stringVar("REDIS_PASSWORD", &cfg.Redis.Password)
	l.intVar("REDIS_DB", &cfg.Redis.DB)

	l.stringVar("AZURE_DEVOPS_TENANT_ID", &cfg.AzureDevOps.TenantID)
	l.stringVar("AZURE_DEVOPS_CLIENT_ID", &cfg.AzureDevOps.ClientID)
	l.stringVar("AZURE_DEVOPS_CLIENT_SECRET", &cfg.AzureDevOps.ClientSecret)
	l.stringVar("AZURE_DEVOPS_SCOPE", &cfg.AzureDevOps.Scope)

	l.stringVar("TEMPORAL_HOST_PORT", &cfg.Temporal.HostPort)
	l.stringVar("TEMPORAL_NAMESPACE", &cfg.Temporal.Namespace)
	l.stringVar("TEMPORAL_TASK_QUEUE", &cfg.Temporal.TaskQueue)

	l.boolVar("FEEDBACK_ENABLED", &cfg.Feedback.Enabled)
	l.intVar("MAX_IMAGES", &cfg.Content.MaxImages)

	var sizeMB int
	if l.intVar("MAX_IMAGE_SIZE_MB", &sizeMB) {
		cfg.Content.MaxImageBytes = sizeMB * bytesPerMB
	}

	if err := errors.Join(l.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loader collects parse errors so every bad variable is reported at once.
type loader struct {
	lookup LookupFunc
	errs   []error
}

func (l *loader) get(key string) (string, bool) {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (l *loader) stringVar(key string, dst *string) {
	if v, ok := l.get(key); ok {
		*dst = v
	}
}

func (l *loader) intVar(key string, dst *int) bool {
	v, ok := l.get(key)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return false
	}
	*dst = n
	return true
}

func (l *loader) floatVar(key string, dst *float64) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return
	}
	*dst = f
}

func (l *loader) boolVar(key string, dst *bool) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return
	}
	*dst = b
}
