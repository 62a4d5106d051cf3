package domain

import "fmt"

// Operation names one of the three engine operations.
type Operation string

const (
	OperationEvaluate Operation = "evaluate"
	OperationGenerate Operation = "generate"
	OperationRefine   Operation = "refine"
)

// Inference defaults shared by every operation.
const (
	// MaxOutputTokens is the output-token ceiling. Responses reporting usage at
	// or above it are treated as truncated.
	MaxOutputTokens = 10240

	// EvaluationMaxTokens bounds evaluation responses, which are short verdicts.
	EvaluationMaxTokens = 2048

	// DefaultTemperature applies when neither temperature nor topP is set.
	DefaultTemperature = 0.5
)

// InferenceParams carries caller-supplied overrides for one generation call.
// Temperature and TopP are mutually exclusive sampling controls.
type InferenceParams struct {
	Prompt      string   `json:"prompt,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" validate:"gte=0,lte=10240"`
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	TopP        *float64 `json:"top_p,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// Validate checks parameter ranges.
func (p *InferenceParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// Sampling is the resolved sampling configuration forwarded to the model.
// Exactly one of Temperature and TopP is non-nil.
type Sampling struct {
	MaxTokens   int
	Temperature *float64
	TopP        *float64
}

// Sampling resolves the parameters for op. Temperature wins when set, then
// TopP, then DefaultTemperature. Evaluation is always capped at
// EvaluationMaxTokens; other operations use MaxTokens or MaxOutputTokens.
// A nil receiver yields the defaults for op.
func (p *InferenceParams) Sampling(op Operation) Sampling {
	s := Sampling{MaxTokens: MaxOutputTokens}
	if op == OperationEvaluate {
		s.MaxTokens = EvaluationMaxTokens
	}

	if p == nil {
		t := DefaultTemperature
		s.Temperature = &t
		return s
	}

	if op != OperationEvaluate && p.MaxTokens > 0 {
		s.MaxTokens = p.MaxTokens
	}

	switch {
	case p.Temperature != nil:
		t := *p.Temperature
		s.Temperature = &t
	case p.TopP != nil:
		v := *p.TopP
		s.TopP = &v
	default:
		t := DefaultTemperature
		s.Temperature = &t
	}
	return s
}
