package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahrav/go-taskgenie/internal/domain"
	llmerrors "github.com/ahrav/go-taskgenie/internal/llm/errors"
)

// WorkItemsKey is the array key carrying generated children.
const WorkItemsKey = "workItems"

// ExtractJSON parses the substring between the first '{' and the last '}'
// of raw. Leading and trailing commentary is ignored. It reports false when
// either marker is missing, the markers are inverted, or the substring is not
// a JSON object.
func ExtractJSON(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// FinishReasonLength is reported when generation stopped at the request's
// token cap.
const FinishReasonLength = "length"

// CheckTruncation rejects responses whose reported output usage reached the
// ceiling, or that the service stopped at a lower caller-supplied cap.
// Responses without usage metadata or a finish reason pass.
func CheckTruncation(resp *Response) error {
	usage := resp.Usage
	if usage.Reported && usage.OutputTokens >= domain.MaxOutputTokens {
		return &llmerrors.TruncatedResponseError{OutputTokens: usage.OutputTokens, Limit: domain.MaxOutputTokens}
	}
	if resp.FinishReason == FinishReasonLength {
		return &llmerrors.TruncatedResponseError{OutputTokens: usage.OutputTokens, FinishReason: resp.FinishReason}
	}
	return nil
}

// ValidateEvaluation converts a parsed evaluation object into a result.
// "pass" must be a boolean, and "comment" must be non-empty when it is false.
func ValidateEvaluation(parsed map[string]any) (domain.EvaluationResult, error) {
	raw, ok := parsed["pass"]
	if !ok {
		return domain.EvaluationResult{}, llmerrors.NewMalformedResponseError(`missing "pass"`, "")
	}
	pass, ok := raw.(bool)
	if !ok {
		return domain.EvaluationResult{}, llmerrors.NewMalformedResponseError(
			fmt.Sprintf(`"pass" must be a boolean, got %T`, raw), "")
	}

	comment, _ := parsed["comment"].(string)
	comment = strings.TrimSpace(comment)
	if !pass && comment == "" {
		return domain.EvaluationResult{}, llmerrors.NewMalformedResponseError(`"comment" is required when "pass" is false`, "")
	}

	return domain.EvaluationResult{Pass: pass, Comment: comment}, nil
}

// ValidateGeneration converts the workItems array into generated children,
// stamping each with childType. Bare strings are read as titles; elements
// without a title and other non-object elements are dropped.
func ValidateGeneration(parsed map[string]any, childType domain.WorkItemType) ([]domain.GeneratedWorkItem, error) {
	raw, ok := parsed[WorkItemsKey]
	if !ok {
		return nil, llmerrors.NewMalformedResponseError(fmt.Sprintf("missing %q array", WorkItemsKey), "")
	}
	elems, ok := raw.([]any)
	if !ok {
		return nil, llmerrors.NewMalformedResponseError(fmt.Sprintf("%q must be an array, got %T", WorkItemsKey, raw), "")
	}

	items := make([]domain.GeneratedWorkItem, 0, len(elems))
	for _, elem := range elems {
		switch v := elem.(type) {
		case map[string]any:
			title := stringField(v, "title")
			if strings.TrimSpace(title) == "" {
				continue
			}
			items = append(items, domain.GeneratedWorkItem{
				Type:                childType,
				Title:               title,
				Description:         stringField(v, "description"),
				AcceptanceCriteria:  stringField(v, "acceptanceCriteria"),
				SuccessCriteria:     stringField(v, "successCriteria"),
				BusinessDeliverable: stringField(v, "businessDeliverable"),
			})
		case string:
			if strings.TrimSpace(v) != "" {
				items = append(items, domain.GeneratedWorkItem{Type: childType, Title: v})
			}
		}
	}

	if len(items) == 0 {
		return nil, llmerrors.NewMalformedResponseError(fmt.Sprintf("%q contains no work items", WorkItemsKey), "")
	}
	return items, nil
}

// ParseEvaluation checks truncation, extracts JSON, and validates an
// evaluation response.
func ParseEvaluation(resp *Response) (domain.EvaluationResult, error) {
	parsed, err := parseResponse(resp)
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	return ValidateEvaluation(parsed)
}

// ParseGeneration checks truncation, extracts JSON, and validates a
// generation or refinement response.
func ParseGeneration(resp *Response, childType domain.WorkItemType) ([]domain.GeneratedWorkItem, error) {
	parsed, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}
	return ValidateGeneration(parsed, childType)
}

func parseResponse(resp *Response) (map[string]any, error) {
	if err := CheckTruncation(resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, llmerrors.NewMalformedResponseError("empty model output", "")
	}
	parsed, ok := ExtractJSON(resp.Text)
	if !ok {
		return nil, llmerrors.NewMalformedResponseError("no JSON object in model output", resp.Text)
	}
	return parsed, nil
}

// stringField reads key as a string. Numbers and other scalars are
// formatted; missing or null values yield "".
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
