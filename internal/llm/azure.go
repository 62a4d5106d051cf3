package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// chatCompleter is the subset of *azopenai.Client used by AzureOpenAIService.
type chatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// AzureOpenAIService implements Service with Azure OpenAI chat completions.
// Images are sent as base64 data URLs.
type AzureOpenAIService struct {
	client     chatCompleter
	deployment string
}

// NewAzureOpenAIService creates a service authenticated with an API key.
func NewAzureOpenAIService(endpoint, apiKey, deployment string) (*AzureOpenAIService, error) {
	if endpoint == "" || apiKey == "" || deployment == "" {
		return nil, errors.New("azure openai endpoint, key, and deployment are required")
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("create azure openai client: %w", err)
	}
	return &AzureOpenAIService{client: client, deployment: deployment}, nil
}

// Model returns the deployment name.
func (s *AzureOpenAIService) Model() string { return s.deployment }

// Invoke sends one chat completion request.
func (s *AzureOpenAIService) Invoke(ctx context.Context, req *Request) (*Response, error) {
	resp, err := s.client.GetChatCompletions(ctx, s.buildOptions(req), nil)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, errors.New("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	out := &Response{Model: s.deployment}
	if choice.Message.Content != nil {
		out.Text = *choice.Message.Content
	}
	if choice.FinishReason != nil {
		out.FinishReason = string(*choice.FinishReason)
	}
	if resp.Model != nil {
		out.Model = *resp.Model
	}
	if u := resp.Usage; u != nil {
		out.Usage = Usage{
			InputTokens:  int(deref(u.PromptTokens)),
			OutputTokens: int(deref(u.CompletionTokens)),
			TotalTokens:  int(deref(u.TotalTokens)),
			Reported:     u.CompletionTokens != nil,
		}
	}
	return out, nil
}

func (s *AzureOpenAIService) buildOptions(req *Request) azopenai.ChatCompletionsOptions {
	messages := make([]azopenai.ChatRequestMessageClassification, 0, 2)
	if req.System != "" {
		messages = append(messages, &azopenai.ChatRequestSystemMessage{
			Content: azopenai.NewChatRequestSystemMessageContent(req.System),
		})
	}
	messages = append(messages, &azopenai.ChatRequestUserMessage{
		Content: azopenai.NewChatRequestUserMessageContent(contentParts(req.Content)),
	})

	opts := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(s.deployment),
		Messages:       messages,
		MaxTokens:      to.Ptr(int32(req.Sampling.MaxTokens)),
	}
	if t := req.Sampling.Temperature; t != nil {
		opts.Temperature = to.Ptr(float32(*t))
	}
	if p := req.Sampling.TopP; p != nil {
		opts.TopP = to.Ptr(float32(*p))
	}
	return opts
}

func contentParts(blocks []ContentBlock) []azopenai.ChatCompletionRequestMessageContentPartClassification {
	parts := make([]azopenai.ChatCompletionRequestMessageContentPartClassification, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case ContentText:
			parts = append(parts, &azopenai.ChatCompletionRequestMessageContentPartText{
				Text: to.Ptr(b.Text),
			})
		case ContentImage:
			parts = append(parts, &azopenai.ChatCompletionRequestMessageContentPartImage{
				ImageURL: &azopenai.ChatCompletionRequestMessageContentPartImageURL{
					URL: to.Ptr(dataURL(b)),
				},
			})
		}
	}
	return parts
}

func dataURL(b ContentBlock) string {
	return "data:" + b.Format.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
