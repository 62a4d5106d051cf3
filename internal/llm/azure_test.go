package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-taskgenie/internal/domain"
)

type fakeChatClient struct {
	body azopenai.ChatCompletionsOptions
	resp azopenai.GetChatCompletionsResponse
	err  error
}

func (f *fakeChatClient) GetChatCompletions(_ context.Context, body azopenai.ChatCompletionsOptions, _ *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error) {
	f.body = body
	return f.resp, f.err
}

func TestAzureOpenAIServiceInvoke(t *testing.T) {
	finish := azopenai.CompletionsFinishReasonStopped
	client := &fakeChatClient{}
	client.resp.Choices = []azopenai.ChatChoice{{
		Message:      &azopenai.ChatResponseMessage{Content: to.Ptr(`{"pass":true}`)},
		FinishReason: &finish,
	}}
	client.resp.Usage = &azopenai.CompletionsUsage{
		PromptTokens:     to.Ptr[int32](900),
		CompletionTokens: to.Ptr[int32](15),
		TotalTokens:      to.Ptr[int32](915),
	}

	svc := &AzureOpenAIService{client: client, deployment: "gpt-4o"}
	resp, err := svc.Invoke(context.Background(), &Request{
		Operation: domain.OperationEvaluate,
		System:    "sys",
		Content:   []ContentBlock{TextBlock("user"), ImageBlock(FormatPNG, []byte{0x89, 0x50, 0x4E, 0x47})},
		Sampling:  domain.Sampling{MaxTokens: 2048, TopP: to.Ptr(0.9)},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"pass":true}`, resp.Text)
	assert.Equal(t, Usage{InputTokens: 900, OutputTokens: 15, TotalTokens: 915, Reported: true}, resp.Usage)
	assert.Equal(t, string(finish), resp.FinishReason)

	body := client.body
	assert.Equal(t, "gpt-4o", *body.DeploymentName)
	assert.Equal(t, int32(2048), *body.MaxTokens)
	assert.Nil(t, body.Temperature)
	assert.InDelta(t, 0.9, float64(*body.TopP), 1e-6)
	require.Len(t, body.Messages, 2)
	_, isSystem := body.Messages[0].(*azopenai.ChatRequestSystemMessage)
	assert.True(t, isSystem)
}

func TestAzureOpenAIServiceErrors(t *testing.T) {
	svc := &AzureOpenAIService{client: &fakeChatClient{err: errors.New("401")}, deployment: "d"}
	_, err := svc.Invoke(context.Background(), &Request{Content: []ContentBlock{TextBlock("x")}})
	require.Error(t, err)

	empty := &AzureOpenAIService{client: &fakeChatClient{}, deployment: "d"}
	_, err = empty.Invoke(context.Background(), &Request{Content: []ContentBlock{TextBlock("x")}})
	assert.ErrorContains(t, err, "no choices")
}

func TestContentPartsOrder(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0x00}
	parts := contentParts([]ContentBlock{TextBlock("prompt"), ImageBlock(FormatJPEG, data)})
	require.Len(t, parts, 2)

	text, ok := parts[0].(*azopenai.ChatCompletionRequestMessageContentPartText)
	require.True(t, ok)
	assert.Equal(t, "prompt", *text.Text)

	img, ok := parts[1].(*azopenai.ChatCompletionRequestMessageContentPartImage)
	require.True(t, ok)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(data), *img.ImageURL.URL)
}

func TestNewAzureOpenAIServiceRequiresSettings(t *testing.T) {
	_, err := NewAzureOpenAIService("", "key", "dep")
	assert.Error(t, err)
}
