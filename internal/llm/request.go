// Package llm invokes the hosted inference service and turns its raw output
// into typed evaluation and generation results.
package llm

import (
	"github.com/ahrav/go-taskgenie/internal/domain"
)

// ContentType discriminates content blocks.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// ImageFormat is the sniffed encoding of an image block.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatWEBP ImageFormat = "webp"
	FormatGIF  ImageFormat = "gif"
)

// MIMEType returns the media type used when the image is sent inline.
func (f ImageFormat) MIMEType() string {
	return "image/" + string(f)
}

// ContentBlock is one element of a multi-modal user message.
// Text is set for text blocks; Format and Data for image blocks.
type ContentBlock struct {
	Type   ContentType `json:"type"`
	Text   string      `json:"text,omitempty"`
	Format ImageFormat `json:"format,omitempty"`
	Data   []byte      `json:"-"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentText, Text: text}
}

// ImageBlock builds an image content block.
func ImageBlock(format ImageFormat, data []byte) ContentBlock {
	return ContentBlock{Type: ContentImage, Format: format, Data: data}
}

// Request represents one inference call.
// Content is ordered: the text prompt first, then any image blocks.
type Request struct {
	// Operation affects defaults, logging, and error context.
	Operation domain.Operation `json:"operation"`

	// WorkItemID correlates the call with the item being processed.
	WorkItemID int `json:"work_item_id"`

	// System prompt provides instructions to the model.
	System string `json:"system"`

	// Content is the multi-modal user message.
	Content []ContentBlock `json:"content"`

	// Sampling controls output length and randomness.
	Sampling domain.Sampling `json:"sampling"`

	// RequestID correlates log lines for one call. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// ImageStats returns how many image blocks the request carries and their
// combined size in bytes.
func (r *Request) ImageStats() (count, bytes int) {
	for _, b := range r.Content {
		if b.Type == ContentImage {
			count++
			bytes += len(b.Data)
		}
	}
	return count, bytes
}

// Usage reports token consumption for one call.
// Reported is false when the service did not return usage metadata.
type Usage struct {
	InputTokens  int  `json:"input_tokens"`
	OutputTokens int  `json:"output_tokens"`
	TotalTokens  int  `json:"total_tokens"`
	Reported     bool `json:"reported"`
}

// Response is the raw model output for one call.
type Response struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage"`
	RequestID    string `json:"request_id"`
}
