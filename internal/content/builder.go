package content

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ahrav/go-taskgenie/internal/domain"
	"github.com/ahrav/go-taskgenie/internal/llm"
)

// Defaults for image handling.
const (
	DefaultMaxImages     = 3
	DefaultMaxImageBytes = 5 * 1024 * 1024
)

// ImageFetcher retrieves image bytes by URL. Authentication is the
// fetcher's concern.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Builder turns a text prompt and a work item's images into ordered content
// blocks. Images are fetched sequentially; a bad image is logged and skipped.
type Builder struct {
	fetcher       ImageFetcher
	maxImages     int
	maxImageBytes int
	logger        *slog.Logger
}

// NewBuilder creates a Builder. Non-positive limits use the defaults; a nil
// fetcher produces text-only content.
func NewBuilder(fetcher ImageFetcher, maxImages, maxImageBytes int, logger *slog.Logger) *Builder {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	if logger == nil {
		logger = slog.Default().With("component", "content_builder")
	}
	return &Builder{fetcher: fetcher, maxImages: maxImages, maxImageBytes: maxImageBytes, logger: logger}
}

// Build returns the text block followed by up to maxImages image blocks in
// their original order.
func (b *Builder) Build(ctx context.Context, item *domain.WorkItem, text string) []llm.ContentBlock {
	blocks := []llm.ContentBlock{llm.TextBlock(text)}
	if b.fetcher == nil || len(item.Images) == 0 {
		return blocks
	}

	images := item.Images
	if len(images) > b.maxImages {
		b.logger.InfoContext(ctx, "Limiting images sent to model",
			"work_item_id", item.ID,
			"images_count", len(images),
			"max_images", b.maxImages)
		images = images[:b.maxImages]
	}

	for _, img := range images {
		if ctx.Err() != nil {
			break
		}
		if block, ok := b.imageBlock(ctx, item.ID, img); ok {
			blocks = append(blocks, block)
		}
	}

	return blocks
}

func (b *Builder) imageBlock(ctx context.Context, workItemID int, img domain.WorkItemImage) (llm.ContentBlock, bool) {
	if strings.TrimSpace(img.URL) == "" {
		b.logger.WarnContext(ctx, "Image has no URL, skipping", "work_item_id", workItemID)
		return llm.ContentBlock{}, false
	}

	data, err := b.fetcher.Fetch(ctx, img.URL)
	switch {
	case err != nil:
		b.logger.WarnContext(ctx, "Failed to fetch image, skipping",
			"work_item_id", workItemID, "url", img.URL, "error", err)
		return llm.ContentBlock{}, false
	case len(data) == 0:
		b.logger.WarnContext(ctx, "Image is empty, skipping", "work_item_id", workItemID, "url", img.URL)
		return llm.ContentBlock{}, false
	case len(data) > b.maxImageBytes:
		b.logger.WarnContext(ctx, "Image exceeds size limit, skipping",
			"work_item_id", workItemID, "url", img.URL,
			"size_bytes", len(data), "max_bytes", b.maxImageBytes)
		return llm.ContentBlock{}, false
	}

	format := DetectImageFormat(data)
	b.logger.DebugContext(ctx, "Added image content",
		"work_item_id", workItemID, "url", img.URL, "format", format, "size_kb", len(data)/1024)
	return llm.ImageBlock(format, data), true
}
