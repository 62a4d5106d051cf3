package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-taskgenie/internal/domain"
	"github.com/ahrav/go-taskgenie/internal/llm"
)

type fakeFetcher struct {
	images map[string][]byte
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return f.images[url], nil
}

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func item(urls ...string) *domain.WorkItem {
	w := &domain.WorkItem{ID: 9, Type: domain.TypeUserStory, Title: "t"}
	for _, u := range urls {
		w.Images = append(w.Images, domain.WorkItemImage{URL: u})
	}
	return w
}

func TestBuilderTextFirstAndOrder(t *testing.T) {
	fetcher := &fakeFetcher{images: map[string][]byte{
		"a": pngBytes,
		"b": {0xFF, 0xD8, 0xFF, 0x01},
		"c": []byte("GIF87a"),
	}}
	blocks := NewBuilder(fetcher, 3, 0, nil).Build(context.Background(), item("a", "b", "c"), "prompt")

	require.Len(t, blocks, 4)
	assert.Equal(t, llm.TextBlock("prompt"), blocks[0])
	assert.Equal(t, []llm.ImageFormat{llm.FormatPNG, llm.FormatJPEG, llm.FormatGIF},
		[]llm.ImageFormat{blocks[1].Format, blocks[2].Format, blocks[3].Format})
	assert.Equal(t, pngBytes, blocks[1].Data)
}

func TestBuilderLimitsImages(t *testing.T) {
	fetcher := &fakeFetcher{images: map[string][]byte{"a": pngBytes, "b": pngBytes, "c": pngBytes, "d": pngBytes}}
	blocks := NewBuilder(fetcher, 0, 0, nil).Build(context.Background(), item("a", "b", "c", "d"), "p")

	assert.Len(t, blocks, 1+DefaultMaxImages)
	assert.Equal(t, []string{"a", "b", "c"}, fetcher.calls)
}

func TestBuilderSkipsBadImages(t *testing.T) {
	fetcher := &fakeFetcher{
		images: map[string][]byte{
			"big":   make([]byte, 11),
			"empty": {},
			"ok":    pngBytes,
		},
		errs: map[string]error{"missing": errors.New("404")},
	}
	blocks := NewBuilder(fetcher, 5, 10, nil).Build(context.Background(), item("missing", "", "big", "empty", "ok"), "p")

	require.Len(t, blocks, 2)
	assert.Equal(t, llm.ContentText, blocks[0].Type)
	assert.Equal(t, pngBytes, blocks[1].Data)
	assert.Equal(t, []string{"missing", "big", "empty", "ok"}, fetcher.calls)
}

func TestBuilderWithoutFetcher(t *testing.T) {
	blocks := NewBuilder(nil, 3, 0, nil).Build(context.Background(), item("a"), "p")
	assert.Equal(t, []llm.ContentBlock{llm.TextBlock("p")}, blocks)
}

func TestBuilderStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher := &fakeFetcher{images: map[string][]byte{"a": pngBytes}}
	blocks := NewBuilder(fetcher, 3, 0, nil).Build(ctx, item("a"), "p")
	assert.Len(t, blocks, 1)
	assert.Empty(t, fetcher.calls)
}
