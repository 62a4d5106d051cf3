package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-taskgenie/internal/llm"
)

func TestDetectImageFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want llm.ImageFormat
	}{
		{name: "jpeg", data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, want: llm.FormatJPEG},
		{name: "png", data: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, want: llm.FormatPNG},
		{name: "gif", data: []byte("GIF89a..."), want: llm.FormatGIF},
		{name: "webp", data: []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), want: llm.FormatWEBP},
		{name: "riff without webp", data: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), want: llm.FormatJPEG},
		{name: "short riff", data: []byte("RIFF"), want: llm.FormatJPEG},
		{name: "unknown", data: []byte{0x00, 0x01, 0x02, 0x03}, want: llm.FormatJPEG},
		{name: "empty", data: nil, want: llm.FormatJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectImageFormat(tt.data))
		})
	}
}
