// Package content assembles multi-modal content blocks from a work item's
// text prompt and referenced images.
package content

import (
	"bytes"

	"github.com/ahrav/go-taskgenie/internal/llm"
)

var (
	magicJPEG = []byte{0xFF, 0xD8, 0xFF}
	magicPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	magicGIF  = []byte{0x47, 0x49, 0x46, 0x38}
	magicRIFF = []byte("RIFF")
	magicWEBP = []byte("WEBP")
)

// DetectImageFormat sniffs the format from leading bytes. Unrecognized
// bytes default to JPEG.
func DetectImageFormat(data []byte) llm.ImageFormat {
	switch {
	case bytes.HasPrefix(data, magicJPEG):
		return llm.FormatJPEG
	case bytes.HasPrefix(data, magicPNG):
		return llm.FormatPNG
	case len(data) >= 12 && bytes.HasPrefix(data, magicRIFF) && bytes.Equal(data[8:12], magicWEBP):
		return llm.FormatWEBP
	case bytes.HasPrefix(data, magicGIF):
		return llm.FormatGIF
	default:
		return llm.FormatJPEG
	}
}
