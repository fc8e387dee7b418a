// Package extractor turns uploaded document files into plain text.
// The retrieval core treats extraction as an opaque capability; each
// format lives in its own file here.
package extractor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/thebraudalf/fnb-docbot/internal/domain"
)

// FileExtractor dispatches on file extension to a format-specific
// extraction routine.
type FileExtractor struct {
	// ocrBinary is the OCR command for image formats, "tesseract" by
	// default.
	ocrBinary string
}

// NewFileExtractor creates an extractor with the default OCR binary.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{ocrBinary: "tesseract"}
}

// SupportedExtensions returns the handled file extensions.
func (e *FileExtractor) SupportedExtensions() []string {
	return []string{".txt", ".md", ".docx", ".pdf", ".png", ".jpg", ".jpeg"}
}

// Supported reports whether path has a handled extension.
func (e *FileExtractor) Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range e.SupportedExtensions() {
		if ext == s {
			return true
		}
	}
	return false
}

// Extract reads the file at path and returns its textual content.
// Unknown extensions yield an unsupported_format error; any failure
// inside a format routine is wrapped as extraction_failed by callers.
func (e *FileExtractor) Extract(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDocx(path)
	case ".png", ".jpg", ".jpeg":
		return e.extractImage(path)
	default:
		return "", domain.E(domain.KindUnsupportedFormat, "unsupported file type: %s", ext)
	}
}
