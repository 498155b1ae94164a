// Package extract pulls preview text out of document files so the
// curation pipeline can score and search content without shipping whole
// binaries around.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/erabu/pkg/utils"
)

// Extractor turns document files into plain text.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Text reads the file at path and returns its full text content.
// Markdown and other plain formats come back as-is (UTF-8 repaired);
// PDF, Office, and OpenDocument formats are unpacked first.
func (e *Extractor) Text(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.TextBytes(content, ext)
}

// Preview extracts text from path and truncates it to maxChars.
// The truncated text is what gets persisted on file records.
func (e *Extractor) Preview(path string, maxChars int) (string, error) {
	text, err := e.Text(path)
	if err != nil {
		return "", err
	}
	return utils.Truncate(strings.TrimSpace(text), maxChars), nil
}

// TextBytes extracts text from raw content based on the extension,
// which should include the leading dot (".pdf").
func (e *Extractor) TextBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx", ".odt", ".rtf":
		return extractWordXML(content)
	case ".pptx":
		return extractSlidesXML(content)
	case ".xlsx":
		return extractWorkbook(content)
	case ".odp":
		return extractOpenDocument(content, true)
	case ".ods":
		return extractOpenDocument(content, false)
	default:
		// Anything else is treated as plain text. Invalid UTF-8 is
		// repaired rather than rejected so odd encodings still yield a
		// usable preview.
		if !utf8.Valid(content) {
			return strings.ToValidUTF8(string(content), "�"), nil
		}
		return string(content), nil
	}
}
