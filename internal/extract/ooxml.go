package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Office Open XML packages are zips of XML parts. We only need the text
// nodes, so instead of a full XML parse we pull the run elements out with
// a regex, which also survives the attribute soup real documents carry
// (e.g. <w:p w:rsidR="...">).
var (
	wordTextRun  = wordRunPattern("w:t")
	slideTextRun = wordRunPattern("a:t")
)

// wordRunPattern matches <tag ...>text</tag> with any attributes.
func wordRunPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`<` + tag + `[^>]*>([^<]*)</` + tag + `>`)
}

const wordDocumentPart = "word/document.xml"
const slidePartPrefix = "ppt/slides/slide"

// extractWordXML extracts text from a .docx body by joining every
// <w:t> run with single spaces.
func extractWordXML(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract word document: not a zip: %w", err)
	}
	body, err := readZipPart(zr, wordDocumentPart)
	if err != nil {
		return "", fmt.Errorf("extract word document: %w", err)
	}
	return joinRuns(wordTextRun.FindAllStringSubmatch(string(body), -1)), nil
}

// extractSlidesXML extracts text from every slide of a .pptx deck.
func extractSlidesXML(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract slides: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, slidePartPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		part, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract slides: %s: %w", f.Name, err)
		}
		text := joinRuns(slideTextRun.FindAllStringSubmatch(string(part), -1))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func joinRuns(parts [][]string) string {
	var b strings.Builder
	for _, p := range parts {
		run := strings.TrimSpace(p[1])
		if run == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(run)
	}
	return b.String()
}

func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return readZipFile(f)
		}
	}
	return nil, fmt.Errorf("%s not found", name)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
