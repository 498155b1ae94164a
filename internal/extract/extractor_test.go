package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildZip(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestTextBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.TextBytes([]byte("# Notes\n\nimportant decision"), ".md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Notes\n\nimportant decision" {
		t.Errorf("got %q", got)
	}
}

func TestTextBytes_repairsInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.TextBytes([]byte{'o', 'k', 0xff, '!'}, ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "ok") || !strings.HasSuffix(got, "!") {
		t.Errorf("got %q", got)
	}
	if strings.ContainsRune(got, 0xff) {
		t.Error("invalid byte survived")
	}
}

func TestTextBytes_wordDocument(t *testing.T) {
	doc := buildZip(t, map[string]string{
		"word/document.xml": `<w:document><w:p w:rsidR="0"><w:r><w:t>Quarterly</w:t></w:r>` +
			`<w:r><w:t xml:space="preserve">planning</w:t></w:r></w:p></w:document>`,
	})
	got, err := NewExtractor().TextBytes(doc, ".docx")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Quarterly planning" {
		t.Errorf("got %q", got)
	}
}

func TestTextBytes_slides(t *testing.T) {
	deck := buildZip(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld><a:t>First</a:t></p:sld>`,
		"ppt/slides/slide2.xml": `<p:sld><a:t>Second</a:t></p:sld>`,
		"ppt/media/image1.png":  "binary",
	})
	got, err := NewExtractor().TextBytes(deck, ".pptx")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "First") || !strings.Contains(got, "Second") {
		t.Errorf("got %q", got)
	}
}

func TestTextBytes_openDocument(t *testing.T) {
	pres := buildZip(t, map[string]string{
		"content.xml": `<office:body><text:h outline-level="1">Title</text:h>` +
			`<text:p style="x">Body text</text:p></office:body>`,
	})
	got, err := NewExtractor().TextBytes(pres, ".odp")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Title") || !strings.Contains(got, "Body text") {
		t.Errorf("got %q", got)
	}

	sheet := buildZip(t, map[string]string{
		"content.xml": `<office:body><text:p>cell one</text:p><text:h>skipped heading</text:h></office:body>`,
	})
	got, err = NewExtractor().TextBytes(sheet, ".ods")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "cell one") || strings.Contains(got, "skipped heading") {
		t.Errorf("got %q, spreadsheets should ignore headings", got)
	}
}

func TestTextBytes_notAZip(t *testing.T) {
	if _, err := NewExtractor().TextBytes([]byte("plain"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
}

func TestPreview_truncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "long.md")
	if err := os.WriteFile(path, []byte("  "+strings.Repeat("a", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Preview(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got != strings.Repeat("a", 10)+"..." {
		t.Errorf("got %q, want leading space trimmed and text cut at 10", got)
	}
}

func TestText_missingFile(t *testing.T) {
	if _, err := NewExtractor().Text(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Error("expected error")
	}
}
