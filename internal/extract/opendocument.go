package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// OpenDocument presentations and spreadsheets both keep their body in
// content.xml with text:p and text:span elements; presentations add
// text:h headings.
var (
	odTextP    = wordRunPattern(`text:p`)
	odTextSpan = wordRunPattern(`text:span`)
	odTextH    = wordRunPattern(`text:h`)
)

const odContentPart = "content.xml"

func extractOpenDocument(content []byte, withHeadings bool) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract opendocument: not a zip: %w", err)
	}
	body, err := readZipPart(zr, odContentPart)
	if err != nil {
		return "", fmt.Errorf("extract opendocument: %w", err)
	}
	s := string(body)
	parts := odTextP.FindAllStringSubmatch(s, -1)
	parts = append(parts, odTextSpan.FindAllStringSubmatch(s, -1)...)
	if withHeadings {
		parts = append(parts, odTextH.FindAllStringSubmatch(s, -1)...)
	}
	return joinRuns(parts), nil
}
