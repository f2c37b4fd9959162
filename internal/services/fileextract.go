package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns an uploaded document into plain text fit for
// flashcard generation. The file is read once; format handling works on the
// in-memory bytes.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var text string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		text = string(data)
	case ".pdf":
		text, err = e.fromPDF(data)
	case ".docx":
		text, err = e.fromDOCX(data)
	default:
		return "", fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
	if err != nil {
		return "", err
	}

	text = normalizeExtracted(text)
	if text == "" {
		return "", fmt.Errorf("no extractable text found in %s", filepath.Base(path))
	}
	return text, nil
}

func (e *TextExtractor) fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages the parser chokes on rather than failing the file.
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (e *TextExtractor) fromDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	// The document body lives in a single well-known archive member.
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		xmlBytes, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return wordMLToText(xmlBytes), nil
	}
	return "", fmt.Errorf("docx document.xml not found")
}

var (
	wordMLBreaks = strings.NewReplacer(
		"</w:p>", "\n",
		"<w:br/>", "\n",
		"<w:br />", "\n",
		"<w:tab/>", "\t",
	)
	xmlTags     = regexp.MustCompile(`<[^>]+>`)
	xmlEntities = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

func wordMLToText(src []byte) string {
	s := wordMLBreaks.Replace(string(src))
	s = xmlTags.ReplaceAllString(s, "")
	return xmlEntities.Replace(s)
}

// normalizeExtracted trims line noise and collapses runs of blank lines.
func normalizeExtracted(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if blank == 0 {
				b.WriteString("\n")
			}
			blank++
			continue
		}
		blank = 0
		b.WriteString(trimmed)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}
