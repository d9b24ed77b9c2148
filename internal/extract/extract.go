// Package extract pulls plain text out of uploaded resume files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyDocument   = errors.New("document contains no extractable text")
)

const (
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// Text extracts plain text from an uploaded file. The content type is
// taken from the multipart header when present, falling back to the file
// extension since browsers often send application/octet-stream.
func Text(filename, contentType string, data []byte) (string, error) {
	var text string
	var err error

	switch resolveType(filename, contentType) {
	case mimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: not valid UTF-8 text", ErrUnsupportedType)
		}
		text = string(data)
	case mimePDF:
		text, err = pdfText(data)
	case mimeDocx:
		text, err = docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func resolveType(filename, contentType string) string {
	if ct, _, ok := strings.Cut(contentType, ";"); ok {
		contentType = ct
	}
	contentType = strings.TrimSpace(contentType)
	switch contentType {
	case mimePDF, mimeDocx, mimeText:
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".docx":
		return mimeDocx
	case ".txt":
		return mimeText
	}
	return ""
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	return stripTags(doc.Editable().GetContent()), nil
}

// stripTags flattens WordprocessingML into plain text. Paragraph ends
// become newlines so section breaks survive.
func stripTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")

	var b strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
