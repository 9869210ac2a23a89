// Package textsrc turns uploaded register documents into plain text for the
// engine. Plain text passes through; HTML exports of the register viewer are
// flattened with one line per table row.
package textsrc

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Format is a recognised document encoding.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

var (
	// ErrUnsupportedFormat is returned for documents that need an external
	// extractor, such as PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNotText is returned for bytes that are not valid UTF-8.
	ErrNotText = errors.New("document is not valid UTF-8 text")
)

var blockTags = map[string]bool{
	"p": true, "div": true, "tr": true, "table": true, "li": true, "ul": true,
	"ol": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "section": true, "article": true, "pre": true, "thead": true,
	"tbody": true, "caption": true,
}

// Detect guesses the format from the file name, then from the content.
func Detect(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".txt":
		return FormatText
	}
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return FormatPDF
	case bytes.HasPrefix(head, []byte("<")):
		lower := bytes.ToLower(head)
		if bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype html")) || bytes.Contains(lower, []byte("<table")) {
			return FormatHTML
		}
	}
	return FormatText
}

// Accepts reports whether a file name carries an extension Extract reads.
func Accepts(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Extract returns the document's text.
func Extract(name string, data []byte) (string, error) {
	switch Detect(name, data) {
	case FormatPDF:
		return "", fmt.Errorf("%w: pdf documents must be converted to text first", ErrUnsupportedFormat)
	case FormatHTML:
		return HTMLText(data)
	default:
		if !utf8.Valid(data) {
			return "", ErrNotText
		}
		return string(data), nil
	}
}

// HTMLText flattens an HTML document. Table cells on one row are joined by a
// space; block elements start new lines.
func HTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, head").Remove()

	var b strings.Builder
	walk(doc.Find("body"), &b)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

func walk(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); {
		case name == "#text":
			b.WriteString(strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s.Text()))
		case name == "br":
			b.WriteByte('\n')
		case name == "td" || name == "th":
			walk(s, b)
			b.WriteByte(' ')
		case blockTags[name]:
			b.WriteByte('\n')
			walk(s, b)
			b.WriteByte('\n')
		default:
			walk(s, b)
		}
	})
}
