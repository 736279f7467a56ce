package module

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

type ContentKind string

// Content kinds
const (
	ContentText   ContentKind = "text"
	ContentURL    ContentKind = "url"
	ContentMarkup ContentKind = "markup"
)

var (
	emptyParagraphRegex = regexp.MustCompile(`(?i)<p>\s*</p>`)
	lineBreakRunRegex   = regexp.MustCompile(`(?i)(<br\s*/?>\s*){3,}`)
	tagRegex            = regexp.MustCompile(`<[^>]*>?`)
	whitespaceRunRegex  = regexp.MustCompile(`\s+`)
)

// DetectContentKind tells how module content should be rendered.
func DetectContentKind(content string) ContentKind {
	switch {
	case strings.HasPrefix(strings.TrimSpace(content), "http"):
		return ContentURL
	case strings.Contains(content, "<") && strings.Contains(content, ">"):
		return ContentMarkup
	default:
		return ContentText
	}
}

// CleanExtractedMarkup normalises the markup produced by a document converter:
// empty paragraphs are dropped and runs of 3+ line breaks collapse to two.
func CleanExtractedMarkup(markup string) string {
	cleaned := emptyParagraphRegex.ReplaceAllString(markup, "")
	return lineBreakRunRegex.ReplaceAllString(cleaned, "<br><br>")
}

// PlainText strips every tag from markup.
func PlainText(markup string) string {
	return tagRegex.ReplaceAllString(markup, "")
}

// TitleFromFilename derives a module title from an uploaded document name.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ExportFilename is the download name of an exported module.
func ExportFilename(title string) string {
	return whitespaceRunRegex.ReplaceAllString(title, "_") + ".txt"
}

// ExportText renders a module as a plain text document.
func ExportText(m Module) string {
	return fmt.Sprintf("TITLE: %s\n\nDESCRIPTION: %s\n\nCONTENT:\n%s", m.Title, m.Description, PlainText(m.Content))
}
