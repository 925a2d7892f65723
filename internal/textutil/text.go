// Package textutil normalizes free text coming from uploads and listing forms.
package textutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun      = regexp.MustCompile(`[ \t\f\v]+`)
	blankLineRun  = regexp.MustCompile(`\n\n\n+`)
	blockElements = "p, div, br, li, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer"
)

// CleanText normalizes line endings, collapses runs of spaces inside lines,
// keeps at most one blank line between paragraphs and trims the result.
// Line breaks are preserved since the first line of a resume carries the name.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine keeps bullet markers and leading indentation but collapses inner whitespace.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	indent := len(line) - len(trimmed)
	content := spaceRun.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// StripHTML returns the visible text of an HTML fragment or document.
// Block-level elements become line breaks; scripts and styles are dropped.
// Input without markup is returned cleaned but otherwise unchanged.
func StripHTML(html string) (string, error) {
	if !strings.ContainsAny(html, "<>") {
		return CleanText(html), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return CleanText(doc.Text()), nil
}
