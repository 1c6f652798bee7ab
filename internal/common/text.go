package common

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()

	blockTagPattern   = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6]|/tr)\s*/?>`)
	spacesPattern     = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
	htmlTagPattern    = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
)

// SanitizeHTML keeps safe formatting markup and drops scripts, handlers and unsafe links
func SanitizeHTML(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}

// HTMLToText strips all markup, keeping line breaks of block elements
func HTMLToText(input string) string {
	withBreaks := blockTagPattern.ReplaceAllString(input, "$0\n")
	text := html.UnescapeString(strictPolicy.Sanitize(withBreaks))
	return NormalizeWhitespace(text)
}

// LooksLikeHTML reports whether the input contains markup tags
func LooksLikeHTML(input string) bool {
	return htmlTagPattern.MatchString(input)
}

// NormalizeWhitespace collapses runs of spaces and more than one blank line
func NormalizeWhitespace(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacesPattern.ReplaceAllString(line, " "))
	}
	out := strings.Join(lines, "\n")
	out = blankLinesPattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
