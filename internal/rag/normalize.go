package rag

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pageNumberPattern = regexp.MustCompile(`(?m)^\s*\d{1,4}\s*$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize cleans raw extracted text into the canonical form the chunker
// operates on: isolated page-number lines are dropped, non-printable
// characters removed, whitespace runs collapsed to single spaces, and the
// result trimmed. Deterministic, so reprocessing the same file always yields
// the same passage spans.
func Normalize(raw string) string {
	text := pageNumberPattern.ReplaceAllString(raw, " ")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	text = whitespacePattern.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(text)
}
