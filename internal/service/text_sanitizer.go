package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer strips markup from classification labels. Question text never
// goes through it: content, options and explanations are plain text in which
// "<" is ordinary data.
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer builds a sanitizer that keeps text only.
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes tags and surrounding whitespace. Entities escaped by the
// policy are decoded again since labels are stored as plain text.
func (s *TextSanitizer) Clean(value string) string {
	if s == nil || s.policy == nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

// normalizeText trims question text and keeps everything else as submitted.
func normalizeText(value string) string {
	return strings.TrimSpace(value)
}
