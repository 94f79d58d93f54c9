package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/songwish/assistant-be/types"
)

const MaxQueryLength = 2000

var dangerousFragments = []string{
	"<script", "javascript:", "drop table", "delete from",
	"insert into", "update set", "<iframe", "eval(", "document.cookie",
}

var specialCharPattern = regexp.MustCompile(`[<>"';{}]`)

// ValidateQueryInput rejects empty, oversized or obviously hostile queries.
func ValidateQueryInput(query string) error {
	q := strings.TrimSpace(query)
	if q == "" {
		return fmt.Errorf("%w: query cannot be empty", types.ErrInvalidQuery)
	}
	if len(q) > MaxQueryLength {
		return fmt.Errorf("%w: query too long (max %d characters)", types.ErrInvalidQuery, MaxQueryLength)
	}
	lower := strings.ToLower(q)
	for _, frag := range dangerousFragments {
		if strings.Contains(lower, frag) {
			return fmt.Errorf("%w: invalid query content detected", types.ErrInvalidQuery)
		}
	}
	if len(specialCharPattern.FindAllString(q, -1)) > 10 {
		return fmt.Errorf("%w: query contains too many special characters", types.ErrInvalidQuery)
	}
	return nil
}

// SanitizeString truncates, escapes and strips NUL bytes from user text.
func SanitizeString(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if len(text) > maxLength {
		text = text[:maxLength]
	}
	text = html.EscapeString(text)
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
