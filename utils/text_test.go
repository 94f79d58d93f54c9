package utils

import (
	"strings"
	"testing"

	"github.com/songwish/assistant-be/types"
	"github.com/stretchr/testify/assert"
)

func TestValidateQueryInput(t *testing.T) {
	assert.NoError(t, ValidateQueryInput("how do I install reMIDI 4?"))

	assert.ErrorIs(t, ValidateQueryInput(""), types.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQueryInput("   "), types.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQueryInput(strings.Repeat("a", MaxQueryLength+1)), types.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQueryInput("<script>alert(1)</script>"), types.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQueryInput("x'; DROP TABLE users; --"), types.ErrInvalidQuery)
	assert.ErrorIs(t, ValidateQueryInput(strings.Repeat("{}", 6)), types.ErrInvalidQuery)

	// A handful of special characters is normal prose, not an attack.
	assert.NoError(t, ValidateQueryInput(`what does "slice" mean?`))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "", SanitizeString("", 100))
	assert.Equal(t, "abc", SanitizeString("abc\x00", 100))
	assert.Equal(t, "&lt;b&gt;", SanitizeString("<b>", 100))
	assert.Equal(t, "abcde", SanitizeString("abcdefgh", 5))
	assert.Equal(t, "trimmed", SanitizeString("  trimmed  ", 100))
}
