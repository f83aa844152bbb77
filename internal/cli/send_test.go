package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeFirstLine(t *testing.T) {
	assert.Equal(t, "first", summarize("first\nsecond\nthird"))
	assert.Equal(t, "short", summarize("short"))
}

func TestSummarizeTruncatesOnRunes(t *testing.T) {
	long := strings.Repeat("界", 200)
	got := summarize(long)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 121, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	v := optional("x")
	assert.NotNil(t, v)
	assert.Equal(t, "x", *v)
}
