package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextWithOffsets(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100) // 1000 runes

	chunks := SplitTextWithOffsets(text, 450, 50)

	require.Len(t, chunks, 3)
	assert.Equal(t, []int{0, 400, 800}, []int{chunks[0].Offset, chunks[1].Offset, chunks[2].Offset})
	assert.Equal(t, 450, utf8.RuneCountInString(chunks[0].Text))
	assert.Equal(t, 200, utf8.RuneCountInString(chunks[2].Text))
	// overlap is preserved
	assert.Equal(t, chunks[0].Text[400:], chunks[1].Text[:50])
}

func TestSplitText_Edges(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		overlap  int
		expected []string
	}{
		{"empty", "", 10, 2, []string{}},
		{"whitespace", "   \n ", 10, 2, []string{}},
		{"short", "hello", 10, 2, []string{"hello"}},
		{"multibyte counted in runes", "ééééé", 5, 1, []string{"ééééé"}},
		{"overlap not smaller than size", "abcdef", 3, 3, []string{"abc", "def"}},
		{"exact step", "abcdef", 4, 2, []string{"abcd", "cdef"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitText(tt.text, tt.size, tt.overlap))
		})
	}
}
