// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package minify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsCommentsAndBlankLines(t *testing.T) {
	input := "/* header\n * licence\n */\nconst a = 1; // trailing note\n\n\n\nconst b = 2;\n"
	got := Normalize(input)

	assert.Equal(t, "const a = 1; const b = 2;", got)
	assert.NotContains(t, got, "licence")
	assert.NotContains(t, got, "trailing")
	assert.NotContains(t, got, "\n")
}

func TestNormalizeBlockCommentIsNonGreedy(t *testing.T) {
	got := Normalize("a /* one */ b /* two */ c")
	assert.Equal(t, "a b c", got)
}

func TestNormalizeStripsInsideStrings(t *testing.T) {
	got := Normalize(`const url = "http://example.com";`)
	assert.Equal(t, `const url = "http:`, got)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(" \n\t "))
}

func TestNormalizeUnicodeWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading byte-order mark", "\uFEFFimport a from './a';\n", "import a from './a';"},
		{"no-break spaces", "a\u00a0\u00a0\n b", "a b"},
		{"vertical tabs", "a\v\v b", "a b"},
		{"line separators", "a\u2028\u2029b\u0085c", "a b c"},
		{"trailing mixed", "x;\u00a0\v\uFEFF", "x;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}
