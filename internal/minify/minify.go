// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package minify reduces source text to a single comment-free line before it
// is scanned for imports or written to the bundle.
package minify

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//.*`)

	// ASCII whitespace plus \v, NEL, Unicode space separators, line and
	// paragraph separators and the byte-order mark.
	whitespaceRe = regexp.MustCompile(`[\s\v\x{85}\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// Normalize strips block and line comments and collapses all whitespace runs
// into single spaces. The transform is purely textual: comment markers inside
// string literals are treated as comments too.
func Normalize(content string) string {
	out := blockCommentRe.ReplaceAllString(content, "")
	out = lineCommentRe.ReplaceAllString(out, "")
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimFunc(out, isSpace)
}
