// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections segments a paper's Markdown body into canonical
// sections. A fast pattern pass handles well-formed documents; a
// deterministic quality assessment decides when to escalate to a single
// language-model repair call, whose output is merged under a
// deterministic-first policy.
package sections

import (
	"regexp"
	"strings"
)

// fullwidth maps full-width punctuation and digits to their half-width
// equivalents before matching.
var fullwidth = strings.NewReplacer(
	"．", ".", "。", ".", "，", ",", "：", ":", "；", ";",
	"（", "(", "）", ")", "【", "[", "】", "]",
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
)

// outlinePrefix matches numeric ("1.", "2.1.", "3)"), roman ("IV.") and
// alphabetic ("a.", "b)") outline prefixes at the start of a heading. The
// roman and alphabetic forms require trailing punctuation so words such as
// "mix" or "introduction" are never eaten.
var outlinePrefix = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.?|[ivxlcdm]+[.)]|[a-z][.)])\s*`)

// markupRunes are stripped wherever they appear: Markdown emphasis and
// inline-code markers carry no heading meaning.
var markupRunes = strings.NewReplacer("*", "", "_", "", "`", "")

// Normalize canonicalizes a raw heading line for vocabulary matching. It
// strips Markdown markers and outline prefixes, converts full-width
// punctuation to half-width, case-folds, and collapses whitespace. Total:
// unrecognized input comes back cleaned but unmapped.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)

	// Leading Markdown markers: heading hashes, blockquote, bullets.
	s = strings.TrimLeft(s, "#>")
	s = strings.TrimSpace(s)
	for _, bullet := range []string{"- ", "+ "} {
		s = strings.TrimPrefix(s, bullet)
	}

	s = markupRunes.Replace(s)
	s = fullwidth.Replace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	s = outlinePrefix.ReplaceAllString(s, "")
	s = strings.Trim(s, " .:;")

	return joinSpacedLetters(s)
}

// joinSpacedLetters collapses headings whose letters were split by the
// layout engine ("A B S T R A C T" → "abstract"). Only fires when every
// token is a single rune.
func joinSpacedLetters(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	for _, f := range fields {
		if len([]rune(f)) != 1 {
			return s
		}
	}
	return strings.Join(fields, "")
}
