// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paperminer/pkg/types"
)

// maxHeadingRunes is the length above which a line is not heading-like.
const maxHeadingRunes = 80

// HeadingCandidate is a located, normalized heading with its resolution
// against the canonical vocabulary. Unresolved candidates are recorded but
// never act as segmentation boundaries.
type HeadingCandidate struct {
	// Raw is the heading line as it appears in the document.
	Raw string

	// Normalized is the vocabulary-matching form of the heading.
	Normalized string

	// Offset is the byte offset of the heading line in the document.
	Offset int

	// Line is the zero-based line index of the heading.
	Line int

	// Section is the resolved canonical section; empty when unresolved.
	Section types.CanonicalSection

	// Resolved reports whether the heading matched the vocabulary.
	Resolved bool

	// Boundary reports whether the heading is back matter (References,
	// Acknowledgements, ...) that closes the open section.
	Boundary bool

	// bodyStart is the byte offset the section body begins at. Usually the
	// start of the next line; for inline forms like "Abstract: text" it
	// points into the heading line itself.
	bodyStart int
}

// inlineAbstract matches the unmarked "Abstract: body text..." form some
// conversions emit, capturing where the body starts.
var inlineAbstract = regexp.MustCompile(`(?i)^abstract\s*[:：]\s*(\S)`)

// Match scans the document line by line for heading-like lines, normalizes
// them, and resolves them against the synonym table. Deterministic, single
// pass, no I/O. An empty result is valid: it means no heading-like lines
// were found.
func Match(doc string) []HeadingCandidate {
	var candidates []HeadingCandidate

	offset := 0
	for line, raw := range strings.SplitAfter(doc, "\n") {
		lineLen := len(raw)
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			offset += lineLen
			continue
		}

		cand, ok := classifyLine(trimmed, offset, lineLen, line)
		if ok {
			candidates = append(candidates, cand)
		}
		offset += lineLen
	}

	return candidates
}

// classifyLine decides whether one trimmed line is a heading candidate.
// Markup headings are always recorded; unmarked lines must be short,
// non-sentence-ending, and recognized by the vocabulary to count, which
// keeps ordinary prose out of the candidate list.
func classifyLine(trimmed string, offset, lineLen, line int) (HeadingCandidate, bool) {
	marked := strings.HasPrefix(trimmed, "#")
	if len([]rune(trimmed)) > maxHeadingRunes && !marked {
		return HeadingCandidate{}, false
	}

	cand := HeadingCandidate{
		Raw:        trimmed,
		Normalized: Normalize(trimmed),
		Offset:     offset,
		Line:       line,
		bodyStart:  offset + lineLen,
	}

	if cand.Normalized == "" {
		return HeadingCandidate{}, false
	}

	// An unmarked line shaped like a sentence is prose, even when it opens
	// with a vocabulary word ("Results were mixed overall."). The exceptions
	// are lines that are nothing but a heading ("Abstract.") and the inline
	// abstract form.
	if !marked && endsLikeSentence(trimmed) &&
		!isExactHeading(cand.Normalized) && !inlineAbstract.MatchString(trimmed) {
		return HeadingCandidate{}, false
	}

	if isBoundary(cand.Normalized) {
		cand.Boundary = true
		return cand, true
	}

	if canon, ok := resolve(cand.Normalized); ok {
		cand.Section = canon
		cand.Resolved = true
		if !marked {
			// Inline "Abstract: text" keeps the same-line remainder as body.
			if loc := inlineAbstract.FindStringSubmatchIndex(trimmed); loc != nil {
				cand.bodyStart = offset + loc[2]
			}
		}
		return cand, true
	}

	if !marked {
		// Unmarked and unrecognized: plain prose, not a candidate.
		return HeadingCandidate{}, false
	}
	if endsLikeSentence(trimmed) {
		return HeadingCandidate{}, false
	}
	return cand, true
}

// sentenceEnd holds the punctuation that marks a line as prose, clause
// separators included.
const sentenceEnd = ".!?,;。！？，；"

// endsLikeSentence reports whether a line reads as prose rather than a
// heading.
func endsLikeSentence(s string) bool {
	s = strings.TrimRight(s, " ")
	runes := []rune(s)
	if len(runes) == 0 {
		return false
	}
	return strings.ContainsRune(sentenceEnd, runes[len(runes)-1])
}

// Segment slices the document into canonical section bodies using the
// resolved candidates as boundaries. Unresolved headings are absorbed into
// the open section — a deliberate simplification that collapses
// subsections ("2.1 Materials", "2.2 Testing") into their parent.
// Boundary headings close the open section without opening one. Repeated
// resolutions of a canonical section concatenate in document order,
// separated by a blank line.
func Segment(doc string, candidates []HeadingCandidate) types.SectionMap {
	m := make(types.SectionMap)

	var (
		open      types.CanonicalSection
		openStart int
		inSection bool
	)

	flush := func(end int) {
		if !inSection {
			return
		}
		body := strings.TrimSpace(doc[openStart:end])
		appendBody(m, open, body)
		inSection = false
	}

	for _, cand := range candidates {
		switch {
		case cand.Boundary:
			flush(cand.Offset)
		case cand.Resolved:
			flush(cand.Offset)
			open = cand.Section
			openStart = cand.bodyStart
			inSection = true
		}
		// Unresolved candidates fall through: absorbed into the open body.
	}
	flush(len(doc))

	return m
}

// appendBody records a section body, concatenating with any earlier body
// for the same canonical section.
func appendBody(m types.SectionMap, canon types.CanonicalSection, body string) {
	existing, ok := m[canon]
	if ok && existing.Body != "" && body != "" {
		existing.Body = existing.Body + "\n\n" + body
		m[canon] = existing
		return
	}
	if ok && body == "" {
		return
	}
	m[canon] = types.ExtractedSection{
		Name:   canon,
		Body:   body,
		Source: types.SourcePattern,
	}
}
