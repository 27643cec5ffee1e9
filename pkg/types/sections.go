// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// CanonicalSection is one of the fixed section names a paper is decomposed
// into. No free-form heading text survives to output; every extracted body
// is keyed by a member of this set.
type CanonicalSection string

const (
	SectionAbstract     CanonicalSection = "Abstract"
	SectionIntroduction CanonicalSection = "Introduction"
	SectionMethods      CanonicalSection = "Methods"
	SectionResults      CanonicalSection = "Results & Discussion"
	SectionConclusion   CanonicalSection = "Conclusion"
)

// CanonicalOrder returns the canonical sections in output order. Matching
// does not depend on this order; serialization does.
func CanonicalOrder() []CanonicalSection {
	return []CanonicalSection{
		SectionAbstract,
		SectionIntroduction,
		SectionMethods,
		SectionResults,
		SectionConclusion,
	}
}

// ResolveCanonical maps a name to its CanonicalSection, case-insensitively.
// Names outside the fixed vocabulary are rejected, not coerced.
func ResolveCanonical(name string) (CanonicalSection, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range CanonicalOrder() {
		if strings.ToLower(string(c)) == needle {
			return c, true
		}
	}
	return "", false
}

// Provenance records which engine produced a section body.
type Provenance string

const (
	SourcePattern Provenance = "pattern"
	SourceLLM     Provenance = "llm"
)

// ExtractedSection is one canonical section of a document.
type ExtractedSection struct {
	// Name is the canonical section this body belongs to.
	Name CanonicalSection `json:"name" yaml:"name"`

	// Body is the raw Markdown text of the section.
	Body string `json:"body" yaml:"body"`

	// Source records whether the body came from pattern matching or repair.
	Source Provenance `json:"source" yaml:"source"`
}

// Chars returns the length of the trimmed body in characters (runes).
// Quality thresholds are expressed in these units.
func (s ExtractedSection) Chars() int {
	return len([]rune(strings.TrimSpace(s.Body)))
}

// SectionMap is a document's section decomposition: zero or one body per
// canonical section.
type SectionMap map[CanonicalSection]ExtractedSection

// Missing returns the canonical sections absent from the map, in canonical
// order.
func (m SectionMap) Missing() []CanonicalSection {
	var absent []CanonicalSection
	for _, c := range CanonicalOrder() {
		if _, ok := m[c]; !ok {
			absent = append(absent, c)
		}
	}
	return absent
}

// DefectKind classifies a quality defect found in a pattern-extraction
// result. Defects are data, not errors: they drive the repair decision.
type DefectKind string

const (
	// DefectExtractionEmpty means pattern matching found no sections at all.
	// Reported instead of DefectSectionCountLow because it selects full
	// re-extraction rather than targeted repair.
	DefectExtractionEmpty DefectKind = "extraction-empty"

	// DefectMissingSection means a critical canonical section is absent.
	DefectMissingSection DefectKind = "missing-critical-section"

	// DefectContentTooShort means a section body is below the minimum length.
	DefectContentTooShort DefectKind = "content-too-short"

	// DefectSectionCountLow means fewer sections resolved than the minimum.
	DefectSectionCountLow DefectKind = "section-count-low"
)

// Defect is one quality finding. Section is set for per-section kinds
// (missing-critical-section, content-too-short) and empty for the
// document-level kinds.
type Defect struct {
	Kind    DefectKind       `json:"kind" yaml:"kind"`
	Section CanonicalSection `json:"section,omitempty" yaml:"section,omitempty"`
}

// QualityReport is the assessor's verdict on a pattern-extraction result.
// Purely derived from the SectionMap; recomputed per document.
type QualityReport struct {
	Defects []Defect `json:"defects" yaml:"defects"`
}

// Clean reports whether no defects were found.
func (r QualityReport) Clean() bool {
	return len(r.Defects) == 0
}

// Empty reports whether pattern matching produced no sections at all.
func (r QualityReport) Empty() bool {
	return r.Has(DefectExtractionEmpty, "")
}

// Has reports whether the given defect was recorded. Section is empty for
// document-level kinds.
func (r QualityReport) Has(kind DefectKind, section CanonicalSection) bool {
	for _, d := range r.Defects {
		if d.Kind == kind && d.Section == section {
			return true
		}
	}
	return false
}

// MissingSections lists the sections flagged missing-critical-section, in
// report order.
func (r QualityReport) MissingSections() []CanonicalSection {
	var out []CanonicalSection
	for _, d := range r.Defects {
		if d.Kind == DefectMissingSection {
			out = append(out, d.Section)
		}
	}
	return out
}

// ShortSections lists the sections flagged content-too-short, in report
// order.
func (r QualityReport) ShortSections() []CanonicalSection {
	var out []CanonicalSection
	for _, d := range r.Defects {
		if d.Kind == DefectContentTooShort {
			out = append(out, d.Section)
		}
	}
	return out
}

// Diagnostics is the queryable record of one document's section
// extraction: which defects triggered, whether repair ran, and where each
// final body came from.
type Diagnostics struct {
	// Defects is the assessor's finding on the pattern result.
	Defects []Defect `json:"defects" yaml:"defects"`

	// RepairAttempted reports whether the repair engine was invoked.
	// False both when the report was clean and when no credential was
	// configured (regex-only mode).
	RepairAttempted bool `json:"repair_attempted" yaml:"repair_attempted"`

	// RepairSucceeded reports whether repair returned at least one usable
	// section body.
	RepairSucceeded bool `json:"repair_succeeded" yaml:"repair_succeeded"`

	// PromptTruncated reports whether the document was cut to fit the
	// prompt size bound.
	PromptTruncated bool `json:"prompt_truncated" yaml:"prompt_truncated"`

	// Provenance maps each section present in the final map to its source.
	Provenance map[CanonicalSection]Provenance `json:"provenance" yaml:"provenance"`
}
