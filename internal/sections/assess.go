// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"github.com/pdiddy/paperminer/pkg/types"
)

// Assess runs the four quality checks over a pattern-extraction result and
// collects every defect found; checks are independent, never
// short-circuited. The critical-section list is exactly the canonical set:
// a paper that legitimately lacks Methods still flags it, a deliberate
// recall-favoring over-trigger.
func Assess(m types.SectionMap, cfg types.SectionsConfig) types.QualityReport {
	cfg = cfg.WithDefaults()

	var report types.QualityReport

	// No sections at all: reported as extraction-empty rather than
	// section-count-low, because it selects full re-extraction instead of
	// targeted repair.
	if len(m) == 0 {
		report.Defects = append(report.Defects, types.Defect{Kind: types.DefectExtractionEmpty})
	}

	for _, canon := range types.CanonicalOrder() {
		if _, ok := m[canon]; !ok {
			report.Defects = append(report.Defects, types.Defect{
				Kind:    types.DefectMissingSection,
				Section: canon,
			})
		}
	}

	for _, canon := range types.CanonicalOrder() {
		sec, ok := m[canon]
		if !ok {
			continue
		}
		if sec.Chars() < cfg.MinContentChars {
			report.Defects = append(report.Defects, types.Defect{
				Kind:    types.DefectContentTooShort,
				Section: canon,
			})
		}
	}

	if len(m) > 0 && len(m) < cfg.MinSectionCount {
		report.Defects = append(report.Defects, types.Defect{Kind: types.DefectSectionCountLow})
	}

	return report
}
