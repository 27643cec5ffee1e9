// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"strings"

	"github.com/pdiddy/paperminer/pkg/types"
)

// Merge combines the pattern and repair results per canonical section,
// independently. The pattern body wins whenever it exists and was not
// flagged content-too-short: deterministic output is trusted over the
// model, so a document that needed no repair always reproduces
// byte-identical sections. Otherwise the LLM body is used when present;
// otherwise the section stays absent. Stateless, no I/O.
func Merge(pattern, llm types.SectionMap, report types.QualityReport) types.SectionMap {
	out := make(types.SectionMap)

	for _, canon := range types.CanonicalOrder() {
		p, haveP := pattern[canon]
		if haveP && !report.Has(types.DefectContentTooShort, canon) {
			out[canon] = p
			continue
		}
		if l, haveL := llm[canon]; haveL && strings.TrimSpace(l.Body) != "" {
			l.Name = canon
			l.Source = types.SourceLLM
			out[canon] = l
		}
	}

	return out
}
