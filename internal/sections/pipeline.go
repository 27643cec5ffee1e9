// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paperminer/pkg/types"
)

// Engine drives the two-stage extraction: pattern matching with quality
// assessment, then a single conditional repair call. A nil completer means
// regex-only mode: defects are recorded but never escalated. The engine
// holds no mutable state beyond its configuration and is safe for
// concurrent use across independent documents.
type Engine struct {
	cfg       types.SectionsConfig
	completer Completer
}

// NewEngine builds an engine. Pass a nil completer to run without repair
// (no credential configured); that is expected operation, not an error.
func NewEngine(cfg types.SectionsConfig, completer Completer) *Engine {
	return &Engine{cfg: cfg.WithDefaults(), completer: completer}
}

// Extract produces the final section map and its diagnostics for one
// document. Progress and provenance are logged to w. The call never fails:
// empty or unusable input yields an empty map, and every repair-side
// failure degrades to the pattern result.
func (e *Engine) Extract(ctx context.Context, doc string, w io.Writer) (types.SectionMap, types.Diagnostics) {
	var diag types.Diagnostics

	if strings.TrimSpace(doc) == "" {
		fmt.Fprintf(w, "sections: empty document, nothing to extract\n")
		diag.Defects = []types.Defect{{Kind: types.DefectExtractionEmpty}}
		diag.Provenance = map[types.CanonicalSection]types.Provenance{}
		return types.SectionMap{}, diag
	}

	candidates := Match(doc)
	pattern := Segment(doc, candidates)
	report := Assess(pattern, e.cfg)
	diag.Defects = report.Defects

	final := pattern
	if !report.Clean() {
		logDefects(w, report)
		final = e.maybeRepair(ctx, doc, pattern, report, &diag, w)
	}

	diag.Provenance = provenance(final)
	logOutcome(w, final, diag)
	return final, diag
}

// maybeRepair runs the repair engine when a completer is configured and
// merges its output under the deterministic-first policy. Any failure
// leaves the pattern result untouched.
func (e *Engine) maybeRepair(ctx context.Context, doc string, pattern types.SectionMap, report types.QualityReport, diag *types.Diagnostics, w io.Writer) types.SectionMap {
	if e.completer == nil {
		fmt.Fprintf(w, "sections: no completion credential configured, keeping pattern result\n")
		return pattern
	}

	diag.RepairAttempted = true
	repairer := NewRepairer(e.completer, e.cfg)

	llm, truncated, err := repairer.Repair(ctx, doc, report)
	diag.PromptTruncated = truncated
	if err != nil {
		fmt.Fprintf(w, "sections: repair failed, keeping pattern result: %v\n", err)
		return pattern
	}
	if len(llm) == 0 {
		fmt.Fprintf(w, "sections: repair returned nothing usable, keeping pattern result\n")
		return pattern
	}

	diag.RepairSucceeded = true
	return Merge(pattern, llm, report)
}

// provenance records where each final body came from, keyed by section.
func provenance(m types.SectionMap) map[types.CanonicalSection]types.Provenance {
	out := make(map[types.CanonicalSection]types.Provenance, len(m))
	for canon, sec := range m {
		out[canon] = sec.Source
	}
	return out
}

// logDefects prints the assessor's findings in canonical-order-stable form.
func logDefects(w io.Writer, report types.QualityReport) {
	fmt.Fprintf(w, "sections: quality check found %d defect(s):\n", len(report.Defects))
	for _, d := range report.Defects {
		if d.Section != "" {
			fmt.Fprintf(w, "  - %s: %s\n", d.Kind, d.Section)
			continue
		}
		fmt.Fprintf(w, "  - %s\n", d.Kind)
	}
}

// logOutcome prints per-section provenance and what is still missing.
func logOutcome(w io.Writer, m types.SectionMap, diag types.Diagnostics) {
	for _, canon := range types.CanonicalOrder() {
		sec, ok := m[canon]
		if !ok {
			fmt.Fprintf(w, "sections: %-21s missing\n", canon)
			continue
		}
		fmt.Fprintf(w, "sections: %-21s %s (%d chars)\n", canon, sec.Source, sec.Chars())
	}
	if diag.RepairAttempted && !diag.RepairSucceeded {
		fmt.Fprintf(w, "sections: repair attempted but contributed nothing\n")
	}
}
