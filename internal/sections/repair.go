// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/paperminer/pkg/types"
)

// Completer abstracts the completion API so tests can supply a
// deterministic stub. One call sends one prompt and returns the raw model
// reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// repairPromptTmpl asks the model for section bodies as a JSON object
// keyed by exact canonical names. Used both for full re-extraction (all
// five sections) and targeted repair (only the sections named).
var repairPromptTmpl = template.Must(template.New("repair").Parse(`You are an expert at analyzing the structure of academic papers.

Below is the full Markdown text of a research paper. Extract the following sections:
{{range .Sections}}- **{{.}}**
{{end}}
Rules:
- "Results & Discussion" combines the paper's Results and Discussion material, in document order.
- Copy the paper's own text verbatim, including Markdown markup and image references. Do not summarize or paraphrase.
- If a section is genuinely absent from the paper, omit its key entirely.
- Do not include back matter (References, Acknowledgements, Appendix, Funding).

Respond with ONLY a JSON object mapping each section name, exactly as written above, to its Markdown body. No text outside the JSON object.

Paper text:
{{.Document}}
`))

// Repairer escalates defective pattern results to the completion API and
// parses the reply into a partial section map.
type Repairer struct {
	completer Completer
	cfg       types.SectionsConfig
}

// NewRepairer builds a repairer around a completer. The completer decides
// the transport; the repairer owns prompt construction and reply parsing.
func NewRepairer(completer Completer, cfg types.SectionsConfig) *Repairer {
	return &Repairer{completer: completer, cfg: cfg.WithDefaults()}
}

// Repair invokes the completion API once and returns the sections it could
// recover. The target list is every canonical section when the pattern
// pass found nothing, otherwise only the missing and too-short ones. The
// boolean reports whether the document was truncated to fit the prompt
// bound. Network, timeout, auth, and parse failures all degrade to an
// empty map with a non-nil error for logging; nothing propagates further.
func (r *Repairer) Repair(ctx context.Context, doc string, report types.QualityReport) (types.SectionMap, bool, error) {
	targets := repairTargets(report)
	if len(targets) == 0 {
		return nil, false, nil
	}

	bounded, truncated := boundDocument(doc, r.cfg.MaxPromptChars)

	prompt, err := renderRepairPrompt(targets, bounded)
	if err != nil {
		return nil, truncated, fmt.Errorf("rendering repair prompt: %w", err)
	}

	reply, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, truncated, fmt.Errorf("completion call: %w", err)
	}

	m, err := parseRepairReply(reply)
	if err != nil {
		return nil, truncated, fmt.Errorf("parsing repair reply: %w", err)
	}
	return m, truncated, nil
}

// repairTargets derives the sections worth asking for from the quality
// report, deduplicated in canonical order.
func repairTargets(report types.QualityReport) []types.CanonicalSection {
	if report.Clean() {
		return nil
	}
	if report.Empty() {
		return types.CanonicalOrder()
	}

	wanted := make(map[types.CanonicalSection]bool)
	for _, c := range report.MissingSections() {
		wanted[c] = true
	}
	for _, c := range report.ShortSections() {
		wanted[c] = true
	}

	var targets []types.CanonicalSection
	for _, c := range types.CanonicalOrder() {
		if wanted[c] {
			targets = append(targets, c)
		}
	}
	return targets
}

// sentenceEnders terminate a sentence for truncation purposes.
const sentenceEnders = ".!?。！？"

// boundWindow is how far back from the limit boundDocument will look for a
// sentence boundary before falling back to a hard cut.
const boundWindow = 2000

// boundDocument limits the document to maxChars runes, cutting at the
// sentence boundary nearest the limit. Returns the (possibly shortened)
// text and whether truncation happened.
func boundDocument(doc string, maxChars int) (string, bool) {
	runes := []rune(doc)
	if len(runes) <= maxChars {
		return doc, false
	}

	cut := maxChars
	for i := maxChars - 1; i >= maxChars-boundWindow && i > 0; i-- {
		if strings.ContainsRune(sentenceEnders, runes[i]) || (runes[i] == '\n' && runes[i-1] == '\n') {
			cut = i + 1
			break
		}
	}
	return string(runes[:cut]), true
}

// renderRepairPrompt executes the prompt template for the target sections.
func renderRepairPrompt(targets []types.CanonicalSection, doc string) (string, error) {
	var buf bytes.Buffer
	err := repairPromptTmpl.Execute(&buf, struct {
		Sections []types.CanonicalSection
		Document string
	}{Sections: targets, Document: doc})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parseRepairReply decodes the model reply into a partial section map.
// Keys outside the canonical vocabulary are discarded, not coerced; empty
// bodies are dropped.
func parseRepairReply(reply string) (types.SectionMap, error) {
	cleaned := stripCodeFence(reply)

	var raw map[string]string
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("decoding section object: %w", err)
	}

	m := make(types.SectionMap)
	for name, body := range raw {
		canon, ok := types.ResolveCanonical(name)
		if !ok {
			continue
		}
		if strings.TrimSpace(body) == "" {
			continue
		}
		appendLLMBody(m, canon, body)
	}
	return m, nil
}

// appendLLMBody records an LLM-provided body, concatenating duplicates the
// same way the pattern segmenter does.
func appendLLMBody(m types.SectionMap, canon types.CanonicalSection, body string) {
	if existing, ok := m[canon]; ok {
		existing.Body = existing.Body + "\n\n" + strings.TrimSpace(body)
		m[canon] = existing
		return
	}
	m[canon] = types.ExtractedSection{
		Name:   canon,
		Body:   strings.TrimSpace(body),
		Source: types.SourceLLM,
	}
}

// stripCodeFence removes a surrounding Markdown code fence from a model
// reply, tolerating the ```json info string.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
