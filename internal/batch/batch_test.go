// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperminer/internal/assets"
	"github.com/pdiddy/paperminer/internal/sections"
	"github.com/pdiddy/paperminer/pkg/types"
)

func TestSummary(t *testing.T) {
	s := Summary{Processed: 3, Skipped: 1, Failed: 2}
	if s.Total() != 6 {
		t.Errorf("Total = %d, want 6", s.Total())
	}
	if !s.HasFailures() {
		t.Error("HasFailures = false")
	}
	if (Summary{Processed: 1}).HasFailures() {
		t.Error("HasFailures = true with no failures")
	}
}

func TestDocIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"input/paper1.pdf", "paper1"},
		{"/abs/path/some.paper.v2.pdf", "some.paper.v2"},
		{"plain.pdf", "plain"},
	}
	for _, tt := range tests {
		if got := docIDFromPath(tt.path); got != tt.want {
			t.Errorf("docIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	pdfs, err := listPDFs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(pdfs) != 3 {
		t.Fatalf("pdfs = %v", pdfs)
	}
	for i := 1; i < len(pdfs); i++ {
		if pdfs[i-1] > pdfs[i] {
			t.Errorf("not sorted: %v", pdfs)
		}
	}
}

// writeRawOutput fabricates the MinerU auto/ directory the pipeline
// consumes, so extraction can be tested without the external binary.
func writeRawOutput(t *testing.T, rawDir, docID, markdown string) {
	t.Helper()
	autoDir := filepath.Join(rawDir, docID, "auto")
	if err := os.MkdirAll(autoDir, 0o755); err != nil {
		t.Fatal(err)
	}

	items := []assets.ContentItem{{Type: assets.ItemText, Text: "intro", PageIdx: 0}}
	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(autoDir, docID+"_content_list.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(autoDir, docID+".md"), []byte(markdown), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testPipeline(t *testing.T) (*Pipeline, types.PipelineConfig) {
	t.Helper()
	cfg := types.PipelineConfig{
		MinerU:     types.MinerUConfig{RawDir: filepath.Join(t.TempDir(), "raw")},
		Assets:     types.AssetsConfig{Text: true, Figures: true, Tables: true, Formulas: true, Index: true},
		ExtractDir: filepath.Join(t.TempDir(), "extract"),
	}
	engine := sections.NewEngine(cfg.Sections, nil)
	return NewPipeline(cfg, engine, nil), cfg
}

const testMarkdown = `## Abstract

We study widgets under sustained load and report all of their failure modes in detail across many trials.

## Introduction

Widgets are everywhere in modern machinery and their durability matters a great deal to operators everywhere.

## Methods

We loaded one hundred widgets in a hydraulic press and recorded the load at which each one failed completely.

## Results and Discussion

Most widgets survived loads far above their rating and the failures clustered around manufacturing defects.

## Conclusion

Widgets are durable enough for ordinary use and fail predictably, mostly from defects introduced in manufacture.

## References

[1] A. Author. On widgets.
`

func TestExtractSectionsWritesOutputs(t *testing.T) {
	p, cfg := testPipeline(t)
	writeRawOutput(t, cfg.MinerU.RawDir, "paper1", testMarkdown)

	var out bytes.Buffer
	doc, err := p.ExtractSections(context.Background(), "paper1", &out)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != types.StatusDone {
		t.Errorf("status = %s", doc.Status)
	}

	secDir := filepath.Join(cfg.ExtractDir, "paper1", SectionsDir)
	for _, canon := range types.CanonicalOrder() {
		path := filepath.Join(secDir, string(canon)+".md")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("section file missing: %v", err)
		}
		if !strings.HasPrefix(string(data), "# "+string(canon)) {
			t.Errorf("section file %s lacks heading: %q", canon, data[:40])
		}
	}

	data, err := os.ReadFile(filepath.Join(secDir, DiagnosticsFile))
	if err != nil {
		t.Fatal(err)
	}
	var sidecar diagnosticsSidecar
	if err := yaml.Unmarshal(data, &sidecar); err != nil {
		t.Fatal(err)
	}
	if sidecar.RepairAttempted {
		t.Error("repair attempted on clean document")
	}
	if len(sidecar.Sections) != 5 {
		t.Errorf("sidecar sections = %v", sidecar.Sections)
	}
	for name, src := range sidecar.Sections {
		if src != string(types.SourcePattern) {
			t.Errorf("%s source = %s", name, src)
		}
	}
}

func TestExtractSectionsFixesAssetLinks(t *testing.T) {
	p, cfg := testPipeline(t)
	md := "## Abstract\n\nSee ![f](Figure/Fig.1.jpg) for the apparatus we used across every single one of the trials we ran here.\n"
	writeRawOutput(t, cfg.MinerU.RawDir, "paper1", md)

	var out bytes.Buffer
	if _, err := p.ExtractSections(context.Background(), "paper1", &out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.ExtractDir, "paper1", SectionsDir, "Abstract.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "(../Figure/Fig.1.jpg)") {
		t.Errorf("asset link not adjusted: %q", data)
	}
}

func TestExtractSectionsMissingRawOutput(t *testing.T) {
	p, _ := testPipeline(t)

	var out bytes.Buffer
	doc, err := p.ExtractSections(context.Background(), "ghost", &out)
	if err == nil {
		t.Fatal("missing raw output did not error")
	}
	if doc.Status != types.StatusFailed {
		t.Errorf("status = %s, want failed", doc.Status)
	}
}

func TestProcessOneSkipsProcessed(t *testing.T) {
	p, cfg := testPipeline(t)
	secDir := filepath.Join(cfg.ExtractDir, "paper1", SectionsDir)
	if err := os.MkdirAll(secDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	doc, err := p.ProcessOne(context.Background(), "input/paper1.pdf", &out)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Status != types.StatusSkipped {
		t.Errorf("status = %s, want skipped", doc.Status)
	}
	if !strings.Contains(out.String(), "already processed") {
		t.Errorf("skip not logged: %s", out.String())
	}
}
