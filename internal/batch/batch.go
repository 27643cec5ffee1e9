// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives the per-document pipeline: PDF validation, MinerU
// conversion, asset organization, section extraction, and ledger recording.
// Individual document failures are counted, never fatal to the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperminer/internal/assets"
	"github.com/pdiddy/paperminer/internal/ledger"
	"github.com/pdiddy/paperminer/internal/mineru"
	"github.com/pdiddy/paperminer/internal/sections"
	"github.com/pdiddy/paperminer/pkg/types"
)

// SectionsDir is the subdirectory of a document's extract directory that
// holds the per-section Markdown files.
const SectionsDir = "Sections"

// DiagnosticsFile is the extraction diagnostics sidecar inside SectionsDir.
const DiagnosticsFile = "diagnostics.yaml"

// Summary holds the outcome of a batch run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents considered.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Pipeline wires the processing stages together. The ledger store may be
// nil, in which case runs are not recorded.
type Pipeline struct {
	cfg       types.PipelineConfig
	runner    *mineru.Runner
	organizer *assets.Organizer
	engine    *sections.Engine
	store     *ledger.Store
}

// NewPipeline builds a pipeline from configuration and an already
// constructed section engine.
func NewPipeline(cfg types.PipelineConfig, engine *sections.Engine, store *ledger.Store) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		runner:    mineru.NewRunner(cfg.MinerU),
		organizer: assets.NewOrganizer(cfg.Assets),
		engine:    engine,
		store:     store,
	}
}

// ProcessDir runs the full pipeline over every PDF in pdfDir, in name
// order, printing per-document status to w.
func (p *Pipeline) ProcessDir(ctx context.Context, pdfDir string, w io.Writer) (Summary, error) {
	if !p.runner.Available() {
		return Summary{}, fmt.Errorf("mineru binary not found on PATH")
	}

	pdfs, err := listPDFs(pdfDir)
	if err != nil {
		return Summary{}, err
	}
	if len(pdfs) == 0 {
		fmt.Fprintf(w, "no PDFs found in %s\n", pdfDir)
		return Summary{}, nil
	}

	var summary Summary
	for _, pdfPath := range pdfs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		doc, err := p.ProcessOne(ctx, pdfPath, w)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc.ID, err)
			summary.Failed++
		case doc.Status == types.StatusSkipped:
			summary.Skipped++
		default:
			summary.Processed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// ProcessOne runs the full pipeline for a single PDF. The returned Document
// always carries the derived ID and a final status, also on error.
func (p *Pipeline) ProcessOne(ctx context.Context, pdfPath string, w io.Writer) (types.Document, error) {
	doc := types.Document{
		ID:      docIDFromPath(pdfPath),
		PDFPath: pdfPath,
		Status:  types.StatusFailed,
	}

	outDir := filepath.Join(p.cfg.ExtractDir, doc.ID)
	if _, err := os.Stat(filepath.Join(outDir, SectionsDir)); err == nil {
		fmt.Fprintf(w, "skipped: %s (already processed)\n", doc.ID)
		doc.Status = types.StatusSkipped
		return doc, nil
	}

	pages, err := api.PageCountFile(pdfPath)
	if err != nil {
		return doc, fmt.Errorf("validating PDF: %w", err)
	}
	doc.PageCount = pages
	fmt.Fprintf(w, "processing %s (%d pages)\n", doc.ID, pages)

	if err := p.runner.Process(ctx, pdfPath, w); err != nil {
		p.record(ctx, doc, types.Diagnostics{}, nil, w)
		return doc, err
	}

	m, diag, err := p.extractSections(ctx, doc.ID, outDir, w)
	if err != nil {
		p.record(ctx, doc, diag, m, w)
		return doc, err
	}

	doc.Status = types.StatusDone
	p.record(ctx, doc, diag, m, w)
	return doc, nil
}

// ExtractSections reruns asset organization and section extraction for a
// document whose MinerU output already exists, without invoking MinerU.
func (p *Pipeline) ExtractSections(ctx context.Context, docID string, w io.Writer) (types.Document, error) {
	doc := types.Document{ID: docID, Status: types.StatusFailed}

	outDir := filepath.Join(p.cfg.ExtractDir, docID)
	m, diag, err := p.extractSections(ctx, docID, outDir, w)
	if err != nil {
		p.record(ctx, doc, diag, m, w)
		return doc, err
	}

	doc.Status = types.StatusDone
	p.record(ctx, doc, diag, m, w)
	return doc, nil
}

// extractSections organizes assets from the raw MinerU output and runs the
// section engine, writing section files and the diagnostics sidecar.
func (p *Pipeline) extractSections(ctx context.Context, docID, outDir string, w io.Writer) (types.SectionMap, types.Diagnostics, error) {
	autoDir := p.runner.OutputDir(docID)

	res, err := p.organizer.Organize(autoDir, outDir, docID, w)
	if err != nil {
		return nil, types.Diagnostics{}, err
	}
	if res.Markdown == "" {
		return nil, types.Diagnostics{}, fmt.Errorf("no markdown produced for %s", docID)
	}

	m, diag := p.engine.Extract(ctx, res.Markdown, w)
	if err := writeSections(outDir, m, diag); err != nil {
		return m, diag, err
	}
	return m, diag, nil
}

// record writes the run to the ledger when one is configured. Ledger
// failures are reported but do not fail the document.
func (p *Pipeline) record(ctx context.Context, doc types.Document, diag types.Diagnostics, m types.SectionMap, w io.Writer) {
	if p.store == nil {
		return
	}
	if err := p.store.Record(ctx, doc, diag, m); err != nil {
		fmt.Fprintf(w, "warning: ledger record failed for %s: %v\n", doc.ID, err)
	}
}

// diagnosticsSidecar is the YAML shape of the diagnostics file.
type diagnosticsSidecar struct {
	Defects         []types.Defect    `yaml:"defects"`
	RepairAttempted bool              `yaml:"repair_attempted"`
	RepairSucceeded bool              `yaml:"repair_succeeded"`
	PromptTruncated bool              `yaml:"prompt_truncated"`
	Sections        map[string]string `yaml:"sections"`
}

// writeSections writes one Markdown file per extracted section plus the
// diagnostics sidecar. Asset links are adjusted for the extra directory
// level.
func writeSections(outDir string, m types.SectionMap, diag types.Diagnostics) error {
	dir := filepath.Join(outDir, SectionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating sections directory: %w", err)
	}

	for canon, sec := range m {
		body := assets.FixRelativePaths(sec.Body)
		path := filepath.Join(dir, string(canon)+".md")
		content := fmt.Sprintf("# %s\n\n%s\n", canon, body)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing section %s: %w", canon, err)
		}
	}

	sidecar := diagnosticsSidecar{
		Defects:         diag.Defects,
		RepairAttempted: diag.RepairAttempted,
		RepairSucceeded: diag.RepairSucceeded,
		PromptTruncated: diag.PromptTruncated,
		Sections:        map[string]string{},
	}
	for canon, src := range diag.Provenance {
		sidecar.Sections[string(canon)] = string(src)
	}

	data, err := yaml.Marshal(sidecar)
	if err != nil {
		return fmt.Errorf("marshaling diagnostics: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, DiagnosticsFile), data, 0o644)
}

// listPDFs returns the PDF files directly under dir, sorted by name.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading PDF directory %s: %w", dir, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

// docIDFromPath derives the document ID from the PDF filename.
func docIDFromPath(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
