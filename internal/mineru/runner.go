// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mineru runs the external MinerU pipeline over one PDF at a time.
// PaperMiner never parses PDFs itself; it consumes the Markdown and
// content-list JSON that MinerU leaves under <raw>/<name>/auto/.
package mineru

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/paperminer/pkg/types"
)

const binMineru = "mineru"

// autoDir is the subdirectory MinerU writes its results into.
const autoDir = "auto"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunStreaming(ctx context.Context, name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunStreaming(ctx context.Context, name string, args []string, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stdout
	return cmd.Run()
}

// Runner invokes the MinerU CLI for single PDFs.
type Runner struct {
	cfg  types.MinerUConfig
	exec executor
}

// NewRunner builds a runner from configuration. The zero Device defaults
// to CPU; Timeout defaults to 60 minutes, matching how long layout
// analysis can take on large scanned documents.
func NewRunner(cfg types.MinerUConfig) *Runner {
	return newRunner(cfg, defaultExec)
}

func newRunner(cfg types.MinerUConfig, exec executor) *Runner {
	if cfg.Device == "" {
		cfg.Device = types.DeviceCPU
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Minute
	}
	return &Runner{cfg: cfg, exec: exec}
}

var defaultExec executor = &osExecutor{}

// Available reports whether the mineru binary is on PATH.
func (r *Runner) Available() bool {
	_, err := r.exec.LookPath(binMineru)
	return err == nil
}

// OutputDir returns the directory MinerU writes a document's results to.
func (r *Runner) OutputDir(docID string) string {
	return filepath.Join(r.cfg.RawDir, docID, autoDir)
}

// Process runs MinerU over one PDF, streaming filtered progress output to
// w. The run is bounded by the configured timeout on top of the caller's
// context.
func (r *Runner) Process(ctx context.Context, pdfPath string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := []string{"-p", pdfPath, "-o", r.cfg.RawDir, "-d", string(r.cfg.Device)}
	fmt.Fprintf(w, "running: %s %s\n", binMineru, strings.Join(args, " "))

	filter := newProgressFilter(w)
	if err := r.exec.RunStreaming(ctx, binMineru, args, filter); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("mineru timed out after %v: %w", r.cfg.Timeout, ctx.Err())
		}
		return fmt.Errorf("running mineru on %s: %w", pdfPath, err)
	}
	return nil
}

// progressKeywords selects which MinerU output lines are worth relaying.
var progressKeywords = []string{
	"processing", "page", "error", "warning", "success",
	"complete", "progress", "layout", "ocr", "model", "cuda", "gpu",
}

// progressFilter forwards only interesting lines from MinerU's chatty
// output, buffering partial writes until a full line arrives.
type progressFilter struct {
	w   io.Writer
	buf strings.Builder
}

func newProgressFilter(w io.Writer) *progressFilter {
	return &progressFilter{w: w}
}

func (f *progressFilter) Write(p []byte) (int, error) {
	f.buf.Write(p)
	for {
		text := f.buf.String()
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			break
		}
		f.emit(text[:idx])
		f.buf.Reset()
		f.buf.WriteString(text[idx+1:])
	}
	return len(p), nil
}

func (f *progressFilter) emit(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	lower := strings.ToLower(line)
	for _, kw := range progressKeywords {
		if strings.Contains(lower, kw) {
			fmt.Fprintf(f.w, "  %s\n", line)
			return
		}
	}
}
