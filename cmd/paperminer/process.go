// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperminer/internal/batch"
	"github.com/pdiddy/paperminer/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [pdf...]",
	Short: "Run the full pipeline over PDFs",
	Long: `Process runs each PDF through MinerU, organizes the extracted figures,
tables, and formulas, and extracts the canonical sections from the
converted Markdown. With no arguments every PDF in --pdf-dir is
processed; already-processed documents are skipped.

Individual document failures are reported and counted; the batch
continues.`,
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	store, err := openLedger(cmd, cfg.Ledger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	engine := buildEngine(cfg.Sections)
	pipeline := batch.NewPipeline(cfg, engine, store)
	ctx := context.Background()

	if len(args) > 0 {
		var summary batch.Summary
		for _, pdf := range args {
			doc, err := pipeline.ProcessOne(ctx, pdf, os.Stdout)
			switch {
			case err != nil:
				fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", doc.ID, err)
				summary.Failed++
			case doc.Status == types.StatusSkipped:
				summary.Skipped++
			default:
				summary.Processed++
			}
		}
		fmt.Fprintf(os.Stdout, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
			summary.Processed, summary.Skipped, summary.Failed, summary.Total())
		if summary.HasFailures() {
			return fmt.Errorf("%d document(s) failed", summary.Failed)
		}
		return nil
	}

	pdfDir, _ := cmd.Flags().GetString("pdf-dir")
	summary, err := pipeline.ProcessDir(ctx, pdfDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed", summary.Failed)
	}
	return nil
}

func init() {
	processCmd.Flags().String("pdf-dir", "input", "directory of PDFs to process")
	processCmd.Flags().String("raw-dir", "", "directory for raw MinerU output (default output/raw)")
	processCmd.Flags().String("extract-dir", "", "directory for organized output (default output/extract)")
	processCmd.Flags().String("device", "", "MinerU compute device: cuda or cpu")
	processCmd.Flags().String("model", "", "completion model for section repair")
	processCmd.Flags().String("ledger", "", "ledger database path (default output/paperminer.db)")
	processCmd.Flags().Bool("no-ledger", false, "disable ledger recording")

	rootCmd.AddCommand(processCmd)
}
