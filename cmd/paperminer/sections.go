// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperminer/internal/batch"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections [document-id...]",
	Short: "Re-run section extraction from existing MinerU output",
	Long: `Sections reruns asset organization and section extraction for documents
whose MinerU output already exists under --raw-dir, without invoking
MinerU again. Useful after changing extraction settings or adding an
API key.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSections,
}

func runSections(cmd *cobra.Command, args []string) error {
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

	failed := 0
	for _, docID := range args {
		if _, err := pipeline.ExtractSections(ctx, docID, os.Stdout); err != nil {
			fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", docID, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed", failed)
	}
	return nil
}

func init() {
	sectionsCmd.Flags().String("raw-dir", "", "directory with raw MinerU output (default output/raw)")
	sectionsCmd.Flags().String("extract-dir", "", "directory for organized output (default output/extract)")
	sectionsCmd.Flags().String("model", "", "completion model for section repair")
	sectionsCmd.Flags().String("ledger", "", "ledger database path (default output/paperminer.db)")
	sectionsCmd.Flags().Bool("no-ledger", false, "disable ledger recording")

	rootCmd.AddCommand(sectionsCmd)
}
