// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperminer/internal/assets"
	"github.com/pdiddy/paperminer/internal/mineru"
)

var organizeCmd = &cobra.Command{
	Use:   "organize [document-id...]",
	Short: "Organize MinerU output assets without section extraction",
	Long: `Organize copies figures, tables, and formulas out of existing MinerU
output into named files under the extract directory and rewrites the
document Markdown to reference them. Section extraction is not run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOrganize,
}

func runOrganize(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	runner := mineru.NewRunner(cfg.MinerU)
	organizer := assets.NewOrganizer(cfg.Assets)

	for _, docID := range args {
		outDir := filepath.Join(cfg.ExtractDir, docID)
		if _, err := organizer.Organize(runner.OutputDir(docID), outDir, docID, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	organizeCmd.Flags().String("raw-dir", "", "directory with raw MinerU output (default output/raw)")
	organizeCmd.Flags().String("extract-dir", "", "directory for organized output (default output/extract)")

	rootCmd.AddCommand(organizeCmd)
}
