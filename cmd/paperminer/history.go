// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperminer/internal/ledger"
	"github.com/pdiddy/paperminer/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent processing runs from the ledger",
	Long: `History lists recent extraction runs recorded in the ledger, newest
first: document, status, defects found, whether repair ran, and which
source produced each section.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ledgerPath := stringSetting(cmd, "ledger", "ledger.path", "")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := ledger.NewStore(types.LedgerConfig{Path: ledgerPath})
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.History(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(os.Stdout, "%s  %-10s %s\n", rec.RunAt, rec.Status, rec.DocumentID)
		if len(rec.Defects) > 0 {
			fmt.Fprintf(os.Stdout, "    defects: %s\n", formatDefects(rec.Defects))
		}
		if rec.RepairAttempted {
			outcome := "failed"
			if rec.RepairSucceeded {
				outcome = "succeeded"
			}
			fmt.Fprintf(os.Stdout, "    repair: %s (prompt truncated: %v)\n", outcome, rec.PromptTruncated)
		}
		for _, sec := range rec.Sections {
			fmt.Fprintf(os.Stdout, "    %-21s %s (%d chars)\n", sec.Name, sec.Source, sec.Chars)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d run(s)\n", len(records))
	return nil
}

func formatDefects(defects []types.Defect) string {
	parts := make([]string, len(defects))
	for i, d := range defects {
		if d.Section != "" {
			parts[i] = fmt.Sprintf("%s(%s)", d.Kind, d.Section)
			continue
		}
		parts[i] = string(d.Kind)
	}
	return strings.Join(parts, ", ")
}

func init() {
	historyCmd.Flags().String("ledger", "", "ledger database path (default output/paperminer.db)")
	historyCmd.Flags().Int("limit", 20, "maximum runs to show")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}
