// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperminer/internal/ledger"
	"github.com/pdiddy/paperminer/internal/sections"
	"github.com/pdiddy/paperminer/internal/secrets"
	"github.com/pdiddy/paperminer/pkg/types"
)

// pipelineConfig assembles the full pipeline configuration from flags,
// the config file, and loaded credentials. Flags win over the config file.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	rawDir := stringSetting(cmd, "raw-dir", "mineru.raw_dir", "output/raw")
	extractDir := stringSetting(cmd, "extract-dir", "extract_dir", "output/extract")
	device, _ := cmd.Flags().GetString("device")
	if device == "" {
		device = viper.GetString("mineru.device")
	}

	cfg := types.PipelineConfig{
		MinerU: types.MinerUConfig{
			Device: types.Device(device),
			RawDir: rawDir,
		},
		Assets: types.AssetsConfig{
			Text:     true,
			Figures:  true,
			Tables:   true,
			Formulas: true,
			Index:    true,
		},
		ExtractDir: extractDir,
		Sections:   sectionsConfig(cmd),
		Ledger: types.LedgerConfig{
			Path: stringSetting(cmd, "ledger", "ledger.path", ""),
		},
	}
	return cfg
}

// sectionsConfig builds the section engine configuration. The API key comes
// from the environment or .env, never from a flag.
func sectionsConfig(cmd *cobra.Command) types.SectionsConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("sections.model")
	}

	cfg := types.SectionsConfig{
		Model:           model,
		APIKey:          secretDefault(secrets.KeyDeepseekAPIKey, ""),
		Endpoint:        secretDefault(secrets.KeyDeepseekEndpoint, viper.GetString("sections.endpoint")),
		MinContentChars: viper.GetInt("sections.min_content_chars"),
		MinSectionCount: viper.GetInt("sections.min_section_count"),
		MaxPromptChars:  viper.GetInt("sections.max_prompt_chars"),
		MaxTokens:       viper.GetInt("sections.max_tokens"),
	}
	cfg.UserAgent = "paperminer/" + version
	return cfg
}

// buildEngine constructs the section engine, in regex-only mode when no
// API key is configured.
func buildEngine(cfg types.SectionsConfig) *sections.Engine {
	var completer sections.Completer
	if cfg.APIKey != "" {
		completer = sections.NewDeepseekClient(cfg)
	} else {
		fmt.Fprintln(os.Stderr, "No DEEPSEEK_API_KEY configured; running regex-only")
	}
	return sections.NewEngine(cfg, completer)
}

// openLedger opens the ledger store unless --no-ledger was given.
func openLedger(cmd *cobra.Command, cfg types.LedgerConfig) (*ledger.Store, error) {
	if disabled, _ := cmd.Flags().GetBool("no-ledger"); disabled {
		return nil, nil
	}
	return ledger.NewStore(cfg)
}

// stringSetting resolves flag > config file > fallback.
func stringSetting(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return fallback
}
