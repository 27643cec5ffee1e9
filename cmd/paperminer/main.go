// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperminer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperminer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API credentials loaded from .env at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the loaded secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

// rootCmd is the base command for the paperminer CLI.
var rootCmd = &cobra.Command{
	Use:   "paperminer",
	Short: "Batch PDF processing and section extraction for academic papers",
	Long: `paperminer converts academic PDFs with the external MinerU pipeline,
organizes the extracted figures, tables, and formulas, and pulls the five
canonical sections (Abstract, Introduction, Methods, Results & Discussion,
Conclusion) out of the converted Markdown.

Section extraction is pattern-first: a heading matcher segments the
document, a quality check finds defects, and only then is a single LLM
repair call made. Without a DEEPSEEK_API_KEY the tool runs regex-only.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		s, present := secrets.Load(".env")
		loadedSecrets = s
		if len(present) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded credentials: %v\n", present)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperminer.yaml or ~/.config/paperminer/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperminer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperminer"))
		}
	}

	viper.SetEnvPrefix("PAPERMINER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
