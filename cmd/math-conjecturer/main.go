// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the math-conjecturer CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZJashi/math-conjecturer/internal/logging"
	"github.com/ZJashi/math-conjecturer/internal/secrets"
	"github.com/ZJashi/math-conjecturer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the math-conjecturer CLI.
var rootCmd = &cobra.Command{
	Use:   "math-conjecturer",
	Short: "Turn arXiv math papers into critiqued research proposals",
	Long: `math-conjecturer reads an arXiv paper and develops research proposals
from it in two stages. The process stage downloads the paper source,
writes a summary, puts it through a critique-revise loop, and distills
the paper's results into a mechanism graph. The propose stage reads the
stored summary and mechanism, drafts a research agenda, and develops
each direction through brainstorming and four parallel critics until a
final report is judged and scored.

Every intermediate artifact lands under the papers directory, and every
run is recorded in a local index that runs and serve expose.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./math-conjecturer.yaml or ~/.config/math-conjecturer/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "auto", "log format (auto, text, json)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("math-conjecturer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "math-conjecturer"))
		}
	}

	viper.SetEnvPrefix("MATH_CONJECTURER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig builds the effective config: defaults, overridden by any
// keys present in the config file or environment, with the API key resolved
// from the secrets directory.
func pipelineConfig() types.PipelineConfig {
	cfg := types.DefaultConfig()

	if v := viper.GetString("ai.model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetString("ai.base_url"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := viper.GetInt("ai.max_retries"); v > 0 {
		cfg.AI.MaxRetries = v
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}
	if v := viper.GetString("http.user_agent"); v != "" {
		cfg.HTTP.UserAgent = v
	}
	if v := viper.GetString("papers.dir"); v != "" {
		cfg.Papers.Dir = v
	}
	if v := viper.GetInt("phase1.max_revisions"); v > 0 {
		cfg.Phase1.MaxRevisions = v
	}
	if v := viper.GetInt("phase2.max_iterations"); v > 0 {
		cfg.Phase2.MaxIterations = v
	}
	if v := viper.GetInt("phase2.directions"); v > 0 {
		cfg.Phase2.Directions = v
	}
	if v := viper.GetString("store.dir"); v != "" {
		cfg.Store.Dir = v
	}
	if v := viper.GetString("serve.addr"); v != "" {
		cfg.Serve.Addr = v
	}
	if v := viper.GetStringSlice("serve.cors_origins"); len(v) > 0 {
		cfg.Serve.CORSOrigins = v
	}

	cfg.AI.APIKey = secrets.Resolve(loadedSecrets, "openrouter-api-key", "OPENROUTER_API_KEY")
	return cfg
}

func requireAPIKey(cfg types.PipelineConfig) error {
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("no OpenRouter API key: create .secrets/openrouter-api-key or set OPENROUTER_API_KEY")
	}
	return nil
}

func newLogger() *slog.Logger {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	format, _ := rootCmd.PersistentFlags().GetString("log-format")
	logger := logging.New(logging.Config{Level: level, Format: format})
	slog.SetDefault(logger)
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
