// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the statute-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/statute-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// configString resolves a string setting: the flag when given, else the
// config file or environment, else fallback.
func configString(cmd *cobra.Command, flag, key, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

// configInt resolves an integer setting with the same precedence as configString.
func configInt(cmd *cobra.Command, flag, key string, fallback int) int {
	if v, _ := cmd.Flags().GetInt(flag); v != 0 {
		return v
	}
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// configDuration resolves a duration setting with the same precedence as configString.
func configDuration(cmd *cobra.Command, flag, key string, fallback time.Duration) time.Duration {
	if v, _ := cmd.Flags().GetDuration(flag); v != 0 {
		return v
	}
	if v := viper.GetDuration(key); v != 0 {
		return v
	}
	return fallback
}

// rootCmd is the base command for the statute-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "statute-engine",
	Short: "Pipeline for converting and indexing Vietnamese statutes",
	Long: `statute-engine converts Vietnamese statutory documents from plain text
into a structured chapter/article/clause form with stable, diff-friendly
JSON serialization, and maintains a searchable index over the results.

Each pipeline stage is a subcommand: fetch downloads source texts from a
catalog, convert parses them into structured JSON, compose combines a law
with its related documents into a single input, index ingests and queries
converted documents, and grade builds question/answer testsets and judges
answers with an LLM.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./statute-engine.yaml or ~/.config/statute-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("statute-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "statute-engine"))
		}
	}

	viper.SetEnvPrefix("STATUTE_ENGINE")
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
