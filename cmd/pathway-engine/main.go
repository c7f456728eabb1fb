// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pathway-engine CLI. It generates
// personalized learning pathways from the command line and serves the same
// pipeline over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pathway-engine/internal/logger"
	"github.com/pdiddy/pathway-engine/internal/secrets"
	"github.com/pdiddy/pathway-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultCredentials holds API keys resolved from .secrets/, the process
// environment and .env at startup.
var defaultCredentials types.Credentials

// rootCmd is the base command for the pathway-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "pathway-engine",
	Short: "Generate personalized learning pathways",
	Long: `pathway-engine turns a learner profile (learning style, topic, hobby, domain)
into a structured learning pathway. It searches the web for context, asks a
generative model for a schema-conformant pathway, enriches the explanation
sections, and attaches the source links it found.

Use generate for a one-off pathway, or serve to expose the pipeline over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		asJSON, _ := cmd.Flags().GetBool("log-json")
		logger.SetDefault(logger.New(&logger.Config{Level: level, Output: os.Stderr, JSON: asJSON}))

		dir, _ := cmd.Flags().GetString("secrets-dir")
		envFile, _ := cmd.Flags().GetString("env-file")
		creds, err := secrets.Resolve(secrets.Sources{Dir: dir, EnvFile: envFile})
		if err != nil {
			return err
		}
		defaultCredentials = creds

		log := logger.FromContext(cmd.Context())
		log.Debug("credentials resolved",
			"google_api_key", creds.GenerationKey != "",
			"tavily_api_key", creds.SearchKey != "")
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pathway-engine.yaml or ~/.config/pathway-engine/pathway-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding google-api-key and tavily-api-key files")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file consulted for GOOGLE_API_KEY and TAVILY_API_KEY")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pathway-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pathway-engine"))
		}
	}

	setConfigDefaults(viper.GetViper())
	viper.SetEnvPrefix("PATHWAY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
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
