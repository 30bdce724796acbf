// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the whistle-consult CLI: the
// consultation API server plus local tools for the reference corpus and the
// report template.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/whistle-consult/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the whistle-consult CLI.
var rootCmd = &cobra.Command{
	Use:   "whistle-consult",
	Short: "Anonymous pre-report consultation for whistleblowers",
	Long: `whistle-consult runs an AI consultation service that helps a prospective
whistleblower decide whether a matter is reportable and drafts the report.

Replies are grounded in a built-in corpus of statutes, internal regulations,
and precedent cases. The service keeps no conversation state and writes no
request logs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir, nil)
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./whistle-consult.yaml or ~/.config/whistle-consult/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("whistle-consult")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "whistle-consult"))
		}
	}

	viper.SetEnvPrefix("WHISTLE_CONSULT")
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
