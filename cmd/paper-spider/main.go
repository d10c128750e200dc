// Copyright 2026 Isaacveg. All rights reserved.

// Package main is the entry point for the paper-spider CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-spider CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-spider",
	Short: "Collect academic paper metadata from conference proceedings",
	Long: `paper-spider crawls conference proceedings (ICLR, ICML, NeurIPS) and
maintains a local catalog of paper metadata per source and year. Each
acquisition stage is a subcommand: fetch pulls the listing, enrich visits
detail pages, pdf and bib download artifacts, and list/export query the
catalog. Interrupted stages resume where they stopped.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-spider.yaml or ~/.config/paper-spider/config.yaml)")
	rootCmd.PersistentFlags().String("source", "", "paper source: "+sourceList())
	rootCmd.PersistentFlags().Int("year", 0, "conference year")
	rootCmd.PersistentFlags().String("workspace", "", "base directory for catalogs and downloads (default ./papers)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-spider")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-spider"))
		}
	}

	viper.SetDefault("workspace", "papers")
	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.request_delay", "1s")
	viper.SetDefault("http.max_retries", 3)

	viper.SetEnvPrefix("PAPER_SPIDER")
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
