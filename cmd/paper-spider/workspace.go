// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/isaacveg/paper-spider/internal/catalog"
	"github.com/isaacveg/paper-spider/internal/filter"
	"github.com/isaacveg/paper-spider/internal/source"
	"github.com/isaacveg/paper-spider/pkg/types"
)

const defaultUserAgent = "paper-spider/0.1 (+https://github.com/isaacveg/paper-spider)"

func sourceList() string {
	return strings.Join(source.Slugs(), ", ")
}

// partition resolves the --source/--year selection (flags first, config
// fallback) and opens its adapter and catalog.
func partition(cmd *cobra.Command) (source.Adapter, *catalog.Catalog, error) {
	slug, _ := cmd.Flags().GetString("source")
	if slug == "" {
		slug = viper.GetString("source")
	}
	if slug == "" {
		return nil, nil, fmt.Errorf("select a source with --source (%s)", sourceList())
	}

	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = viper.GetInt("year")
	}
	if year == 0 {
		return nil, nil, fmt.Errorf("select a conference year with --year")
	}

	baseDir, _ := cmd.Flags().GetString("workspace")
	if baseDir == "" {
		baseDir = viper.GetString("workspace")
	}

	cfg := types.SourceConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		RequestDelay: viper.GetDuration("http.request_delay"),
		MaxRetries:   viper.GetInt("http.max_retries"),
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	adapter, err := source.New(slug, cfg)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Open(types.WorkspaceConfig{BaseDir: baseDir}, slug, year)
	if err != nil {
		return nil, nil, err
	}
	return adapter, cat, nil
}

// catalogQuery reads the shared query flags used by list and export.
func catalogQuery(cmd *cobra.Command) catalog.Query {
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	keyword, _ := cmd.Flags().GetString("keyword")
	return catalog.Query{Title: title, Author: author, Keyword: keyword}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "only papers whose title contains this text")
	cmd.Flags().String("author", "", "only papers with an author containing this text")
	cmd.Flags().String("keyword", "", "only papers whose keywords or abstract contain this text")
}

// interruptibleContext returns a context cancelled by Ctrl-C, so batch
// operations stop between items and report partial progress.
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// reportBatch prints the standard batch outcome line.
func reportBatch(what string, done int, cancelled bool) {
	if cancelled {
		fmt.Printf("%s cancelled after %d paper(s)\n", what, done)
		return
	}
	fmt.Printf("%s done: %d paper(s)\n", what, done)
}

// addFilterFlags registers the rule-set flags shared by every command that
// selects a paper subset (fetch at listing time, enrich/pdf/bib/export over
// the catalog).
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("must", nil, "expression every paper must match (repeatable)")
	cmd.Flags().StringArray("should", nil, "expression counted toward --min-should-match (repeatable)")
	cmd.Flags().StringArray("must-not", nil, "expression no paper may match (repeatable)")
	cmd.Flags().Int("min-should-match", 0, "how many --should expressions must hold (0 = advisory)")
	cmd.Flags().String("filter", "", "YAML file with filter rules")
}

// filterFromFlags assembles the rule set from a command's filter flags plus
// an optional YAML rules file. Flag rules append after file rules;
// --min-should-match overrides the file's threshold when set.
func filterFromFlags(cmd *cobra.Command) (filter.Set, error) {
	var set filter.Set

	if path, _ := cmd.Flags().GetString("filter"); path != "" {
		loaded, err := loadFilterFile(path)
		if err != nil {
			return filter.Set{}, err
		}
		set = loaded
	}

	must, _ := cmd.Flags().GetStringArray("must")
	should, _ := cmd.Flags().GetStringArray("should")
	mustNot, _ := cmd.Flags().GetStringArray("must-not")
	minShould, _ := cmd.Flags().GetInt("min-should-match")

	flagSet, err := filter.ParseRules(must, should, mustNot, minShould)
	if err != nil {
		return filter.Set{}, err
	}
	set.Rules = append(set.Rules, flagSet.Rules...)
	if cmd.Flags().Changed("min-should-match") || set.MinShouldMatch == 0 {
		set.MinShouldMatch = minShould
	}
	return set, nil
}

func loadFilterFile(path string) (filter.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return filter.Set{}, fmt.Errorf("reading filter file: %w", err)
	}
	var set filter.Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return filter.Set{}, fmt.Errorf("parsing filter file %s: %w", path, err)
	}
	return set, nil
}
