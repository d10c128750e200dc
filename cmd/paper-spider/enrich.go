// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/isaacveg/paper-spider/internal/spider"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill in abstracts and detail metadata for cataloged papers",
	Long: `Enrich visits the detail page of every cataloged paper whose abstract is
still missing and stores the abstract, author list, keywords, and artifact
URLs it finds. Papers already enriched are skipped, so an interrupted run
picks up where it stopped. Filter rules narrow the batch to a subset of the
catalog.`,
	RunE: runEnrich,
}

func init() {
	addFilterFlags(enrichCmd)
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	adapter, cat, err := partition(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	rules, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := interruptibleContext()
	defer stop()

	result, err := spider.New(adapter, cat, os.Stdout).EnrichBatch(ctx, rules)
	if err != nil {
		return err
	}
	reportBatch("enrich", result.Done, result.Cancelled)
	return nil
}
