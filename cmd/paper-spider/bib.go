// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/isaacveg/paper-spider/internal/spider"
)

var bibCmd = &cobra.Command{
	Use:   "bib",
	Short: "Save bibtex citations for cataloged papers",
	Long: `Bib writes a .bib citation file for every cataloged paper that does not
have one yet, into the partition's bib/ directory. Citations already cached
in the catalog are written without contacting the source. Filter rules
narrow the batch to a subset of the catalog.`,
	RunE: runBib,
}

func init() {
	addFilterFlags(bibCmd)
	rootCmd.AddCommand(bibCmd)
}

func runBib(cmd *cobra.Command, args []string) error {
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

	result, err := spider.New(adapter, cat, os.Stdout).SaveBibtex(ctx, rules)
	if err != nil {
		return err
	}
	reportBatch("bibtex save", result.Done, result.Cancelled)
	return nil
}
