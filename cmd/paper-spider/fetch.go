// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isaacveg/paper-spider/internal/spider"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a conference year's paper listing into the catalog",
	Long: `Fetch pulls the accepted-paper listing for one source and year, applies
the keyword filter if one is given, and merges the result into the local
catalog. Re-fetching merges into existing records instead of duplicating
them.

Filter expressions take the form "field=value" (field one of title, authors,
abstract, keywords, any) or a bare value matched against all fields; prefix
the value with "!" to require absence instead of presence.`,
	RunE: runFetch,
}

func init() {
	addFilterFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	runner := spider.New(adapter, cat, os.Stdout)
	count, err := runner.FetchList(ctx, rules)
	if err != nil {
		return err
	}

	total, err := cat.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("merged %d paper(s); catalog now holds %d\n", count, total)
	return nil
}
