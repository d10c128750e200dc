// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged papers and their acquisition status",
	Long: `List prints the catalog contents for one source and year, ordered by
title. The status column marks each paper's progress: A = abstract resolved,
P = PDF downloaded, B = bibtex saved.`,
	RunE: runList,
}

func init() {
	addQueryFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	_, cat, err := partition(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	rows, err := cat.Rows(cmd.Context(), catalogQuery(cmd))
	if err != nil {
		return err
	}

	for _, r := range rows {
		status := []byte("---")
		if r.AbstractResolved {
			status[0] = 'A'
		}
		if r.PDFPresent {
			status[1] = 'P'
		}
		if r.BibLocation != "" {
			status[2] = 'B'
		}
		line := fmt.Sprintf("[%s] %s  %s", status, r.ID, r.Title)
		if len(r.Authors) > 0 {
			line += "  (" + strings.Join(r.Authors, ", ") + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("%d paper(s)\n", len(rows))
	return nil
}
