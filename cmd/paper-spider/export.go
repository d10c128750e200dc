// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isaacveg/paper-spider/internal/catalog"
	"github.com/isaacveg/paper-spider/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cataloged papers to txt, json, csv, or yaml",
	Long: `Export renders the catalog (optionally narrowed by the query flags and
filter rules) into a document. The txt format is a bare title list; json,
csv, and yaml include the fields selected by --authors, --abstract, and
--keywords.`,
	RunE: runExport,
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().String("format", "txt", "output format: txt, json, csv, or yaml")
	exportCmd.Flags().String("out", "", "output file (default stdout)")
	exportCmd.Flags().Bool("authors", false, "include the author list")
	exportCmd.Flags().Bool("abstract", false, "include the abstract")
	exportCmd.Flags().Bool("keywords", false, "include the keywords")
	addQueryFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	_, cat, err := partition(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	rows, err := cat.Rows(cmd.Context(), catalogQuery(cmd))
	if err != nil {
		return err
	}

	rules, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	if !rules.Empty() {
		kept := make([]catalog.Row, 0, len(rows))
		for _, r := range rows {
			if rules.Match(r.Paper) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	format, _ := cmd.Flags().GetString("format")
	authors, _ := cmd.Flags().GetBool("authors")
	abstract, _ := cmd.Flags().GetBool("abstract")
	keywords, _ := cmd.Flags().GetBool("keywords")

	data, err := export.Build(rows, export.Options{
		Format:   export.Format(format),
		Authors:  authors,
		Abstract: abstract,
		Keywords: keywords,
	})
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Printf("exported %d paper(s) to %s\n", len(rows), out)
	return nil
}
