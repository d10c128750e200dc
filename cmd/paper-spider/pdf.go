// Copyright 2026 Isaacveg. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/isaacveg/paper-spider/internal/spider"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Download PDFs for cataloged papers",
	Long: `Pdf downloads the PDF of every cataloged paper not yet on disk into the
partition's pdf/ directory. Papers whose PDF is already present are skipped;
a recorded PDF whose file has since been deleted is downloaded again. Filter
rules narrow the batch to a subset of the catalog.`,
	RunE: runPDF,
}

func init() {
	addFilterFlags(pdfCmd)
	rootCmd.AddCommand(pdfCmd)
}

func runPDF(cmd *cobra.Command, args []string) error {
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

	result, err := spider.New(adapter, cat, os.Stdout).DownloadPDFs(ctx, rules)
	if err != nil {
		return err
	}
	reportBatch("pdf download", result.Done, result.Cancelled)
	return nil
}
