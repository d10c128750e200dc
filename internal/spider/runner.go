// Copyright 2026 Isaacveg. All rights reserved.

// Package spider orchestrates batch acquisition runs against one
// (source, year) catalog partition.
package spider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/isaacveg/paper-spider/internal/catalog"
	"github.com/isaacveg/paper-spider/internal/filter"
	"github.com/isaacveg/paper-spider/internal/source"
)

// ErrBusy is returned when a batch operation is requested while another one
// is still running on the same runner.
var ErrBusy = errors.New("another batch operation is already running")

// Runner drives batch operations for one partition. At most one batch runs
// at a time; concurrent requests are rejected with ErrBusy rather than
// queued. Progress lines go to out.
type Runner struct {
	adapter source.Adapter
	cat     *catalog.Catalog
	out     io.Writer
	busy    atomic.Bool
}

// New builds a runner over the adapter and catalog partition.
func New(adapter source.Adapter, cat *catalog.Catalog, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{adapter: adapter, cat: cat, out: out}
}

// BatchResult summarizes a batch run. Done counts items completed before
// the run finished or was cancelled; cancellation is an outcome, not an
// error, so partial progress is still reported.
type BatchResult struct {
	Done      int
	Cancelled bool
}

func (r *Runner) begin() error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (r *Runner) end() {
	r.busy.Store(false)
}

// FetchList pulls the year's paper listing from the source, applies the
// filter rules, and merges the survivors into the catalog. Returns the
// number of records merged.
func (r *Runner) FetchList(ctx context.Context, rules filter.Set) (int, error) {
	if err := r.begin(); err != nil {
		return 0, err
	}
	defer r.end()

	papers, err := r.adapter.List(ctx, r.cat.Year())
	if err != nil {
		return 0, fmt.Errorf("listing %s %d: %w", r.adapter.Name(), r.cat.Year(), err)
	}
	fmt.Fprintf(r.out, "listed %d papers from %s %d\n", len(papers), r.adapter.Name(), r.cat.Year())

	kept := rules.Apply(papers)
	if !rules.Empty() {
		fmt.Fprintf(r.out, "filter kept %d of %d papers\n", len(kept), len(papers))
	}

	count, err := r.cat.Upsert(ctx, kept)
	if err != nil {
		return 0, fmt.Errorf("storing listing: %w", err)
	}
	return count, nil
}

// EnrichBatch visits the detail page of every record matching rules whose
// abstract is still unresolved and stores what the page yields. Records that
// already resolved their abstract are skipped, so re-running continues where
// the previous run stopped; an empty rule set selects the whole partition.
func (r *Runner) EnrichBatch(ctx context.Context, rules filter.Set) (BatchResult, error) {
	if err := r.begin(); err != nil {
		return BatchResult{}, err
	}
	defer r.end()

	rows, err := r.cat.Rows(ctx, catalog.Query{})
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, row := range rows {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}
		if !rules.Match(row.Paper) {
			continue
		}
		if row.AbstractResolved {
			continue
		}

		enriched := r.adapter.Enrich(ctx, row.Paper)
		if enriched.Abstract == "" && row.Abstract == "" {
			fmt.Fprintf(r.out, "enrich %s: no details found\n", row.ID)
			continue
		}
		err := r.cat.UpdateDetails(ctx, row.ID, catalog.Details{
			Abstract:  enriched.Abstract,
			Authors:   enriched.Authors,
			Keywords:  enriched.Keywords,
			PDFURL:    enriched.PDFURL,
			BibtexURL: enriched.BibtexURL,
			Bibtex:    enriched.Bibtex,
		})
		if err != nil {
			return result, err
		}
		result.Done++
	}
	return result, nil
}

// DownloadPDFs downloads the PDF of every record matching rules and not
// already marked present. Files land in the partition's pdf/ directory named
// after the title; a name collision with another paper's file gets the
// record id appended. Writes go through a temp file so a cancelled run never
// leaves a truncated PDF behind.
func (r *Runner) DownloadPDFs(ctx context.Context, rules filter.Set) (BatchResult, error) {
	if err := r.begin(); err != nil {
		return BatchResult{}, err
	}
	defer r.end()

	rows, err := r.cat.Rows(ctx, catalog.Query{})
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, row := range rows {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}
		if !rules.Match(row.Paper) {
			continue
		}
		if row.PDFPresent {
			continue
		}

		data, err := r.adapter.FetchPDF(ctx, row.Paper)
		if err != nil {
			fmt.Fprintf(r.out, "pdf %s: %v\n", row.ID, err)
			continue
		}

		path := r.artifactPath(r.cat.Paths().PDFDir, row, ".pdf")
		if err := writeFileAtomic(path, data); err != nil {
			fmt.Fprintf(r.out, "pdf %s: %v\n", row.ID, err)
			continue
		}
		if err := r.cat.MarkPDFDownloaded(ctx, row.ID, path); err != nil {
			return result, err
		}
		result.Done++
	}
	return result, nil
}

// SaveBibtex writes the citation of every record matching rules that has no
// saved .bib file yet. A citation already cached in the record is written
// without a network round trip; otherwise the source is asked for it.
func (r *Runner) SaveBibtex(ctx context.Context, rules filter.Set) (BatchResult, error) {
	if err := r.begin(); err != nil {
		return BatchResult{}, err
	}
	defer r.end()

	rows, err := r.cat.Rows(ctx, catalog.Query{})
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, row := range rows {
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}
		if !rules.Match(row.Paper) {
			continue
		}
		if row.BibLocation != "" {
			continue
		}

		bibtex := row.Bibtex
		if bibtex == "" {
			fetched, err := r.adapter.FetchBibtex(ctx, row.Paper)
			if err != nil {
				fmt.Fprintf(r.out, "bibtex %s: %v\n", row.ID, err)
				continue
			}
			bibtex = fetched
		}

		path := r.artifactPath(r.cat.Paths().BibDir, row, ".bib")
		if err := writeFileAtomic(path, []byte(bibtex)); err != nil {
			fmt.Fprintf(r.out, "bibtex %s: %v\n", row.ID, err)
			continue
		}
		if err := r.cat.MarkBibSaved(ctx, row.ID, bibtex, path); err != nil {
			return result, err
		}
		result.Done++
	}
	return result, nil
}

// artifactPath derives the destination path for a record's artifact. If a
// different paper already produced the same sanitized name, the record id
// disambiguates.
func (r *Runner) artifactPath(dir string, row catalog.Row, ext string) string {
	stem := SafeFileName(row.Title, row.ID)
	path := filepath.Join(dir, stem+ext)
	if fileExists(path) {
		path = filepath.Join(dir, stem+"_"+sanitizeID(row.ID)+ext)
	}
	return path
}

func sanitizeID(id string) string {
	return strings.Map(func(c rune) rune {
		if c == '/' || c == '\\' {
			return '_'
		}
		return c
	}, id)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("placing %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
