// Copyright 2026 Isaacveg. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaacveg/paper-spider/pkg/types"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Open(types.WorkspaceConfig{BaseDir: t.TempDir()}, "iclr", 2024)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func paper(id, title string) types.Paper {
	return types.Paper{ID: id, Title: title, Source: "iclr", Year: 2024}
}

func TestOpenCreatesPartitionLayout(t *testing.T) {
	base := t.TempDir()
	cat, err := Open(types.WorkspaceConfig{BaseDir: base}, "neurips", 2022)
	require.NoError(t, err)
	defer cat.Close()

	paths := cat.Paths()
	assert.Equal(t, filepath.Join(base, "neurips", "2022"), paths.RootDir)
	assert.DirExists(t, paths.PDFDir)
	assert.DirExists(t, paths.BibDir)
	assert.FileExists(t, paths.DBPath)
}

func TestOpenIsIdempotent(t *testing.T) {
	ws := types.WorkspaceConfig{BaseDir: t.TempDir()}
	cat, err := Open(ws, "iclr", 2024)
	require.NoError(t, err)

	_, err = cat.Upsert(context.Background(), []types.Paper{paper("p1", "First")})
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	// Reopening runs the schema and migration path against an existing db.
	cat, err = Open(ws, "iclr", 2024)
	require.NoError(t, err)
	defer cat.Close()

	total, err := cat.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestUpsertMergesWithoutDuplicating(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	full := paper("p1", "First")
	full.Abstract = "An abstract."
	full.PDFURL = "https://example.org/p1.pdf"
	_, err := cat.Upsert(ctx, []types.Paper{full})
	require.NoError(t, err)

	// A later listing pass has less detail; the merge must not lose any.
	sparse := paper("p1", "First (v2)")
	count, err := cat.Upsert(ctx, []types.Paper{sparse})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rows, err := cat.Rows(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "First (v2)", rows[0].Title)
	assert.Equal(t, "An abstract.", rows[0].Abstract)
	assert.Equal(t, "https://example.org/p1.pdf", rows[0].PDFURL)
	assert.True(t, rows[0].AbstractResolved)
}

func TestUpsertSameIDWithinBatch(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	_, err := cat.Upsert(ctx, []types.Paper{
		paper("p1", "First"),
		paper("p1", "First Again"),
	})
	require.NoError(t, err)

	total, err := cat.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRowsQueryAndOrder(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	a := paper("p1", "Zebra Networks")
	a.Authors = []string{"Ada Lovelace"}
	b := paper("p2", "Antelope Transformers")
	b.Keywords = []string{"attention"}
	c := paper("p3", "Mongoose Methods")
	c.Abstract = "We study attention at length."

	_, err := cat.Upsert(ctx, []types.Paper{a, b, c})
	require.NoError(t, err)

	rows, err := cat.Rows(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Antelope Transformers", rows[0].Title)
	assert.Equal(t, "Zebra Networks", rows[2].Title)

	rows, err = cat.Rows(ctx, Query{Title: "Zebra"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID)

	rows, err = cat.Rows(ctx, Query{Author: "Lovelace"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "p1", rows[0].ID)

	// Keyword matches the keyword list and the abstract text.
	rows, err = cat.Rows(ctx, Query{Keyword: "attention"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUpdateDetails(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	_, err := cat.Upsert(ctx, []types.Paper{paper("p1", "First")})
	require.NoError(t, err)

	err = cat.UpdateDetails(ctx, "p1", Details{
		Abstract: "Found it.",
		Authors:  []string{"Ada"},
		Keywords: []string{"ferrets"},
		PDFURL:   "https://example.org/p1.pdf",
	})
	require.NoError(t, err)

	row, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, row.AbstractResolved)
	assert.Equal(t, "Found it.", row.Abstract)
	assert.Equal(t, []string{"Ada"}, row.Authors)

	// A failed re-enrichment reports nothing; nothing may regress.
	err = cat.UpdateDetails(ctx, "p1", Details{Authors: []string{"Ada"}})
	require.NoError(t, err)

	row, err = cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, row.AbstractResolved)
	assert.Equal(t, "Found it.", row.Abstract)
	assert.Equal(t, "https://example.org/p1.pdf", row.PDFURL)
}

func TestPDFSelfHeal(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	_, err := cat.Upsert(ctx, []types.Paper{paper("p1", "First")})
	require.NoError(t, err)

	pdfPath := filepath.Join(cat.Paths().PDFDir, "First.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0o644))
	require.NoError(t, cat.MarkPDFDownloaded(ctx, "p1", pdfPath))

	row, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, row.PDFPresent)
	assert.Equal(t, pdfPath, row.PDFLocation)

	// Deleting the file behind the catalog's back heals the status on read.
	require.NoError(t, os.Remove(pdfPath))
	row, err = cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, row.PDFPresent)
	assert.Empty(t, row.PDFLocation)

	// The healed status is persisted, not just projected.
	row, err = cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, row.PDFPresent)
}

func TestBibSelfHealKeepsCachedText(t *testing.T) {
	cat := testCatalog(t)
	ctx := context.Background()

	_, err := cat.Upsert(ctx, []types.Paper{paper("p1", "First")})
	require.NoError(t, err)

	bibPath := filepath.Join(cat.Paths().BibDir, "First.bib")
	require.NoError(t, os.WriteFile(bibPath, []byte("@inproceedings{p1}"), 0o644))
	require.NoError(t, cat.MarkBibSaved(ctx, "p1", "@inproceedings{p1}", bibPath))

	require.NoError(t, os.Remove(bibPath))
	row, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, row.BibLocation)
	assert.Equal(t, "@inproceedings{p1}", row.Bibtex)
}
