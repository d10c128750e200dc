// Copyright 2026 Isaacveg. All rights reserved.

// Package catalog persists paper records for one (source, year) partition
// and tracks per-artifact acquisition status so interrupted runs resume
// instead of re-fetching.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/isaacveg/paper-spider/pkg/types"
)

const dbFile = "papers.sqlite"

// Paths holds the filesystem layout of one partition.
type Paths struct {
	RootDir string
	DBPath  string
	PDFDir  string
	BibDir  string
}

// Catalog is the durable store for one (source, year) partition. Records are
// merged idempotently on upsert; artifact statuses only move forward except
// through the explicit missing transitions and the read-time self-heal.
type Catalog struct {
	db     *sql.DB
	source string
	year   int
	paths  Paths
}

// Open creates or opens the partition store under
// ws.BaseDir/source/year/, creating the pdf/ and bib/ directories and the
// schema as needed.
func Open(ws types.WorkspaceConfig, source string, year int) (*Catalog, error) {
	rootDir := filepath.Join(ws.BaseDir, source, strconv.Itoa(year))
	paths := Paths{
		RootDir: rootDir,
		DBPath:  filepath.Join(rootDir, dbFile),
		PDFDir:  filepath.Join(rootDir, "pdf"),
		BibDir:  filepath.Join(rootDir, "bib"),
	}
	for _, dir := range []string{paths.PDFDir, paths.BibDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating partition directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", paths.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Catalog{db: db, source: source, year: year, paths: paths}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Paths returns the partition's filesystem layout.
func (c *Catalog) Paths() Paths { return c.paths }

// Source returns the partition's source slug.
func (c *Catalog) Source() string { return c.source }

// Year returns the partition's year.
func (c *Catalog) Year() int { return c.year }

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			paper_id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			year INTEGER NOT NULL,
			title TEXT NOT NULL,
			detail_url TEXT,
			authors TEXT,
			abstract TEXT,
			keywords TEXT,
			pdf_url TEXT,
			pdf_location TEXT,
			bibtex_url TEXT,
			bibtex TEXT,
			bib_location TEXT,
			abstract_status INTEGER NOT NULL DEFAULT 0,
			pdf_status INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_source_year ON papers(source, year)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_title ON papers(title)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_authors ON papers(authors)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// Columns added after the first release; older partition databases
	// need them grafted in.
	for name, definition := range map[string]string{
		"pdf_location": "TEXT",
		"bib_location": "TEXT",
	} {
		if err := c.ensureColumn(name, definition); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) ensureColumn(name, definition string) error {
	rows, err := c.db.Query(`PRAGMA table_info(papers)`)
	if err != nil {
		return fmt.Errorf("reading table info: %w", err)
	}
	defer rows.Close()

	exists := false
	for rows.Next() {
		var (
			cid        int
			colName    string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("scanning table info: %w", err)
		}
		if colName == name {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = c.db.Exec(fmt.Sprintf(`ALTER TABLE papers ADD COLUMN %s %s`, name, definition))
	if err != nil {
		return fmt.Errorf("adding column %s: %w", name, err)
	}
	return nil
}

// Row is one stored record plus its catalog-owned status projection.
type Row struct {
	types.Paper

	// AbstractResolved reports whether a detail enrichment has supplied an
	// abstract. Monotonic: once set it survives list-only upserts.
	AbstractResolved bool

	// PDFPresent reports whether the PDF has been downloaded to PDFLocation.
	PDFPresent  bool
	PDFLocation string

	// BibLocation is the saved citation file, independent of whether the
	// bibtex text itself is cached in the record.
	BibLocation string

	UpdatedAt time.Time
}

// Upsert merges papers into the partition. Re-acquiring the same identity
// merges, never duplicates: scalar optional fields take the incoming
// non-empty value and otherwise keep the stored one, and abstract_status
// never decreases. Re-upserting identical records is a state-wise no-op.
func (c *Catalog) Upsert(ctx context.Context, papers []types.Paper) (int, error) {
	if len(papers) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO papers (
			paper_id, source, year, title, detail_url, authors, abstract,
			keywords, pdf_url, bibtex_url, bibtex, abstract_status,
			pdf_status, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(paper_id) DO UPDATE SET
			title = excluded.title,
			detail_url = COALESCE(excluded.detail_url, papers.detail_url),
			authors = excluded.authors,
			abstract = COALESCE(excluded.abstract, papers.abstract),
			keywords = excluded.keywords,
			pdf_url = COALESCE(excluded.pdf_url, papers.pdf_url),
			bibtex_url = COALESCE(excluded.bibtex_url, papers.bibtex_url),
			bibtex = COALESCE(excluded.bibtex, papers.bibtex),
			abstract_status = MAX(excluded.abstract_status, papers.abstract_status),
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	count := 0
	for _, p := range papers {
		abstractStatus := 0
		if p.Abstract != "" {
			abstractStatus = 1
		}
		_, err := stmt.ExecContext(ctx,
			p.ID, c.source, c.year, p.Title,
			nullable(p.DetailURL), marshalList(p.Authors), nullable(p.Abstract),
			marshalList(p.Keywords), nullable(p.PDFURL), nullable(p.BibtexURL),
			nullable(p.Bibtex), abstractStatus, now,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting %s: %w", p.ID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing upsert: %w", err)
	}
	return count, nil
}

// Query selects rows by substring. Empty fields are no constraint; Keyword
// matches against keywords or abstract.
type Query struct {
	Title   string
	Author  string
	Keyword string
}

// Rows returns the partition's records matching q, ordered by title. Before
// returning, artifact statuses are reconciled against the filesystem: a
// "present" status whose file has gone missing is healed back to absent (a
// documented side effect of reading).
func (c *Catalog) Rows(ctx context.Context, q Query) ([]Row, error) {
	where := `source = ? AND year = ?`
	args := []any{c.source, c.year}

	if q.Title != "" {
		where += ` AND title LIKE ?`
		args = append(args, "%"+q.Title+"%")
	}
	if q.Author != "" {
		where += ` AND authors LIKE ?`
		args = append(args, "%"+q.Author+"%")
	}
	if q.Keyword != "" {
		where += ` AND (keywords LIKE ? OR abstract LIKE ?)`
		args = append(args, "%"+q.Keyword+"%", "%"+q.Keyword+"%")
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT paper_id, source, year, title, detail_url, authors, abstract,
		       keywords, pdf_url, pdf_location, bibtex_url, bibtex,
		       bib_location, abstract_status, pdf_status, updated_at
		FROM papers WHERE `+where+` ORDER BY title`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := c.reconcileRow(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get returns a single row by id, reconciled like Rows.
func (c *Catalog) Get(ctx context.Context, id string) (Row, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT paper_id, source, year, title, detail_url, authors, abstract,
		       keywords, pdf_url, pdf_location, bibtex_url, bibtex,
		       bib_location, abstract_status, pdf_status, updated_at
		FROM papers WHERE paper_id = ?`, id)
	if err != nil {
		return Row{}, fmt.Errorf("querying paper %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return Row{}, fmt.Errorf("paper %s: %w", id, sql.ErrNoRows)
	}
	r, err := scanRow(rows)
	if err != nil {
		return Row{}, err
	}
	if err := c.reconcileRow(ctx, &r); err != nil {
		return Row{}, err
	}
	return r, nil
}

// Count returns the number of records in the partition.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var total int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM papers WHERE source = ? AND year = ?`,
		c.source, c.year,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return total, nil
}

// Details carries the outcome of one detail enrichment.
type Details struct {
	Abstract  string
	Authors   []string
	Keywords  []string
	PDFURL    string
	BibtexURL string
	Bibtex    string
}

// UpdateDetails applies an enrichment result. Authors and keywords are
// replaced outright (enrichment is authoritative); the URL and bibtex
// fields never regress a stored value to empty; abstract_status becomes
// resolved only when this call actually supplied an abstract.
func (c *Catalog) UpdateDetails(ctx context.Context, id string, d Details) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE papers SET
			abstract = COALESCE(?, abstract),
			authors = ?,
			keywords = ?,
			pdf_url = COALESCE(?, pdf_url),
			bibtex_url = COALESCE(?, bibtex_url),
			bibtex = COALESCE(?, bibtex),
			abstract_status = CASE WHEN ? IS NULL THEN abstract_status ELSE 1 END,
			updated_at = ?
		WHERE paper_id = ?`,
		nullable(d.Abstract), marshalList(d.Authors), marshalList(d.Keywords),
		nullable(d.PDFURL), nullable(d.BibtexURL), nullable(d.Bibtex),
		nullable(d.Abstract), now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating details for %s: %w", id, err)
	}
	return nil
}

// MarkPDFDownloaded records a completed PDF download at location.
func (c *Catalog) MarkPDFDownloaded(ctx context.Context, id, location string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE papers SET pdf_status = 1, pdf_location = ?, updated_at = ?
		WHERE paper_id = ?`, location, now(), id)
	if err != nil {
		return fmt.Errorf("marking PDF downloaded for %s: %w", id, err)
	}
	return nil
}

// MarkPDFMissing clears the PDF status and location.
func (c *Catalog) MarkPDFMissing(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE papers SET pdf_status = 0, pdf_location = NULL, updated_at = ?
		WHERE paper_id = ?`, now(), id)
	if err != nil {
		return fmt.Errorf("marking PDF missing for %s: %w", id, err)
	}
	return nil
}

// MarkBibSaved records a saved citation file and caches its text.
func (c *Catalog) MarkBibSaved(ctx context.Context, id, bibtex, location string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE papers SET bibtex = ?, bib_location = ?, updated_at = ?
		WHERE paper_id = ?`, bibtex, location, now(), id)
	if err != nil {
		return fmt.Errorf("marking bibtex saved for %s: %w", id, err)
	}
	return nil
}

// MarkBibMissing clears the citation file location. The cached text, if
// any, is kept.
func (c *Catalog) MarkBibMissing(ctx context.Context, id string) error {
	_, err := c.db.ExecContext(ctx, `
		UPDATE papers SET bib_location = NULL, updated_at = ?
		WHERE paper_id = ?`, now(), id)
	if err != nil {
		return fmt.Errorf("marking bibtex missing for %s: %w", id, err)
	}
	return nil
}

// reconcileRow verifies recorded artifact locations still exist and heals
// the status when they do not, so a "present" status never lies.
func (c *Catalog) reconcileRow(ctx context.Context, r *Row) error {
	if r.PDFPresent && (r.PDFLocation == "" || !fileExists(r.PDFLocation)) {
		if err := c.MarkPDFMissing(ctx, r.ID); err != nil {
			return err
		}
		r.PDFPresent = false
		r.PDFLocation = ""
	}
	if r.BibLocation != "" && !fileExists(r.BibLocation) {
		if err := c.MarkBibMissing(ctx, r.ID); err != nil {
			return err
		}
		r.BibLocation = ""
	}
	return nil
}

func scanRow(rows *sql.Rows) (Row, error) {
	var (
		r                                         Row
		detailURL, abstract, pdfURL, pdfLocation  sql.NullString
		bibtexURL, bibtex, bibLocation, updatedAt sql.NullString
		authorsJSON, keywordsJSON                 sql.NullString
		abstractStatus, pdfStatus                 int
	)
	err := rows.Scan(
		&r.Paper.ID, &r.Paper.Source, &r.Paper.Year, &r.Paper.Title,
		&detailURL, &authorsJSON, &abstract, &keywordsJSON, &pdfURL,
		&pdfLocation, &bibtexURL, &bibtex, &bibLocation,
		&abstractStatus, &pdfStatus, &updatedAt,
	)
	if err != nil {
		return Row{}, fmt.Errorf("scanning row: %w", err)
	}

	r.Paper.DetailURL = detailURL.String
	r.Paper.Abstract = abstract.String
	r.Paper.PDFURL = pdfURL.String
	r.Paper.BibtexURL = bibtexURL.String
	r.Paper.Bibtex = bibtex.String
	r.Paper.Authors = unmarshalList(authorsJSON.String)
	r.Paper.Keywords = unmarshalList(keywordsJSON.String)
	r.AbstractResolved = abstractStatus != 0
	r.PDFPresent = pdfStatus != 0
	r.PDFLocation = pdfLocation.String
	r.BibLocation = bibLocation.String
	if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
		r.UpdatedAt = t
	}
	return r, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// nullable maps the empty string to SQL NULL so the COALESCE merge policy
// can distinguish "absent" from a real value.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func unmarshalList(data string) []string {
	if data == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
