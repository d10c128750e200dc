// Copyright 2026 Isaacveg. All rights reserved.

package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/isaacveg/paper-spider/internal/httputil"
	"github.com/isaacveg/paper-spider/pkg/types"
)

// MLR lists ICML papers from the PMLR proceedings site. Volume numbers are
// not derivable from the year, so listing first scans the proceedings index
// for a list item naming both the year and the conference, then parses the
// volume page's per-paper blocks.
type MLR struct {
	client  *httputil.Client
	baseURL string
}

// NewMLR builds the ICML adapter.
func NewMLR(cfg types.SourceConfig) *MLR {
	return &MLR{
		client:  httputil.NewClient(cfg),
		baseURL: "https://proceedings.mlr.press/",
	}
}

// Name implements Adapter.
func (m *MLR) Name() string { return "ICML" }

// Slug implements Adapter.
func (m *MLR) Slug() string { return "icml" }

// List implements Adapter.
func (m *MLR) List(ctx context.Context, year int) ([]types.Paper, error) {
	volumeURL := m.findVolumeURL(ctx, year)
	if volumeURL == "" {
		return nil, fmt.Errorf("finding ICML volume for %d: %w", year, ErrNoData)
	}
	doc := fetchDocument(ctx, m.client, volumeURL)
	if doc == nil {
		return nil, fmt.Errorf("loading ICML volume page for %d: %w", year, ErrNoData)
	}

	var papers []types.Paper
	doc.Find("div.paper").Each(func(_ int, block *goquery.Selection) {
		title := normalizeSpace(block.Find("p.title").First().Text())
		if title == "" {
			return
		}

		// Link positions vary by year; only the anchor text is stable.
		detailURL := resolveURL(volumeURL, findLinkByMarker(block.Find("a"), "abs"))
		pdfURL := resolveURL(volumeURL, findLinkByMarker(block.Find("a"), "download pdf"))

		papers = append(papers, types.Paper{
			ID:        m.paperID(detailURL, title),
			Title:     title,
			Source:    m.Slug(),
			Year:      year,
			DetailURL: detailURL,
			PDFURL:    pdfURL,
			Authors:   splitPeople(normalizeSpace(block.Find("p.authors").First().Text())),
		})
	})

	if len(papers) == 0 {
		return nil, fmt.Errorf("parsing ICML volume for %d: %w", year, ErrNoData)
	}
	return papers, nil
}

// Enrich implements Adapter.
func (m *MLR) Enrich(ctx context.Context, paper types.Paper) types.Paper {
	if paper.DetailURL == "" {
		return paper
	}
	doc := fetchDocument(ctx, m.client, paper.DetailURL)
	if doc == nil {
		return paper
	}

	if abstract := sectionBlockText(doc, "Abstract"); abstract != "" {
		paper.Abstract = abstract
	}
	if authors := m.extractAuthors(doc); len(authors) > 0 {
		paper.Authors = authors
	}
	if bibtex := extractBibtexBlock(doc); bibtex != "" {
		paper.Bibtex = bibtex
	}
	if pdf := findLinkByMarker(doc.Find("a"), "download pdf"); pdf != "" {
		paper.PDFURL = resolveURL(paper.DetailURL, pdf)
	}
	return paper
}

// FetchPDF implements Adapter.
func (m *MLR) FetchPDF(ctx context.Context, paper types.Paper) ([]byte, error) {
	if paper.PDFURL == "" {
		paper = m.Enrich(ctx, paper)
	}
	if paper.PDFURL == "" {
		return nil, fmt.Errorf("no PDF URL for %s", paper.ID)
	}
	data, ok := m.client.Get(ctx, paper.PDFURL)
	if !ok {
		return nil, fmt.Errorf("downloading PDF for %s: %w", paper.ID, ErrNoData)
	}
	return data, nil
}

// FetchBibtex implements Adapter. PMLR embeds the citation inline on the
// detail page, so enrichment is the only way to obtain it.
func (m *MLR) FetchBibtex(ctx context.Context, paper types.Paper) (string, error) {
	if paper.Bibtex == "" {
		paper = m.Enrich(ctx, paper)
	}
	if paper.Bibtex == "" {
		return "", fmt.Errorf("fetching bibtex for %s: %w", paper.ID, ErrNoData)
	}
	return paper.Bibtex, nil
}

// findVolumeURL scans the proceedings index for a list item mentioning both
// the target year and the conference.
func (m *MLR) findVolumeURL(ctx context.Context, year int) string {
	doc := fetchDocument(ctx, m.client, m.baseURL)
	if doc == nil {
		return ""
	}

	yearText := strconv.Itoa(year)
	volumeURL := ""
	doc.Find("li").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		text := strings.ToLower(normalizeSpace(item.Text()))
		if !strings.Contains(text, yearText) {
			return true
		}
		if !strings.Contains(text, "icml") &&
			!strings.Contains(text, "international conference on machine learning") {
			return true
		}
		if href := item.Find("a[href]").First().AttrOr("href", ""); href != "" {
			volumeURL = resolveURL(m.baseURL, href)
			return false
		}
		return true
	})
	return volumeURL
}

// extractAuthors handles detail pages without an "Authors" heading: the
// author list is the first non-empty sibling after the title, skipping the
// Abstract sentinel and stopping at the proceedings footer line.
func (m *MLR) extractAuthors(doc *goquery.Document) []string {
	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		return nil
	}
	for sib := heading.Next(); sib.Length() > 0; sib = sib.Next() {
		text := normalizeSpace(sib.Text())
		if text == "" {
			continue
		}
		if strings.Contains(text, "Proceedings of") {
			break
		}
		if !strings.Contains(text, "Abstract") {
			return splitPeople(text)
		}
	}
	return nil
}

// extractBibtexBlock scans preformatted blocks for an inproceedings record.
func extractBibtexBlock(doc *goquery.Document) string {
	bibtex := ""
	doc.Find("code, pre").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text := strings.TrimSpace(node.Text())
		if strings.Contains(strings.ToLower(text), "@inproceedings") {
			bibtex = text
			return false
		}
		return true
	})
	return bibtex
}

// paperID takes the trailing path segment of the detail URL, without its
// ".html" suffix; a missing URL falls back to hashing the title.
func (m *MLR) paperID(detailURL, title string) string {
	if detailURL != "" {
		trimmed := strings.TrimRight(detailURL, "/")
		base := trimmed[strings.LastIndex(trimmed, "/")+1:]
		if strings.HasSuffix(base, ".html") {
			return strings.TrimSuffix(base, ".html")
		}
	}
	return TitleHash(title)
}
