// Copyright 2026 Isaacveg. All rights reserved.

package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/isaacveg/paper-spider/internal/httputil"
	"github.com/isaacveg/paper-spider/pkg/types"
)

// neuripsIDPattern strips the section suffix from a proceedings page name,
// e.g. "hash-Abstract-Conference.html" -> "hash".
var neuripsIDPattern = regexp.MustCompile(`(.+?)-(Abstract|Paper|Title)`)

// NeurIPS lists papers from the NeurIPS proceedings site, which has moved
// between two hostnames over the years. The listing page is a flat run of
// anchors; paper links are recognized by "Abstract" appearing in the href.
type NeurIPS struct {
	client   *httputil.Client
	baseURLs []string
}

// NewNeurIPS builds the NeurIPS adapter.
func NewNeurIPS(cfg types.SourceConfig) *NeurIPS {
	return &NeurIPS{
		client: httputil.NewClient(cfg),
		baseURLs: []string{
			"https://proceedings.neurips.cc/paper/%d",
			"https://papers.nips.cc/paper_files/paper/%d",
		},
	}
}

// Name implements Adapter.
func (n *NeurIPS) Name() string { return "NeurIPS" }

// Slug implements Adapter.
func (n *NeurIPS) Slug() string { return "neurips" }

// List implements Adapter.
func (n *NeurIPS) List(ctx context.Context, year int) ([]types.Paper, error) {
	for _, pattern := range n.baseURLs {
		baseURL := fmt.Sprintf(pattern, year)
		doc := fetchDocument(ctx, n.client, baseURL)
		if doc == nil {
			continue
		}

		var papers []types.Paper
		doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
			href := anchor.AttrOr("href", "")
			if !strings.Contains(strings.ToLower(href), "abstract") {
				return
			}
			if strings.Contains(strings.ToLower(href), "bibtex") {
				return
			}
			title := normalizeSpace(anchor.Text())
			if title == "" {
				return
			}
			detailURL := resolveURL(baseURL, href)
			papers = append(papers, types.Paper{
				ID:        n.paperID(detailURL, title),
				Title:     title,
				Source:    n.Slug(),
				Year:      year,
				DetailURL: detailURL,
			})
		})
		if len(papers) > 0 {
			return papers, nil
		}
	}
	return nil, fmt.Errorf("loading NeurIPS proceedings list for %d: %w", year, ErrNoData)
}

// Enrich implements Adapter. Detail pages lay sections out as heading +
// block, so each field is a named section walk.
func (n *NeurIPS) Enrich(ctx context.Context, paper types.Paper) types.Paper {
	if paper.DetailURL == "" {
		return paper
	}
	doc := fetchDocument(ctx, n.client, paper.DetailURL)
	if doc == nil {
		return paper
	}

	if abstract := sectionText(doc, "Abstract"); abstract != "" {
		paper.Abstract = abstract
	}
	if authors := splitPeople(sectionText(doc, "Authors")); len(authors) > 0 {
		paper.Authors = authors
	}
	if keywords := splitPeople(sectionText(doc, "Keywords")); len(keywords) > 0 {
		paper.Keywords = keywords
	}
	if pdfURL := n.findPDFLink(doc, paper.DetailURL); pdfURL != "" {
		paper.PDFURL = pdfURL
	}
	if bibtexURL := n.findBibtexLink(doc, paper.DetailURL); bibtexURL != "" {
		paper.BibtexURL = bibtexURL
	}
	return paper
}

// FetchPDF implements Adapter.
func (n *NeurIPS) FetchPDF(ctx context.Context, paper types.Paper) ([]byte, error) {
	if paper.PDFURL == "" {
		paper = n.Enrich(ctx, paper)
	}
	if paper.PDFURL == "" {
		return nil, fmt.Errorf("no PDF URL for %s", paper.ID)
	}
	data, ok := n.client.Get(ctx, paper.PDFURL)
	if !ok {
		return nil, fmt.Errorf("downloading PDF for %s: %w", paper.ID, ErrNoData)
	}
	return data, nil
}

// FetchBibtex implements Adapter. The proceedings site serves citations as
// standalone .bib downloads linked from the detail page.
func (n *NeurIPS) FetchBibtex(ctx context.Context, paper types.Paper) (string, error) {
	if paper.BibtexURL == "" {
		paper = n.Enrich(ctx, paper)
	}
	if paper.BibtexURL == "" {
		return "", fmt.Errorf("no bibtex URL for %s", paper.ID)
	}
	body, ok := n.client.Get(ctx, paper.BibtexURL)
	if !ok {
		return "", fmt.Errorf("fetching bibtex for %s: %w", paper.ID, ErrNoData)
	}
	return string(body), nil
}

func (n *NeurIPS) findPDFLink(doc *goquery.Document, baseURL string) string {
	href := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		h := anchor.AttrOr("href", "")
		text := strings.ToLower(normalizeSpace(anchor.Text()))
		if strings.HasSuffix(strings.ToLower(h), ".pdf") || strings.Contains(text, "pdf") {
			href = resolveURL(baseURL, h)
			return false
		}
		return true
	})
	return href
}

func (n *NeurIPS) findBibtexLink(doc *goquery.Document, baseURL string) string {
	href := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		h := anchor.AttrOr("href", "")
		text := strings.ToLower(normalizeSpace(anchor.Text()))
		if strings.Contains(text, "bibtex") ||
			strings.Contains(strings.ToLower(h), "bibtex") ||
			strings.HasSuffix(strings.ToLower(h), ".bib") {
			href = resolveURL(baseURL, h)
			return false
		}
		return true
	})
	return href
}

// paperID derives the identifier from the detail URL's trailing segment,
// stripping the "-Abstract"/"-Paper" suffix convention; a URL that matches
// neither convention falls back to hashing the title.
func (n *NeurIPS) paperID(detailURL, title string) string {
	trimmed := strings.TrimRight(detailURL, "/")
	base := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if m := neuripsIDPattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	if strings.HasSuffix(base, ".html") {
		return strings.TrimSuffix(base, ".html")
	}
	return TitleHash(title)
}
