// Copyright 2026 Isaacveg. All rights reserved.

package source

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/isaacveg/paper-spider/internal/httputil"
)

// Helpers shared by the HTML-scraping adapters. Proceedings sites shuffle
// their DOM between years, so extraction is marker-driven (anchor text,
// heading text) rather than positional.

// fetchDocument gets url and parses it, returning nil on any failure so the
// caller's fallback logic proceeds.
func fetchDocument(ctx context.Context, client *httputil.Client, url string) *goquery.Document {
	body, ok := client.Get(ctx, url)
	if !ok {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return doc
}

// normalizeSpace collapses all whitespace runs in s to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// findLinkByMarker returns the href of the first anchor whose text contains
// marker (case-insensitive). The empty string means no such link.
func findLinkByMarker(anchors *goquery.Selection, marker string) string {
	marker = strings.ToLower(strings.TrimSpace(marker))
	href := ""
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, ok := a.Attr("href")
		if !ok || h == "" {
			return true
		}
		if strings.Contains(strings.ToLower(normalizeSpace(a.Text())), marker) {
			href = h
			return false
		}
		return true
	})
	return href
}

// resolveURL resolves ref against base, returning ref unchanged when either
// side fails to parse.
func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// sectionText finds a heading whose normalized text equals name and returns
// the text of the first non-empty sibling after it, skipping separator
// nodes. Used for detail pages that lay sections out as heading + block.
func sectionText(doc *goquery.Document, name string) string {
	want := strings.ToLower(name)
	text := ""
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.ToLower(normalizeSpace(h.Text())) != want {
			return true
		}
		sib := h.Next()
		for sib.Length() > 0 && sib.Is("br, hr") {
			sib = sib.Next()
		}
		if sib.Length() > 0 {
			text = normalizeSpace(sib.Text())
		}
		return false
	})
	return text
}

// sectionBlockText is like sectionText but accumulates every sibling until
// the next heading-level node, for pages that split a section across
// multiple paragraphs.
func sectionBlockText(doc *goquery.Document, name string) string {
	want := strings.ToLower(name)
	var chunks []string
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.ToLower(normalizeSpace(h.Text())) != want {
			return true
		}
		for sib := h.Next(); sib.Length() > 0; sib = sib.Next() {
			if sib.Is("h2, h3, h4") {
				break
			}
			if text := normalizeSpace(sib.Text()); text != "" {
				chunks = append(chunks, text)
			}
		}
		return len(chunks) == 0
	})
	return strings.Join(chunks, " ")
}

// splitPeople splits a free-text name or keyword list on "," and ";".
func splitPeople(text string) []string {
	return splitListText(text)
}
