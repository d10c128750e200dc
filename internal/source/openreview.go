// Copyright 2026 Isaacveg. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/isaacveg/paper-spider/internal/httputil"
	"github.com/isaacveg/paper-spider/pkg/types"
)

const notePageLimit = 1000

// rejectedVenueTokens mark a venue label as not-accepted even when it names
// the conference.
var rejectedVenueTokens = []string{"submitted", "withdrawn", "reject", "desk reject"}

// OpenReview lists ICLR papers through the OpenReview notes API. The API has
// changed shape and hostname across years, so listing walks an ordered set of
// candidate query families until one produces notes, and every query is tried
// against both API generations.
type OpenReview struct {
	client   *httputil.Client
	apiBases []string
	webBase  string
}

// NewOpenReview builds the ICLR adapter.
func NewOpenReview(cfg types.SourceConfig) *OpenReview {
	return &OpenReview{
		client:   httputil.NewClient(cfg),
		apiBases: []string{"https://api.openreview.net", "https://api2.openreview.net"},
		webBase:  "https://openreview.net",
	}
}

// Name implements Adapter.
func (o *OpenReview) Name() string { return "ICLR" }

// Slug implements Adapter.
func (o *OpenReview) Slug() string { return "iclr" }

// List implements Adapter. It loads the year's submission notes, keeps the
// ones classified accepted, and falls back to the full pool when no note
// carries an acceptance signal — callers must get some data if any exists,
// even unfiltered.
func (o *OpenReview) List(ctx context.Context, year int) ([]types.Paper, error) {
	notes := o.loadSubmissionNotes(ctx, year)
	if len(notes) == 0 {
		return nil, fmt.Errorf("loading ICLR submissions for %d: %w", year, ErrNoData)
	}

	var accepted []map[string]any
	for _, note := range notes {
		if o.isAccepted(note, year) {
			accepted = append(accepted, note)
		}
	}
	selected := accepted
	if len(selected) == 0 {
		selected = notes
	}

	var papers []types.Paper
	for _, note := range selected {
		if paper, ok := o.noteToPaper(note, year); ok {
			papers = append(papers, paper)
		}
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("parsing ICLR notes for %d: %w", year, ErrNoData)
	}
	return papers, nil
}

// Enrich implements Adapter. It re-queries the single note by forum id for
// the fuller payload (including decision replies) and fetches the citation
// text.
func (o *OpenReview) Enrich(ctx context.Context, paper types.Paper) types.Paper {
	forumID := o.forumID(paper)
	if forumID == "" {
		return paper
	}

	if note := o.fetchSingleNote(ctx, forumID); note != nil {
		content, _ := note["content"].(map[string]any)

		if title := ContentValue(content, "title"); title != "" {
			paper.Title = title
		}
		if abstract := ContentValue(content, "abstract"); abstract != "" {
			paper.Abstract = abstract
		}
		if authors := ContentList(content, "authors"); len(authors) > 0 {
			paper.Authors = authors
		}
		if keywords := ContentList(content, "keywords"); len(keywords) > 0 {
			paper.Keywords = keywords
		}
		if pdf := ContentValue(content, "pdf"); pdf != "" {
			paper.PDFURL = o.normalizePDFURL(pdf, forumID)
		} else if paper.PDFURL == "" {
			paper.PDFURL = o.webBase + "/pdf?id=" + url.QueryEscape(forumID)
		}
	}

	if bibtex := o.fetchCitation(ctx, forumID); bibtex != "" {
		paper.Bibtex = bibtex
	}
	return paper
}

// FetchPDF implements Adapter.
func (o *OpenReview) FetchPDF(ctx context.Context, paper types.Paper) ([]byte, error) {
	if paper.PDFURL == "" {
		if forumID := o.forumID(paper); forumID != "" {
			paper.PDFURL = o.webBase + "/pdf?id=" + url.QueryEscape(forumID)
		}
	}
	if paper.PDFURL == "" {
		paper = o.Enrich(ctx, paper)
	}
	if paper.PDFURL == "" {
		return nil, fmt.Errorf("no PDF URL for %s", paper.ID)
	}

	data, ok := o.client.Get(ctx, paper.PDFURL)
	if !ok {
		return nil, fmt.Errorf("downloading PDF for %s: %w", paper.ID, ErrNoData)
	}
	return data, nil
}

// FetchBibtex implements Adapter.
func (o *OpenReview) FetchBibtex(ctx context.Context, paper types.Paper) (string, error) {
	if paper.Bibtex != "" {
		return paper.Bibtex, nil
	}
	forumID := o.forumID(paper)
	if forumID == "" {
		return "", fmt.Errorf("no forum id for %s", paper.ID)
	}

	bibtex := o.fetchCitation(ctx, forumID)
	if bibtex == "" {
		bibtex = o.Enrich(ctx, paper).Bibtex
	}
	if bibtex == "" {
		return "", fmt.Errorf("fetching bibtex for %s: %w", paper.ID, ErrNoData)
	}
	return bibtex, nil
}

// loadSubmissionNotes tries the candidate query families in priority order:
// submission invitations first, then venueid filters, then free-text venue
// labels. The venue-label family merges both the "accepted" and "submitted
// to" variants into one pool before dedup, because accepted papers move
// between them across years.
func (o *OpenReview) loadSubmissionNotes(ctx context.Context, year int) []map[string]any {
	invitations := []string{
		fmt.Sprintf("ICLR.cc/%d/Conference/-/Blind_Submission", year),
		fmt.Sprintf("ICLR.cc/%d/Conference/-/Submission", year),
	}
	for _, invitation := range invitations {
		notes := o.iterNotes(ctx, url.Values{"invitation": {invitation}})
		if len(notes) > 0 {
			return dedupeNotes(notes)
		}
	}

	venueIDs := []string{
		fmt.Sprintf("ICLR.cc/%d/Conference", year),
		fmt.Sprintf("ICLR.cc/%d/Conference/-/Acceptance", year),
	}
	for _, venueID := range venueIDs {
		notes := o.iterNotes(ctx, url.Values{"content.venueid": {venueID}})
		if len(notes) > 0 {
			return dedupeNotes(notes)
		}
	}

	venues := []string{
		fmt.Sprintf("ICLR %d Conference", year),
		fmt.Sprintf("Submitted to ICLR %d", year),
	}
	var merged []map[string]any
	for _, venue := range venues {
		merged = append(merged, o.iterNotes(ctx, url.Values{"content.venue": {venue}})...)
	}
	if len(merged) > 0 {
		return dedupeNotes(merged)
	}
	return nil
}

// iterNotes pages through the notes endpoint with offset/limit, stopping on
// a short or empty page. Each page is tried against every API base; the
// first base returning notes wins for that page.
func (o *OpenReview) iterNotes(ctx context.Context, base url.Values) []map[string]any {
	var all []map[string]any
	offset := 0
	for {
		params := url.Values{}
		for k, vs := range base {
			params[k] = vs
		}
		params.Set("limit", strconv.Itoa(notePageLimit))
		params.Set("offset", strconv.Itoa(offset))

		var notes []map[string]any
		for _, apiBase := range o.apiBases {
			notes = extractNotes(o.getJSON(ctx, apiBase+"/notes?"+params.Encode()))
			if len(notes) > 0 {
				break
			}
		}
		if len(notes) == 0 {
			break
		}
		all = append(all, notes...)
		if len(notes) < notePageLimit {
			break
		}
		offset += notePageLimit
	}
	return all
}

// dedupeNotes collapses notes by forum id (falling back to note id, then a
// title hash); last-seen wins for the same key.
func dedupeNotes(notes []map[string]any) []map[string]any {
	index := make(map[string]int)
	var deduped []map[string]any
	for _, note := range notes {
		key := noteKey(note)
		if i, ok := index[key]; ok {
			deduped[i] = note
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, note)
	}
	return deduped
}

func noteKey(note map[string]any) string {
	if forum := toText(note["forum"]); forum != "" {
		return forum
	}
	if id := toText(note["id"]); id != "" {
		return id
	}
	content, _ := note["content"].(map[string]any)
	return TitleHash(ContentValue(content, "title"))
}

// extractNotes accepts both response shapes the API has used: an object with
// a "notes" array, or a bare array.
func extractNotes(payload any) []map[string]any {
	var raw []any
	switch v := payload.(type) {
	case map[string]any:
		raw, _ = v["notes"].([]any)
	case []any:
		raw = v
	}
	var notes []map[string]any
	for _, item := range raw {
		if note, ok := item.(map[string]any); ok {
			notes = append(notes, note)
		}
	}
	return notes
}

func (o *OpenReview) noteToPaper(note map[string]any, year int) (types.Paper, bool) {
	content, _ := note["content"].(map[string]any)
	title := ContentValue(content, "title")
	if title == "" {
		return types.Paper{}, false
	}

	forum := toText(note["forum"])
	if forum == "" {
		forum = toText(note["id"])
	}
	if forum == "" {
		forum = TitleHash(title)
	}

	pdfURL := o.webBase + "/pdf?id=" + url.QueryEscape(forum)
	if pdf := ContentValue(content, "pdf"); pdf != "" {
		pdfURL = o.normalizePDFURL(pdf, forum)
	}

	return types.Paper{
		ID:        forum,
		Title:     title,
		Source:    o.Slug(),
		Year:      year,
		DetailURL: o.webBase + "/forum?id=" + url.QueryEscape(forum),
		Authors:   ContentList(content, "authors"),
		Abstract:  ContentValue(content, "abstract"),
		Keywords:  ContentList(content, "keywords"),
		PDFURL:    pdfURL,
	}, true
}

// isAccepted classifies a note. The venue label is the primary signal: it
// must name the conference year and contain no rejection token. When the
// label is absent the decision replies are scanned; any "accept" substring is
// positive, anything else (including no decision at all) is negative.
func (o *OpenReview) isAccepted(note map[string]any, year int) bool {
	content, _ := note["content"].(map[string]any)
	venue := strings.ToLower(ContentValue(content, "venue"))
	if venue != "" {
		if strings.Contains(venue, fmt.Sprintf("iclr %d", year)) && strings.Contains(venue, "conference") {
			for _, token := range rejectedVenueTokens {
				if strings.Contains(venue, token) {
					return false
				}
			}
			return true
		}
	}

	decision := strings.ToLower(decisionText(note))
	return strings.Contains(decision, "accept")
}

// decisionText digs the decision annotation out of the note's direct
// replies: any reply whose invitation mentions "decision" may carry the
// verdict under "decision" or "recommendation".
func decisionText(note map[string]any) string {
	details, _ := note["details"].(map[string]any)
	replies, _ := details["directReplies"].([]any)
	for _, item := range replies {
		reply, ok := item.(map[string]any)
		if !ok {
			continue
		}
		invitation := strings.ToLower(toText(reply["invitation"]))
		if !strings.Contains(invitation, "decision") {
			continue
		}
		content, _ := reply["content"].(map[string]any)
		for _, key := range []string{"decision", "recommendation"} {
			if value := ContentValue(content, key); value != "" {
				return value
			}
		}
	}
	return ""
}

// fetchSingleNote re-queries one forum with reply details for enrichment.
func (o *OpenReview) fetchSingleNote(ctx context.Context, forumID string) map[string]any {
	params := url.Values{
		"forum":   {forumID},
		"details": {"directReplies,original"},
		"limit":   {"1"},
	}
	for _, apiBase := range o.apiBases {
		notes := extractNotes(o.getJSON(ctx, apiBase+"/notes?"+params.Encode()))
		if len(notes) > 0 {
			return notes[0]
		}
	}
	return nil
}

// fetchCitation tries the format-qualified citation URL, then the bare one,
// accepting the first body that looks like a citation record.
func (o *OpenReview) fetchCitation(ctx context.Context, forumID string) string {
	urls := []string{
		o.webBase + "/citation?id=" + url.QueryEscape(forumID) + "&format=bibtex",
		o.webBase + "/citation?id=" + url.QueryEscape(forumID),
	}
	for _, u := range urls {
		body, ok := o.client.Get(ctx, u)
		if !ok {
			continue
		}
		text := strings.TrimSpace(string(body))
		if strings.Contains(text, "@") && strings.Contains(text, "{") {
			return text
		}
	}
	return ""
}

// forumID recovers the paper's forum id, falling back to the detail URL's
// id query parameter.
func (o *OpenReview) forumID(paper types.Paper) string {
	if paper.ID != "" {
		return paper.ID
	}
	if paper.DetailURL == "" {
		return ""
	}
	parsed, err := url.Parse(paper.DetailURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("id")
}

// normalizePDFURL resolves the pdf field, which may be absolute,
// site-relative, or unusable (in which case the canonical pdf endpoint is
// synthesized).
func (o *OpenReview) normalizePDFURL(value, forumID string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if strings.HasPrefix(value, "/") {
		return o.webBase + value
	}
	return o.webBase + "/pdf?id=" + url.QueryEscape(forumID)
}

func (o *OpenReview) getJSON(ctx context.Context, url string) any {
	var payload any
	if !o.client.GetJSON(ctx, url, &payload) {
		return nil
	}
	return payload
}
