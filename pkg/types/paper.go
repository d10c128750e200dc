// Copyright 2026 Isaacveg. All rights reserved.

package types

// Paper holds the metadata gathered for one conference paper. A paper is
// identified by (Source, Year, ID); the ID is the source's native identifier
// (an OpenReview forum id, a proceedings page slug) or a hash of the title
// when the source exposes no identifier.
type Paper struct {
	// ID is the source-native identifier, stable within a source.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title. Papers without a title are discarded
	// during listing.
	Title string `json:"title" yaml:"title"`

	// Source is the conference adapter slug (e.g. "iclr", "icml").
	Source string `json:"source" yaml:"source"`

	// Year is the conference year the paper was listed under.
	Year int `json:"year" yaml:"year"`

	// DetailURL points at the paper's detail/forum page, when known.
	DetailURL string `json:"detail_url,omitempty" yaml:"detail_url,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract, empty until enrichment succeeds.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Keywords lists author-supplied keywords in source order.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// PDFURL locates the paper PDF, when discovered.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// BibtexURL locates a downloadable citation record, when the source
	// exposes one as a link rather than inline text.
	BibtexURL string `json:"bibtex_url,omitempty" yaml:"bibtex_url,omitempty"`

	// Bibtex is the citation record text, empty until fetched.
	Bibtex string `json:"bibtex,omitempty" yaml:"bibtex,omitempty"`
}
