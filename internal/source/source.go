// Copyright 2026 Isaacveg. All rights reserved.

// Package source retrieves paper metadata from conference sites. Each
// conference has its own fragile retrieval protocol; the adapters hide those
// behind one contract and return canonical Paper values.
package source

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/isaacveg/paper-spider/pkg/types"
)

// ErrNoData indicates that every fallback path for a listing request came
// back empty. Individual failed attempts are not errors; this is.
var ErrNoData = errors.New("no data obtained from source")

// Adapter is the per-conference retrieval strategy. List discovers the
// papers of one year; the other operations enrich a single paper and never
// mutate shared adapter state, so an Adapter is safe to reuse across calls.
type Adapter interface {
	// Name is the human-readable conference name (e.g. "ICLR").
	Name() string

	// Slug is the stable identifier used in storage paths and the registry.
	Slug() string

	// List returns the papers for a conference year. It tries the source's
	// fallback paths in priority order and returns ErrNoData (wrapped) only
	// when all of them came back empty.
	List(ctx context.Context, year int) ([]types.Paper, error)

	// Enrich fetches the paper's detail payload and fills in abstract,
	// authors, keywords, and artifact URLs. A paper that cannot be enriched
	// (no detail URL, transport failure) is returned unchanged.
	Enrich(ctx context.Context, paper types.Paper) types.Paper

	// FetchPDF downloads the paper's PDF bytes, enriching first if the
	// location is not yet known.
	FetchPDF(ctx context.Context, paper types.Paper) ([]byte, error)

	// FetchBibtex returns the paper's citation record text, preferring any
	// already-cached text on the paper.
	FetchBibtex(ctx context.Context, paper types.Paper) (string, error)
}

// builders maps adapter slugs to constructors. Adapters hold no shared
// state beyond their configuration, so each call builds a fresh instance.
var builders = map[string]func(types.SourceConfig) Adapter{
	"iclr":    func(cfg types.SourceConfig) Adapter { return NewOpenReview(cfg) },
	"icml":    func(cfg types.SourceConfig) Adapter { return NewMLR(cfg) },
	"neurips": func(cfg types.SourceConfig) Adapter { return NewNeurIPS(cfg) },
}

// New returns the adapter registered under slug.
func New(slug string, cfg types.SourceConfig) (Adapter, error) {
	build, ok := builders[slug]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (available: %v)", slug, Slugs())
	}
	return build(cfg), nil
}

// Slugs returns the registered adapter slugs in sorted order.
func Slugs() []string {
	slugs := make([]string, 0, len(builders))
	for slug := range builders {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// TitleHash derives a fallback identifier from a paper title for sources
// that expose no native id. Collision-tolerant, not cryptographic.
func TitleHash(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}
