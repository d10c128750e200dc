// Copyright 2026 Isaacveg. All rights reserved.

// Package export renders catalog rows into shareable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/isaacveg/paper-spider/internal/catalog"
)

// Format is an output encoding.
type Format string

const (
	FormatTxt  Format = "txt"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// Options selects the encoding and which fields beyond the title to include.
// txt output is always a plain title list regardless of field selection.
type Options struct {
	Format   Format
	Authors  bool
	Abstract bool
	Keywords bool
}

type record struct {
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Build renders rows per opts and returns the document bytes.
func Build(rows []catalog.Row, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatTxt:
		return buildTxt(rows), nil
	case FormatJSON:
		return buildJSON(rows, opts)
	case FormatCSV:
		return buildCSV(rows, opts)
	case FormatYAML:
		return buildYAML(rows, opts)
	default:
		return nil, fmt.Errorf("unknown export format %q", opts.Format)
	}
}

func buildTxt(rows []catalog.Row) []byte {
	var buf bytes.Buffer
	for _, r := range rows {
		buf.WriteString(r.Title)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func toRecords(rows []catalog.Row, opts Options) []record {
	records := make([]record, 0, len(rows))
	for _, r := range rows {
		rec := record{Title: r.Title}
		if opts.Authors {
			rec.Authors = r.Authors
		}
		if opts.Abstract {
			rec.Abstract = r.Abstract
		}
		if opts.Keywords {
			rec.Keywords = r.Keywords
		}
		records = append(records, rec)
	}
	return records
}

func buildJSON(rows []catalog.Row, opts Options) ([]byte, error) {
	data, err := json.MarshalIndent(toRecords(rows, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding JSON export: %w", err)
	}
	return append(data, '\n'), nil
}

func buildYAML(rows []catalog.Row, opts Options) ([]byte, error) {
	data, err := yaml.Marshal(toRecords(rows, opts))
	if err != nil {
		return nil, fmt.Errorf("encoding YAML export: %w", err)
	}
	return data, nil
}

func buildCSV(rows []catalog.Row, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"title"}
	if opts.Authors {
		header = append(header, "authors")
	}
	if opts.Abstract {
		header = append(header, "abstract")
	}
	if opts.Keywords {
		header = append(header, "keywords")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range rows {
		line := []string{r.Title}
		if opts.Authors {
			line = append(line, strings.Join(r.Authors, "; "))
		}
		if opts.Abstract {
			line = append(line, r.Abstract)
		}
		if opts.Keywords {
			line = append(line, strings.Join(r.Keywords, "; "))
		}
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV export: %w", err)
	}
	return buf.Bytes(), nil
}
