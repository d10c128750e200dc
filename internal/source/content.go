// Copyright 2026 Isaacveg. All rights reserved.

package source

import (
	"fmt"
	"strings"
)

// OpenReview payloads are loosely shaped: a field may be a plain scalar, a
// list, or an object wrapping the real value under a "value" key (the v2 API
// does this). ContentValue and ContentList decode all of those once, at the
// adapter boundary, so the rest of the code only ever sees strings.

// ContentValue returns the field under key as trimmed text. List values are
// joined with ", ". The empty string means the field is absent.
func ContentValue(content map[string]any, key string) string {
	raw, ok := content[key]
	if !ok {
		return ""
	}
	return toText(raw)
}

// ContentList returns the field under key as a list of trimmed strings.
// A plain string value is split on "," and ";" because some sources encode
// multi-author fields as free text.
func ContentList(content map[string]any, key string) []string {
	raw, ok := content[key]
	if !ok {
		return nil
	}
	if wrapped, ok := raw.(map[string]any); ok {
		raw = wrapped["value"]
	}
	return toList(raw)
}

func toText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case map[string]any:
		// Unwrap one level of {"value": ...}.
		return toText(v["value"])
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

func toList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range v {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitListText(v)
	default:
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return []string{s}
		}
		return nil
	}
}

// splitListText splits delimiter-joined text on "," and ";", dropping empty
// segments.
func splitListText(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
