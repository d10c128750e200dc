// Copyright 2026 Isaacveg. All rights reserved.

package source

import (
	"reflect"
	"testing"
)

func TestContentValue(t *testing.T) {
	tests := []struct {
		name    string
		content map[string]any
		key     string
		want    string
	}{
		{"missing key", map[string]any{}, "title", ""},
		{"plain string", map[string]any{"title": " Deep Nets "}, "title", "Deep Nets"},
		{"wrapped value", map[string]any{"title": map[string]any{"value": "Deep Nets"}}, "title", "Deep Nets"},
		{"list joins", map[string]any{"venue": []any{"ICLR", "2024"}}, "venue", "ICLR, 2024"},
		{"wrapped list", map[string]any{"venue": map[string]any{"value": []any{"a", "b"}}}, "venue", "a, b"},
		{"nil value", map[string]any{"venue": nil}, "venue", ""},
		{"number", map[string]any{"year": float64(2024)}, "year", "2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentValue(tt.content, tt.key); got != tt.want {
				t.Errorf("ContentValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentList(t *testing.T) {
	tests := []struct {
		name    string
		content map[string]any
		key     string
		want    []string
	}{
		{"missing key", map[string]any{}, "authors", nil},
		{"plain list", map[string]any{"authors": []any{"Ada", " Bob "}}, "authors", []string{"Ada", "Bob"}},
		{"wrapped list", map[string]any{"authors": map[string]any{"value": []any{"Ada"}}}, "authors", []string{"Ada"}},
		{"comma text", map[string]any{"authors": "Ada, Bob; Carol"}, "authors", []string{"Ada", "Bob", "Carol"}},
		{"drops empties", map[string]any{"authors": []any{"Ada", "  "}}, "authors", []string{"Ada"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentList(tt.content, tt.key); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ContentList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTitleHashStable(t *testing.T) {
	a := TitleHash("Attention Is All You Need")
	b := TitleHash("Attention Is All You Need")
	if a != b {
		t.Errorf("TitleHash not stable: %s != %s", a, b)
	}
	if a == TitleHash("Some Other Title") {
		t.Error("distinct titles produced the same hash")
	}
}

func TestNewUnknownSource(t *testing.T) {
	if _, err := New("arxiv", testSourceConfig()); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestSlugsSorted(t *testing.T) {
	want := []string{"iclr", "icml", "neurips"}
	if got := Slugs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Slugs() = %v, want %v", got, want)
	}
}
