// Copyright 2026 Isaacveg. All rights reserved.

package spider

import (
	"strings"
	"testing"
)

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Attention Is All You Need", "Attention_Is_All_You_Need"},
		{"forbidden chars dropped", `What? A "Path/Like:Title*`, "What_A_PathLikeTitle"},
		{"dollar removed", "Cost is $100", "Cost_is_100"},
		{"unicode replaced", "Café Résumé", "Caf_R_sum"},
		{"collapsed underscores", "a    b___c", "a_b_c"},
		{"trimmed punctuation", "...title...", "title"},
		{"empty falls back", "  ", "paper42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFileName(tt.title, "paper42"); got != tt.want {
				t.Errorf("SafeFileName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSafeFileNameCapsLength(t *testing.T) {
	long := strings.Repeat("Very Long Title ", 20)
	got := SafeFileName(long, "id")
	if len(got) > maxFileNameLen {
		t.Errorf("len = %d, want <= %d", len(got), maxFileNameLen)
	}
	if got == "" {
		t.Error("capped name is empty")
	}
}
