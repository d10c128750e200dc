// Copyright 2026 Isaacveg. All rights reserved.

package filter

import (
	"testing"

	"github.com/isaacveg/paper-spider/pkg/types"
)

var samplePaper = types.Paper{
	Title:    "Federated Learning at the Edge",
	Authors:  []string{"Ada Lovelace", "Bob Noyce"},
	Abstract: "We train models across devices without sharing raw data.",
	Keywords: []string{"federated learning", "privacy"},
}

func TestSetMatch(t *testing.T) {
	tests := []struct {
		name string
		set  Set
		want bool
	}{
		{
			"empty set matches",
			Set{},
			true,
		},
		{
			"must hit",
			Set{Rules: []Rule{{Field: FieldTitle, Mode: ModeContains, Value: "federated", Role: RoleMust}}},
			true,
		},
		{
			"must miss",
			Set{Rules: []Rule{{Field: FieldTitle, Mode: ModeContains, Value: "quantum", Role: RoleMust}}},
			false,
		},
		{
			"must_not hit rejects",
			Set{Rules: []Rule{{Field: FieldKeywords, Mode: ModeContains, Value: "privacy", Role: RoleMustNot}}},
			false,
		},
		{
			"not_contains must",
			Set{Rules: []Rule{{Field: FieldAbstract, Mode: ModeNotContains, Value: "supervised", Role: RoleMust}}},
			true,
		},
		{
			"should threshold met",
			Set{
				Rules: []Rule{
					{Field: FieldAny, Mode: ModeContains, Value: "edge", Role: RoleShould},
					{Field: FieldAny, Mode: ModeContains, Value: "quantum", Role: RoleShould},
				},
				MinShouldMatch: 1,
			},
			true,
		},
		{
			"should threshold not met",
			Set{
				Rules: []Rule{
					{Field: FieldAny, Mode: ModeContains, Value: "edge", Role: RoleShould},
					{Field: FieldAny, Mode: ModeContains, Value: "quantum", Role: RoleShould},
				},
				MinShouldMatch: 2,
			},
			false,
		},
		{
			"threshold clamped to should count",
			Set{
				Rules:          []Rule{{Field: FieldAny, Mode: ModeContains, Value: "edge", Role: RoleShould}},
				MinShouldMatch: 5,
			},
			true,
		},
		{
			"zero threshold is advisory",
			Set{
				Rules: []Rule{{Field: FieldAny, Mode: ModeContains, Value: "quantum", Role: RoleShould}},
			},
			true,
		},
		{
			"case insensitive",
			Set{Rules: []Rule{{Field: FieldAuthors, Mode: ModeContains, Value: "LOVELACE", Role: RoleMust}}},
			true,
		},
		{
			"combined roles",
			Set{
				Rules: []Rule{
					{Field: FieldTitle, Mode: ModeContains, Value: "learning", Role: RoleMust},
					{Field: FieldAny, Mode: ModeContains, Value: "privacy", Role: RoleShould},
					{Field: FieldAbstract, Mode: ModeContains, Value: "centralized", Role: RoleMustNot},
				},
				MinShouldMatch: 1,
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.Match(samplePaper); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchCombinedScenario(t *testing.T) {
	set := Set{
		Rules: []Rule{
			{Field: FieldTitle, Mode: ModeContains, Value: "attention", Role: RoleMust},
			{Field: FieldTitle, Mode: ModeContains, Value: "survey", Role: RoleMustNot},
			{Field: FieldAbstract, Mode: ModeContains, Value: "transformer", Role: RoleShould},
		},
		MinShouldMatch: 1,
	}

	tests := []struct {
		name  string
		paper types.Paper
		want  bool
	}{
		{
			"must and should both hit",
			types.Paper{Title: "Attention Is All You Need", Abstract: "We propose the transformer."},
			true,
		},
		{
			"must_not overrides everything",
			types.Paper{Title: "A Survey of Attention", Abstract: "Covers the transformer."},
			false,
		},
		{
			"should threshold unmet",
			types.Paper{Title: "Attention Mechanisms", Abstract: "A recurrent approach."},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.Match(tt.paper); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.paper.Title, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	other := types.Paper{Title: "Quantum Widgets"}
	set := Set{Rules: []Rule{{Field: FieldTitle, Mode: ModeContains, Value: "federated", Role: RoleMust}}}

	out := set.Apply([]types.Paper{samplePaper, other})
	if len(out) != 1 || out[0].Title != samplePaper.Title {
		t.Errorf("Apply() kept %v", out)
	}

	all := Set{}.Apply([]types.Paper{samplePaper, other})
	if len(all) != 2 {
		t.Errorf("empty set filtered papers: %v", all)
	}
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		expr    string
		want    Rule
		wantErr bool
	}{
		{"title=federated", Rule{Field: FieldTitle, Mode: ModeContains, Value: "federated", Role: RoleMust}, false},
		{"federated", Rule{Field: FieldAny, Mode: ModeContains, Value: "federated", Role: RoleMust}, false},
		{"abstract=!centralized", Rule{Field: FieldAbstract, Mode: ModeNotContains, Value: "centralized", Role: RoleMust}, false},
		{"!quantum", Rule{Field: FieldAny, Mode: ModeNotContains, Value: "quantum", Role: RoleMust}, false},
		{"venue=iclr", Rule{}, true},
		{"title=", Rule{}, true},
		{"!", Rule{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseRule(RoleMust, tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.expr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRule(%q): %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("ParseRule(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseRules(t *testing.T) {
	set, err := ParseRules(
		[]string{"title=learning"},
		[]string{"privacy", "edge"},
		[]string{"abstract=centralized"},
		1,
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Rules) != 4 {
		t.Fatalf("got %d rules, want 4", len(set.Rules))
	}
	if set.MinShouldMatch != 1 {
		t.Errorf("MinShouldMatch = %d, want 1", set.MinShouldMatch)
	}
	if !set.Match(samplePaper) {
		t.Error("sample paper should match the combined set")
	}
}
