// Copyright 2026 Isaacveg. All rights reserved.

// Package filter evaluates boolean keyword rules against paper records.
package filter

import (
	"fmt"
	"strings"

	"github.com/isaacveg/paper-spider/pkg/types"
)

// Field selects which part of a record a rule inspects.
type Field string

const (
	FieldAny      Field = "any"
	FieldTitle    Field = "title"
	FieldAuthors  Field = "authors"
	FieldAbstract Field = "abstract"
	FieldKeywords Field = "keywords"
)

// Mode is the match direction of a rule.
type Mode string

const (
	ModeContains    Mode = "contains"
	ModeNotContains Mode = "not_contains"
)

// Role determines how a rule combines with the others in a set.
type Role string

const (
	RoleMust    Role = "must"
	RoleShould  Role = "should"
	RoleMustNot Role = "must_not"
)

// Rule is one keyword condition. Matching is case-insensitive substring.
type Rule struct {
	Field Field  `yaml:"field" json:"field"`
	Mode  Mode   `yaml:"mode" json:"mode"`
	Value string `yaml:"value" json:"value"`
	Role  Role   `yaml:"role" json:"role"`
}

// Set combines rules: every must rule is required, every must_not rule is
// forbidden, and at least MinShouldMatch of the should rules are required.
type Set struct {
	Rules          []Rule `yaml:"rules" json:"rules"`
	MinShouldMatch int    `yaml:"min_should_match" json:"min_should_match"`
}

// Empty reports whether the set constrains nothing.
func (s Set) Empty() bool { return len(s.Rules) == 0 }

// Match reports whether p satisfies the set. MinShouldMatch is clamped to
// the number of should rules present, so a threshold larger than the rule
// count does not reject everything; zero means should rules are advisory.
func (s Set) Match(p types.Paper) bool {
	shouldTotal := 0
	shouldHit := 0
	for _, r := range s.Rules {
		ok := r.match(p)
		switch r.Role {
		case RoleMust:
			if !ok {
				return false
			}
		case RoleMustNot:
			if ok {
				return false
			}
		case RoleShould:
			shouldTotal++
			if ok {
				shouldHit++
			}
		}
	}

	threshold := s.MinShouldMatch
	if threshold > shouldTotal {
		threshold = shouldTotal
	}
	if threshold < 0 {
		threshold = 0
	}
	return shouldHit >= threshold
}

// Apply returns the papers from the slice that match the set.
func (s Set) Apply(papers []types.Paper) []types.Paper {
	if s.Empty() {
		return papers
	}
	var out []types.Paper
	for _, p := range papers {
		if s.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r Rule) match(p types.Paper) bool {
	found := containsFold(r.text(p), r.Value)
	if r.Mode == ModeNotContains {
		return !found
	}
	return found
}

func (r Rule) text(p types.Paper) string {
	switch r.Field {
	case FieldTitle:
		return p.Title
	case FieldAuthors:
		return strings.Join(p.Authors, " ")
	case FieldAbstract:
		return p.Abstract
	case FieldKeywords:
		return strings.Join(p.Keywords, " ")
	default:
		return strings.Join([]string{
			p.Title,
			strings.Join(p.Authors, " "),
			p.Abstract,
			strings.Join(p.Keywords, " "),
		}, " ")
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

// ParseRule builds a rule from a command-line expression of the form
// "field=value" or just "value" (matched against all fields). A value
// prefixed with "!" inverts the match.
func ParseRule(role Role, expr string) (Rule, error) {
	field := FieldAny
	value := strings.TrimSpace(expr)
	if before, after, ok := strings.Cut(expr, "="); ok {
		f := Field(strings.ToLower(strings.TrimSpace(before)))
		switch f {
		case FieldAny, FieldTitle, FieldAuthors, FieldAbstract, FieldKeywords:
			field = f
			value = strings.TrimSpace(after)
		default:
			return Rule{}, fmt.Errorf("unknown filter field %q", before)
		}
	}

	mode := ModeContains
	if strings.HasPrefix(value, "!") {
		mode = ModeNotContains
		value = strings.TrimSpace(strings.TrimPrefix(value, "!"))
	}
	if value == "" {
		return Rule{}, fmt.Errorf("empty filter value in %q", expr)
	}
	return Rule{Field: field, Mode: mode, Value: value, Role: role}, nil
}

// ParseRules parses one expression list per role into a set.
func ParseRules(must, should, mustNot []string, minShouldMatch int) (Set, error) {
	var set Set
	for _, group := range []struct {
		role  Role
		exprs []string
	}{
		{RoleMust, must},
		{RoleShould, should},
		{RoleMustNot, mustNot},
	} {
		for _, expr := range group.exprs {
			rule, err := ParseRule(group.role, expr)
			if err != nil {
				return Set{}, err
			}
			set.Rules = append(set.Rules, rule)
		}
	}
	set.MinShouldMatch = minShouldMatch
	return set, nil
}
