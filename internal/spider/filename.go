// Copyright 2026 Isaacveg. All rights reserved.

package spider

import (
	"regexp"
	"strings"
)

const maxFileNameLen = 120

var (
	forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9._\- ]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// SafeFileName turns a paper title into a filesystem-safe stem. Characters
// that are unsafe on common filesystems are dropped or replaced, runs of
// underscores collapse, and the result is capped so the path stays within
// filesystem limits. An empty result falls back to fallback (the paper id).
func SafeFileName(title, fallback string) string {
	name := strings.TrimSpace(title)
	name = strings.ReplaceAll(name, "$", "")
	name = forbiddenChars.ReplaceAllString(name, "")
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.ReplaceAll(name, " ", "_")
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		name = fallback
	}
	if len(name) > maxFileNameLen {
		name = strings.Trim(name[:maxFileNameLen], "._-")
	}
	return name
}
