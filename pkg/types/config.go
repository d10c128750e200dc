// Copyright 2026 Isaacveg. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the source adapters.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-spider/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds settings for one conference source adapter.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// RequestDelay is the minimum spacing between consecutive outbound
	// requests from this adapter (default 100ms). Flat, not adaptive.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// WorkspaceConfig holds settings for the local paper workspace.
type WorkspaceConfig struct {
	// BaseDir is the root directory for all partitions. Each (source, year)
	// pair gets BaseDir/source/year/ containing pdf/, bib/, and the catalog
	// database.
	BaseDir string `json:"base_dir" yaml:"base_dir"`
}
