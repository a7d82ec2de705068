// config.go: Store configuration
//
// Copyright (c) 2025 AGILira
// Series: AGILira System Libraries
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"os"
	"time"
)

const (
	defaultFileMode os.FileMode = 0644
	defaultDirMode  os.FileMode = 0755
)

// Config configures a Store. The validation policy is explicit per store;
// there is no process-wide state.
type Config struct {
	// Strict forbids '[', ']' and '=' in section and key names.
	Strict bool `json:"strict"`
	// AllowSpacesInNames permits whitespace in section and key names.
	AllowSpacesInNames bool `json:"allow_spaces_in_names"`
	// AllowEmptyValues permits writing entries with an empty value.
	AllowEmptyValues bool `json:"allow_empty_values"`
	// RejectDuplicates makes writes fail on files whose target section is
	// declared twice or already holds duplicate keys.
	RejectDuplicates bool `json:"reject_duplicates"`

	// FileMode is used for files the store creates.
	FileMode os.FileMode `json:"file_mode"`
	// DirMode is used for parent directories the store creates.
	DirMode os.FileMode `json:"dir_mode"`

	// WatchDebounce coalesces bursts of filesystem events in Watch.
	WatchDebounce time.Duration `json:"watch_debounce"`

	// Audit configures the mutation audit trail. Disabled by default.
	Audit AuditConfig `json:"audit"`

	// Replacer performs the atomic file swap. Nil selects a FileReplacer.
	Replacer Replacer `json:"-"`
}

// DefaultConfig returns the strict default policy: no brackets or '=' in
// names, no whitespace in names, no empty values.
func DefaultConfig() Config {
	return Config{
		Strict:             true,
		AllowSpacesInNames: false,
		AllowEmptyValues:   false,
		FileMode:           defaultFileMode,
		DirMode:            defaultDirMode,
		WatchDebounce:      50 * time.Millisecond,
	}
}

// Policy extracts the name and value validation policy.
func (c Config) Policy() Policy {
	return Policy{
		Strict:             c.Strict,
		AllowSpacesInNames: c.AllowSpacesInNames,
		AllowEmptyValues:   c.AllowEmptyValues,
	}
}

// WithDefaults fills unset modes, debounce and audit tuning. Policy flags
// are left exactly as given.
func (c *Config) WithDefaults() *Config {
	config := *c

	if config.FileMode == 0 {
		config.FileMode = defaultFileMode
	}

	if config.DirMode == 0 {
		config.DirMode = defaultDirMode
	}

	if config.WatchDebounce <= 0 {
		config.WatchDebounce = 50 * time.Millisecond
	}

	if config.Audit.Enabled {
		defaults := DefaultAuditConfig()
		if config.Audit.BufferSize == 0 {
			config.Audit.BufferSize = defaults.BufferSize
		}
		if config.Audit.FlushInterval == 0 {
			config.Audit.FlushInterval = defaults.FlushInterval
		}
	}

	if config.Replacer == nil {
		config.Replacer = NewFileReplacer(config.FileMode)
	}

	return &config
}
