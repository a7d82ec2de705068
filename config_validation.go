// config_validation.go - configuration validation for inistore
//
// This module validates store configuration before a Store is built and
// reports problems as errors (fatal) or warnings (suspicious but usable).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/go-errors"
)

// Validation errors
var (
	ErrInvalidFileMode      = errors.New(ErrCodeInvalidFileMode, "file mode must grant the owner read and write access")
	ErrInvalidDirMode       = errors.New(ErrCodeInvalidFileMode, "directory mode must grant the owner full access")
	ErrInvalidBufferSize    = errors.New(ErrCodeInvalidBufferSize, "audit buffer size must not be negative")
	ErrInvalidFlushInterval = errors.New(ErrCodeInvalidFlush, "audit flush interval must not be negative")
	ErrInvalidOutputFile    = errors.New(ErrCodeInvalidOutputFile, "audit output file path is invalid")
	ErrInvalidAuditLevel    = errors.New(ErrCodeInvalidAuditConfig, "unknown audit level")
)

// ValidationResult contains the result of configuration validation with detailed feedback.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// String returns a human-readable representation of validation results
func (vr ValidationResult) String() string {
	if vr.Valid {
		if len(vr.Warnings) == 0 {
			return "Configuration is valid"
		}
		return fmt.Sprintf("Configuration is valid with %d warning(s)", len(vr.Warnings))
	}
	return fmt.Sprintf("Configuration is invalid: %d error(s), %d warning(s)",
		len(vr.Errors), len(vr.Warnings))
}

// Validate returns the first configuration error, or nil.
func (c *Config) Validate() error {
	result := c.ValidateDetailed()
	if result.Valid || len(result.Errors) == 0 {
		return nil
	}

	firstError := result.Errors[0]
	for _, known := range []*errors.Error{
		ErrInvalidFileMode,
		ErrInvalidDirMode,
		ErrInvalidBufferSize,
		ErrInvalidFlushInterval,
		ErrInvalidOutputFile,
		ErrInvalidAuditLevel,
	} {
		if firstError == known.Error() {
			return known
		}
	}
	return errors.New(ErrCodeInvalidConfig, firstError)
}

// ValidateDetailed performs validation and returns both errors and warnings.
func (c *Config) ValidateDetailed() ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	c.validateModes(&result)
	c.validatePolicy(&result)
	c.validateAuditConfig(&result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (c *Config) validateModes(result *ValidationResult) {
	if c.FileMode != 0 && c.FileMode&0600 != 0600 {
		result.Errors = append(result.Errors, ErrInvalidFileMode.Error())
	}
	if c.DirMode != 0 && c.DirMode&0700 != 0700 {
		result.Errors = append(result.Errors, ErrInvalidDirMode.Error())
	}
	if c.FileMode&0002 != 0 {
		result.Warnings = append(result.Warnings, "file mode makes INI files world-writable")
	}
}

// validatePolicy warns about lenient combinations that can produce files
// other tools misread.
func (c *Config) validatePolicy(result *ValidationResult) {
	if !c.Strict {
		result.Warnings = append(result.Warnings,
			"non-strict names may contain '[', ']' or '=' and might not read back")
	}
	if c.AllowSpacesInNames {
		result.Warnings = append(result.Warnings,
			"names with whitespace are not portable to shell-sourced INI consumers")
	}
	if c.WatchDebounce < 0 {
		result.Warnings = append(result.Warnings, "negative watch debounce replaced by the default")
	} else if c.WatchDebounce > 10*time.Second {
		result.Warnings = append(result.Warnings, "watch debounce above 10s delays change notifications")
	}
}

// validateAuditConfig validates audit configuration if enabled
func (c *Config) validateAuditConfig(result *ValidationResult) {
	if !c.Audit.Enabled {
		return
	}

	if c.Audit.BufferSize < 0 {
		result.Errors = append(result.Errors, ErrInvalidBufferSize.Error())
	} else if c.Audit.BufferSize > 10000 {
		result.Warnings = append(result.Warnings, "Large audit buffer size may consume significant memory")
	}

	if c.Audit.FlushInterval < 0 {
		result.Errors = append(result.Errors, ErrInvalidFlushInterval.Error())
	}

	if c.Audit.MinLevel < AuditInfo || c.Audit.MinLevel > AuditSecurity {
		result.Errors = append(result.Errors, ErrInvalidAuditLevel.Error())
	}

	if c.Audit.OutputFile != "" {
		if err := validateOutputFile(c.Audit.OutputFile); err != nil {
			result.Errors = append(result.Errors, ErrInvalidOutputFile.Error())
		} else if _, err := os.Stat(filepath.Dir(c.Audit.OutputFile)); os.IsNotExist(err) {
			result.Warnings = append(result.Warnings,
				"audit output directory does not exist and will be created")
		}
	}
}

// validateOutputFile checks that the audit output path names a file.
func validateOutputFile(outputFile string) error {
	cleanPath := filepath.Clean(outputFile)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New(ErrCodeInvalidOutputFile,
			fmt.Sprintf("path '%s' is not a valid file path", outputFile))
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return errors.New(ErrCodeInvalidOutputFile,
			fmt.Sprintf("'%s' is a directory", outputFile))
	}
	return ValidatePath(cleanPath)
}

// ValidateEnvironmentConfig validates the configuration loaded from the environment.
func ValidateEnvironmentConfig() error {
	config, err := LoadConfigFromEnv()
	if err != nil {
		return errors.Wrap(err, ErrCodeInvalidConfig, "failed to load config from environment")
	}

	return config.Validate()
}
