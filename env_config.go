// env_config.go: Environment variable and dotenv support for inistore configuration
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/joho/godotenv"
)

// EnvConfig represents configuration loaded from environment variables
type EnvConfig struct {
	// Policy
	Strict           *bool `env:"INISTORE_STRICT"`
	AllowSpaces      *bool `env:"INISTORE_ALLOW_SPACES"`
	AllowEmptyValues *bool `env:"INISTORE_ALLOW_EMPTY_VALUES"`
	RejectDuplicates *bool `env:"INISTORE_REJECT_DUPLICATES"`

	// Files
	FileMode os.FileMode `env:"INISTORE_FILE_MODE"`
	DirMode  os.FileMode `env:"INISTORE_DIR_MODE"`

	// Audit Configuration
	AuditEnabled       bool          `env:"INISTORE_AUDIT_ENABLED"`
	AuditOutputFile    string        `env:"INISTORE_AUDIT_OUTPUT_FILE"`
	AuditMinLevel      string        `env:"INISTORE_AUDIT_MIN_LEVEL"`
	AuditBufferSize    int           `env:"INISTORE_AUDIT_BUFFER_SIZE"`
	AuditFlushInterval time.Duration `env:"INISTORE_AUDIT_FLUSH_INTERVAL"`
}

// lookupFunc resolves a variable name to its value, "" when unset.
type lookupFunc func(key string) string

// LoadConfigFromEnv loads configuration from INISTORE_* environment variables
// on top of DefaultConfig.
func LoadConfigFromEnv() (*Config, error) {
	return loadConfig(os.Getenv)
}

// LoadConfigMultiSource loads configuration with precedence:
// 1. Process environment variables (highest priority)
// 2. Variables from the given dotenv files, earlier files winning
// 3. Default values (lowest priority)
//
// Missing dotenv files are skipped; unreadable or malformed ones are errors.
func LoadConfigMultiSource(envFiles ...string) (*Config, error) {
	fileVars := make(map[string]string)

	for _, envFile := range envFiles {
		if envFile == "" {
			continue
		}
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			continue
		}
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeInvalidConfig, "failed to read env file").
				WithContext("path", envFile)
		}
		for k, v := range vars {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
	}

	return loadConfig(func(key string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fileVars[key]
	})
}

func loadConfig(lookup lookupFunc) (*Config, error) {
	config := DefaultConfig()
	envConfig := &EnvConfig{}

	if err := loadEnvVars(envConfig, lookup); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "failed to load environment configuration")
	}

	if err := convertEnvToConfig(envConfig, &config); err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidConfig, "failed to convert environment configuration")
	}

	return config.WithDefaults(), nil
}

// loadEnvVars loads environment variables into the EnvConfig struct
func loadEnvVars(envConfig *EnvConfig, lookup lookupFunc) error {
	loadPolicyConfig(envConfig, lookup)
	if err := loadFileConfig(envConfig, lookup); err != nil {
		return err
	}
	return loadAuditConfig(envConfig, lookup)
}

func loadPolicyConfig(envConfig *EnvConfig, lookup lookupFunc) {
	envConfig.Strict = optionalBool(lookup("INISTORE_STRICT"))
	envConfig.AllowSpaces = optionalBool(lookup("INISTORE_ALLOW_SPACES"))
	envConfig.AllowEmptyValues = optionalBool(lookup("INISTORE_ALLOW_EMPTY_VALUES"))
	envConfig.RejectDuplicates = optionalBool(lookup("INISTORE_REJECT_DUPLICATES"))
}

func loadFileConfig(envConfig *EnvConfig, lookup lookupFunc) error {
	if modeStr := lookup("INISTORE_FILE_MODE"); modeStr != "" {
		mode, err := parseFileMode(modeStr)
		if err != nil {
			return errors.New(ErrCodeInvalidConfig, "invalid INISTORE_FILE_MODE value")
		}
		envConfig.FileMode = mode
	}

	if modeStr := lookup("INISTORE_DIR_MODE"); modeStr != "" {
		mode, err := parseFileMode(modeStr)
		if err != nil {
			return errors.New(ErrCodeInvalidConfig, "invalid INISTORE_DIR_MODE value")
		}
		envConfig.DirMode = mode
	}
	return nil
}

// loadAuditConfig loads audit configuration from environment variables
func loadAuditConfig(envConfig *EnvConfig, lookup lookupFunc) error {
	if auditStr := lookup("INISTORE_AUDIT_ENABLED"); auditStr != "" {
		envConfig.AuditEnabled = parseBool(auditStr)
	}

	envConfig.AuditOutputFile = lookup("INISTORE_AUDIT_OUTPUT_FILE")
	envConfig.AuditMinLevel = lookup("INISTORE_AUDIT_MIN_LEVEL")

	if bufferStr := lookup("INISTORE_AUDIT_BUFFER_SIZE"); bufferStr != "" {
		buffer, err := strconv.Atoi(bufferStr)
		if err != nil || buffer <= 0 {
			return errors.New(ErrCodeInvalidConfig, "invalid INISTORE_AUDIT_BUFFER_SIZE value")
		}
		envConfig.AuditBufferSize = buffer
	}

	if flushStr := lookup("INISTORE_AUDIT_FLUSH_INTERVAL"); flushStr != "" {
		duration, err := time.ParseDuration(flushStr)
		if err != nil {
			return errors.New(ErrCodeInvalidConfig, "invalid INISTORE_AUDIT_FLUSH_INTERVAL format")
		}
		envConfig.AuditFlushInterval = duration
	}
	return nil
}

// convertEnvToConfig overlays set environment values onto config
func convertEnvToConfig(envConfig *EnvConfig, config *Config) error {
	if envConfig.Strict != nil {
		config.Strict = *envConfig.Strict
	}
	if envConfig.AllowSpaces != nil {
		config.AllowSpacesInNames = *envConfig.AllowSpaces
	}
	if envConfig.AllowEmptyValues != nil {
		config.AllowEmptyValues = *envConfig.AllowEmptyValues
	}
	if envConfig.RejectDuplicates != nil {
		config.RejectDuplicates = *envConfig.RejectDuplicates
	}
	if envConfig.FileMode != 0 {
		config.FileMode = envConfig.FileMode
	}
	if envConfig.DirMode != 0 {
		config.DirMode = envConfig.DirMode
	}
	return convertAuditConfig(envConfig, config)
}

// convertAuditConfig converts audit configuration from EnvConfig to Config
func convertAuditConfig(envConfig *EnvConfig, config *Config) error {
	if !envConfig.AuditEnabled && envConfig.AuditOutputFile == "" {
		return nil
	}

	config.Audit.Enabled = envConfig.AuditEnabled || envConfig.AuditOutputFile != ""

	if envConfig.AuditOutputFile != "" {
		config.Audit.OutputFile = envConfig.AuditOutputFile
	}

	if envConfig.AuditMinLevel != "" {
		level, err := ParseAuditLevel(envConfig.AuditMinLevel)
		if err != nil {
			return err
		}
		config.Audit.MinLevel = level
	}

	if envConfig.AuditBufferSize > 0 {
		config.Audit.BufferSize = envConfig.AuditBufferSize
	}

	if envConfig.AuditFlushInterval > 0 {
		config.Audit.FlushInterval = envConfig.AuditFlushInterval
	}
	return nil
}

// ParseAuditLevel parses an audit level name.
func ParseAuditLevel(levelStr string) (AuditLevel, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "info":
		return AuditInfo, nil
	case "warn", "warning":
		return AuditWarn, nil
	case "critical", "error":
		return AuditCritical, nil
	case "security":
		return AuditSecurity, nil
	default:
		return AuditInfo, errors.New(ErrCodeInvalidConfig, "invalid audit level").
			WithContext("level", levelStr)
	}
}

// parseFileMode accepts octal modes such as "0644" or "644".
func parseFileMode(value string) (os.FileMode, error) {
	mode, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(value), "0o"), 8, 32)
	if err != nil {
		return 0, err
	}
	return os.FileMode(mode).Perm(), nil
}

// optionalBool returns nil for unset variables so defaults survive.
func optionalBool(value string) *bool {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	b := parseBool(value)
	return &b
}

// parseBool parses boolean values from environment variables
// Supports: true/false, 1/0, yes/no, on/off, enabled/disabled
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on", "enabled":
		return true
	default:
		return false
	}
}

// GetEnvWithDefault returns environment variable value or default if not set
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBoolWithDefault returns environment variable as bool or default
func GetEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return parseBool(value)
	}
	return defaultValue
}

// GetEnvDurationWithDefault returns environment variable as duration or default
func GetEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
