// integration.go: Command-line flag layer for store configuration
//
// Global flags are parsed with FlashFlags and overlaid on the configuration
// loaded from dotenv files and the environment. Only the flags that precede
// the first command word are global; everything after is left for the
// command router.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"strings"

	flashflags "github.com/agilira/flash-flags"
	"github.com/agilira/go-errors"
)

// ErrHelpRequested is returned by Parse when -h or --help is among the
// global flags.
var ErrHelpRequested = errors.New(ErrCodeHelpRequested, "help requested")

// ConfigManager turns global command-line flags into a store Config.
type ConfigManager struct {
	flags   *flashflags.FlagSet
	appName string

	// valueFlags take the following token as their value
	valueFlags map[string]bool
}

// NewConfigManager registers the global flags understood by every
// inistore command.
func NewConfigManager(appName string) *ConfigManager {
	cm := &ConfigManager{
		flags:      flashflags.New(appName),
		appName:    appName,
		valueFlags: make(map[string]bool),
	}

	cm.flags.Bool("lenient", false, "Allow '[', ']' and '=' in section and key names")
	cm.flags.Bool("allow-spaces", false, "Allow whitespace in section and key names")
	cm.flags.Bool("allow-empty", false, "Allow writing empty values")
	cm.flags.Bool("reject-duplicates", false, "Refuse writes to sections with duplicate headers or keys")
	cm.stringFlag("audit-file", "", "Record mutations to this audit file (.jsonl or SQLite)")
	cm.stringFlag("env-file", ".env", "Dotenv file with INISTORE_* settings")
	return cm
}

func (cm *ConfigManager) stringFlag(name, defaultValue, usage string) {
	cm.flags.String(name, defaultValue, usage)
	cm.valueFlags[name] = true
}

// SetDescription sets the application description for help text
func (cm *ConfigManager) SetDescription(description string) *ConfigManager {
	cm.flags.SetDescription(description)
	return cm
}

// SetVersion sets the application version for help text
func (cm *ConfigManager) SetVersion(version string) *ConfigManager {
	cm.flags.SetVersion(version)
	return cm
}

// Parse consumes the leading global flags of args and returns the rest.
func (cm *ConfigManager) Parse(args []string) ([]string, error) {
	global, rest := cm.splitGlobal(args)

	for _, arg := range global {
		if arg == "--help" || arg == "-h" {
			return rest, ErrHelpRequested
		}
	}

	if err := cm.flags.Parse(global); err != nil {
		return rest, errors.Wrap(err, ErrCodeInvalidConfig, "failed to parse command-line flags")
	}
	return rest, nil
}

// splitGlobal separates leading "-x", "--x", "--x=v" and "--x v" tokens
// from the command words. A "--" token ends the global flags and is
// dropped.
func (cm *ConfigManager) splitGlobal(args []string) (global, rest []string) {
	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" {
			return args[:i], args[i+1:]
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		hasValue := strings.Contains(name, "=")
		if hasValue {
			name = name[:strings.Index(name, "=")]
		}
		i++
		if cm.valueFlags[name] && !hasValue && i < len(args) {
			i++
		}
	}
	return args[:i], args[i:]
}

// Config loads the env file named by --env-file (a missing file is
// skipped), applies the process environment and then the flags that were
// given.
func (cm *ConfigManager) Config() (*Config, error) {
	config, err := LoadConfigMultiSource(cm.flags.GetString("env-file"))
	if err != nil {
		return nil, err
	}

	if cm.flags.GetBool("lenient") {
		config.Strict = false
	}
	if cm.flags.GetBool("allow-spaces") {
		config.AllowSpacesInNames = true
	}
	if cm.flags.GetBool("allow-empty") {
		config.AllowEmptyValues = true
	}
	if cm.flags.GetBool("reject-duplicates") {
		config.RejectDuplicates = true
	}
	if auditFile := cm.flags.GetString("audit-file"); auditFile != "" {
		config.Audit.Enabled = true
		config.Audit.OutputFile = auditFile
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// PrintUsage prints help information for the global flags
func (cm *ConfigManager) PrintUsage() {
	cm.flags.PrintHelp()
}

// FlagNames lists the registered global flags.
func (cm *ConfigManager) FlagNames() []string {
	var names []string
	cm.flags.VisitAll(func(flag *flashflags.Flag) {
		names = append(names, flag.Name())
	})
	return names
}

// ConfigFromFlags parses the leading global flags of args and returns the
// resulting Config together with the remaining command arguments.
func ConfigFromFlags(args []string) (*Config, []string, error) {
	cm := NewConfigManager("inistore")
	rest, err := cm.Parse(args)
	if err != nil {
		return nil, rest, err
	}
	config, err := cm.Config()
	if err != nil {
		return nil, rest, err
	}
	return config, rest, nil
}
