// Package cli provides the command-line interface for inistore.
//
// The command tree is built on the Orpheus framework with git-style
// subcommands. Every command operates on one INI file through a shared
// Store, so the validation policy and the audit trail chosen by the global
// flags apply uniformly.
//
// Architecture:
// - Manager: command registration and routing
// - Handlers: one function per command
// - Utils: argument helpers and duration parsing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"io"
	"os"

	"github.com/agilira/inistore"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Version is reported by --version and the info command.
const Version = "1.0.0"

// Manager routes inistore commands to a Store.
type Manager struct {
	app         *orpheus.App
	store       *inistore.Store
	auditLogger *inistore.AuditLogger // Optional audit integration
	out         io.Writer
	ctx         context.Context
}

// NewManager creates a CLI manager operating on store. A nil store is
// replaced by one with the default strict policy.
func NewManager(store *inistore.Store) *Manager {
	if store == nil {
		store = inistore.NewDefault()
	}

	app := orpheus.New("inistore").
		SetDescription("Read and edit INI files with atomic, comment-preserving writes").
		SetVersion(Version)

	manager := &Manager{
		app:         app,
		store:       store,
		auditLogger: store.AuditLogger(),
		out:         os.Stdout,
		ctx:         context.Background(),
	}

	manager.setupValueCommands()
	manager.setupSectionCommands()
	manager.setupArrayCommands()
	manager.setupFileCommands()
	manager.setupUtilityCommands()

	return manager
}

// WithAudit overrides the audit logger used by the audit commands.
func (m *Manager) WithAudit(auditLogger *inistore.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// WithOutput redirects command output, os.Stdout by default.
func (m *Manager) WithOutput(w io.Writer) *Manager {
	m.out = w
	return m
}

// WithContext sets the parent context for long-running commands such as
// watch.
func (m *Manager) WithContext(ctx context.Context) *Manager {
	m.ctx = ctx
	return m
}

// Store returns the store the commands operate on.
func (m *Manager) Store() *inistore.Store {
	return m.store
}

// Run executes the command named by args, without the program name.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// Command Setup Methods

// setupValueCommands registers get, set and delete.
func (m *Manager) setupValueCommands() {
	// get <file> <section> <key> [--default=]
	getCmd := orpheus.NewCommand("get", "Print the value of a key").
		AddFlag("default", "d", "", "Value printed when the key is missing").
		SetHandler(m.handleGet)
	m.app.AddCommand(getCmd)

	// set <file> <section> <key> <value>
	setCmd := orpheus.NewCommand("set", "Create or update a key").
		SetHandler(m.handleSet)
	m.app.AddCommand(setCmd)

	// delete <file> <section> <key>
	deleteCmd := orpheus.NewCommand("delete", "Remove every occurrence of a key in a section").
		SetHandler(m.handleDelete)
	m.app.AddCommand(deleteCmd)
}

// setupSectionCommands registers the section listing and removal commands.
func (m *Manager) setupSectionCommands() {
	sectionsCmd := orpheus.NewCommand("sections", "List section names in file order").
		SetHandler(m.handleSections)
	m.app.AddCommand(sectionsCmd)

	// keys <file> <section> [--values]
	keysCmd := orpheus.NewCommand("keys", "List the keys of a section").
		AddBoolFlag("values", "v", false, "Print key = value pairs").
		SetHandler(m.handleKeys)
	m.app.AddCommand(keysCmd)

	hasCmd := orpheus.NewCommand("has", "Report whether a section exists").
		SetHandler(m.handleHas)
	m.app.AddCommand(hasCmd)

	removeCmd := orpheus.NewCommand("remove-section", "Remove a section and its entries").
		SetHandler(m.handleRemoveSection)
	m.app.AddCommand(removeCmd)
}

// setupArrayCommands configures the 'array' command group.
func (m *Manager) setupArrayCommands() {
	arrayCmd := orpheus.NewCommand("array", "Array-valued keys")

	// array set <file> <section> <key> <values...>
	arrayCmd.Subcommand("set", "Store values as a comma-separated array", m.handleArraySet)

	// array get <file> <section> <key>
	arrayCmd.Subcommand("get", "Print array elements one per line", m.handleArrayGet)

	m.app.AddCommand(arrayCmd)
}

// setupFileCommands registers whole-file commands: lint, export and watch.
func (m *Manager) setupFileCommands() {
	lintCmd := orpheus.NewCommand("lint", "Check a file for duplicates and malformed lines").
		SetHandler(m.handleLint)
	m.app.AddCommand(lintCmd)

	// export <file> [--format=json] [--output=]
	exportCmd := orpheus.NewCommand("export", "Convert a file to another format").
		AddFlag("format", "f", "json", "Output format (json|yaml|toml|ini)").
		AddFlag("output", "o", "", "Write to this file instead of stdout").
		SetHandler(m.handleExport)
	m.app.AddCommand(exportCmd)

	// watch <file> [--timeout=0] [--count=0] [--json]
	watchCmd := orpheus.NewCommand("watch", "Print entry changes as they happen")
	watchCmd.SetHandler(m.handleWatch)
	watchCmd.AddFlag("timeout", "t", "0", "Stop after this long (e.g. 30s, 2h, 1d); 0 waits for Ctrl+C")
	watchCmd.AddIntFlag("count", "n", 0, "Stop after this many change events")
	watchCmd.AddBoolFlag("json", "j", false, "Print events as JSON lines")
	m.app.AddCommand(watchCmd)
}

// setupUtilityCommands configures audit, info and completion.
func (m *Manager) setupUtilityCommands() {
	auditCmd := orpheus.NewCommand("audit", "Audit trail management")

	statsCmd := auditCmd.Subcommand("stats", "Summarize the audit trail", m.handleAuditStats)
	statsCmd.AddBoolFlag("json", "j", false, "Print statistics as JSON")

	auditCmd.Subcommand("cleanup", "Prune events past the retention window", m.handleAuditCleanup)

	m.app.AddCommand(auditCmd)

	infoCmd := orpheus.NewCommand("info", "Show the effective configuration")
	infoCmd.SetHandler(m.handleInfo)
	infoCmd.AddBoolFlag("verbose", "v", false, "Include audit and file mode details")
	m.app.AddCommand(infoCmd)

	completionCmd := orpheus.NewCommand("completion", "Generate shell completion scripts")
	completionCmd.SetHandler(m.handleCompletion)
	m.app.AddCommand(completionCmd)
}
