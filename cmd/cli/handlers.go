// Command handlers for the inistore CLI
//
// This file contains all command handler implementations for the
// Orpheus-powered CLI. Handlers validate their positional arguments, call
// the Store and render the result through the shared Printer.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agilira/go-errors"
	"github.com/agilira/inistore"
	ui "github.com/agilira/inistore/internal/cli"
	"github.com/agilira/orpheus/pkg/orpheus"
)

func (m *Manager) printer() *ui.Printer {
	return ui.NewPrinter(m.out)
}

// handleGet prints the value of a key. With --default a missing file,
// section or key prints the default instead of failing.
func (m *Manager) handleGet(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "get <file> <section> <key>", 3)
	if err != nil {
		return err
	}

	value, err := m.store.Get(args[0], args[1], args[2])
	if err != nil {
		def := ctx.GetFlagString("default")
		if def == "" || !inistore.IsNotFound(err) {
			return err
		}
		value = def
	}

	m.printer().Line("%s", value)
	return nil
}

// handleSet creates or updates one entry atomically.
func (m *Manager) handleSet(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "set <file> <section> <key> <value>", 3)
	if err != nil {
		return err
	}
	value := ctx.GetArg(3)

	if err := m.store.Write(args[0], args[1], args[2], value); err != nil {
		return err
	}

	m.printer().Line("Set [%s] %s = %s in %s", args[1], args[2], ui.QuoteIfNeeded(value), args[0])
	return nil
}

// handleDelete removes a key from a section.
func (m *Manager) handleDelete(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "delete <file> <section> <key>", 3)
	if err != nil {
		return err
	}

	if err := m.store.RemoveKey(args[0], args[1], args[2]); err != nil {
		return err
	}

	m.printer().Line("Deleted [%s] %s from %s", args[1], args[2], args[0])
	return nil
}

// handleSections lists section names, first occurrence order.
func (m *Manager) handleSections(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "sections <file>", 1)
	if err != nil {
		return err
	}

	sections, err := m.store.ListSections(args[0])
	if err != nil {
		return err
	}
	m.printer().Lines(sections)
	return nil
}

// handleKeys lists the keys of a section, optionally with values.
func (m *Manager) handleKeys(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "keys <file> <section>", 2)
	if err != nil {
		return err
	}

	if !ctx.GetFlagBool("values") {
		keys, err := m.store.ListKeys(args[0], args[1])
		if err != nil {
			return err
		}
		m.printer().Lines(keys)
		return nil
	}

	snapshot, err := m.store.Snapshot(args[0])
	if err != nil {
		return err
	}
	section := snapshot.Section(args[1])
	if section == nil {
		return errors.New(inistore.ErrCodeSectionNotFound, "section not found").
			WithContext("path", args[0]).
			WithContext("section", args[1])
	}
	m.printer().Entries(section.Entries)
	return nil
}

// handleHas prints true or false for a section name.
func (m *Manager) handleHas(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "has <file> <section>", 2)
	if err != nil {
		return err
	}

	exists, err := m.store.SectionExists(args[0], args[1])
	if err != nil {
		return err
	}
	m.printer().Line("%t", exists)
	return nil
}

// handleRemoveSection removes the first block of a section.
func (m *Manager) handleRemoveSection(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "remove-section <file> <section>", 2)
	if err != nil {
		return err
	}

	if err := m.store.RemoveSection(args[0], args[1]); err != nil {
		return err
	}
	m.printer().Line("Removed [%s] from %s", args[1], args[0])
	return nil
}

// handleArraySet stores the remaining arguments as one array value.
func (m *Manager) handleArraySet(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "array set <file> <section> <key> <values...>", 3)
	if err != nil {
		return err
	}
	values := trailingArgs(ctx, 3)

	if err := m.store.SetArrayValue(args[0], args[1], args[2], values...); err != nil {
		return err
	}
	m.printer().Line("Set [%s] %s to %d element(s) in %s", args[1], args[2], len(values), args[0])
	return nil
}

// handleArrayGet prints array elements one per line.
func (m *Manager) handleArrayGet(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "array get <file> <section> <key>", 3)
	if err != nil {
		return err
	}

	values, found, err := m.store.GetArrayValue(args[0], args[1], args[2])
	if err != nil {
		return err
	}
	if !found {
		return errors.New(inistore.ErrCodeKeyNotFound, "key not found").
			WithContext("path", args[0]).
			WithContext("section", args[1]).
			WithContext("key", args[2])
	}
	m.printer().Lines(values)
	return nil
}

// handleLint prints the lint report and fails when it has issues.
func (m *Manager) handleLint(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "lint <file>", 1)
	if err != nil {
		return err
	}

	report, err := m.store.Lint(args[0])
	if err != nil {
		return err
	}
	m.printer().Lint(report)

	if !report.Valid() {
		return errors.New(inistore.ErrCodeValidation, fmt.Sprintf("%d lint issue(s)", len(report.Issues))).
			WithContext("path", args[0])
	}
	return nil
}

// handleExport converts a file to JSON, YAML, TOML or normalized INI.
func (m *Manager) handleExport(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "export <file>", 1)
	if err != nil {
		return err
	}

	format, err := inistore.ParseExportFormat(ctx.GetFlagString("format"))
	if err != nil {
		return err
	}

	output := ctx.GetFlagString("output")
	if output == "" {
		return m.store.Export(args[0], format, m.out)
	}

	var buf bytes.Buffer
	if err := m.store.Export(args[0], format, &buf); err != nil {
		return err
	}
	if err := inistore.ValidatePath(output); err != nil {
		return err
	}
	// #nosec G306 -- exported data is as readable as its source file
	if err := os.WriteFile(output, buf.Bytes(), m.store.Config().FileMode); err != nil {
		return errors.Wrap(err, inistore.ErrCodeIOError, "failed to write export").
			WithContext("path", output)
	}
	m.printer().Line("Exported %s (%s) -> %s", args[0], format, output)
	return nil
}

// handleWatch prints entry changes until interrupted, the timeout elapses
// or --count events were seen.
func (m *Manager) handleWatch(ctx *orpheus.Context) error {
	args, err := requireArgs(ctx, "watch <file>", 1)
	if err != nil {
		return err
	}

	timeout, err := parseExtendedDuration(ctx.GetFlagString("timeout"))
	if err != nil || timeout < 0 {
		return errors.New(inistore.ErrCodeInvalidConfig, fmt.Sprintf("invalid timeout: %s", ctx.GetFlagString("timeout")))
	}
	limit := ctx.GetFlagInt("count")
	asJSON := ctx.GetFlagBool("json")

	watchCtx, stop := signal.NotifyContext(m.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		watchCtx, cancel = context.WithTimeout(watchCtx, timeout)
		defer cancel()
	}
	watchCtx, cancel := context.WithCancel(watchCtx)
	defer cancel()

	p := m.printer()
	if !asJSON {
		p.Line("Watching %s (Ctrl+C to stop)", args[0])
	}

	seen := 0
	return m.store.Watch(watchCtx, args[0], func(ev inistore.ChangeEvent) {
		if asJSON {
			line, err := json.Marshal(ev)
			if err != nil {
				return
			}
			p.Line("%s", line)
		} else {
			p.Change(ev)
		}

		seen++
		if limit > 0 && seen >= limit {
			cancel()
		}
	})
}

// handleAuditStats summarizes the configured audit backend.
func (m *Manager) handleAuditStats(ctx *orpheus.Context) error {
	if m.auditLogger == nil {
		return errors.New(inistore.ErrCodeAuditDisabled, "audit logging not enabled (use --audit-file)")
	}

	stats, err := m.auditLogger.Stats()
	if err != nil {
		return err
	}

	if ctx.GetFlagBool("json") {
		return m.printer().JSON(stats)
	}
	m.printer().AuditStats(stats)
	return nil
}

// handleAuditCleanup prunes the audit trail.
func (m *Manager) handleAuditCleanup(ctx *orpheus.Context) error {
	if m.auditLogger == nil {
		return errors.New(inistore.ErrCodeAuditDisabled, "audit logging not enabled (use --audit-file)")
	}

	if err := m.auditLogger.Maintenance(); err != nil {
		return err
	}
	m.printer().Line("Audit trail maintenance completed")
	return nil
}

// handleInfo displays the effective store configuration.
func (m *Manager) handleInfo(ctx *orpheus.Context) error {
	config := m.store.Config()
	p := m.printer()

	p.Line("inistore %s", Version)
	p.Line("Strict names: %t", config.Strict)
	p.Line("Spaces in names: %t", config.AllowSpacesInNames)
	p.Line("Empty values: %t", config.AllowEmptyValues)
	p.Line("Reject duplicates: %t", config.RejectDuplicates)
	p.Line("Audit: %t", m.auditLogger != nil)

	if ctx.GetFlagBool("verbose") {
		p.Line("File mode: %#o", config.FileMode)
		p.Line("Directory mode: %#o", config.DirMode)
		p.Line("Watch debounce: %v", config.WatchDebounce)
		formats := make([]string, 0, len(inistore.ExportFormats()))
		for _, f := range inistore.ExportFormats() {
			formats = append(formats, string(f))
		}
		p.Line("Export formats: %s", strings.Join(formats, ", "))
		if m.auditLogger != nil {
			if stats, err := m.auditLogger.Stats(); err == nil {
				p.Line("Audit backend: %s (%s)", stats.Backend, stats.Location)
			}
		}
	}
	return nil
}

// handleCompletion generates shell completion scripts.
func (m *Manager) handleCompletion(ctx *orpheus.Context) error {
	shell := ctx.GetArg(0)
	words := strings.Join(commandNames, " ")
	p := m.printer()

	switch shell {
	case "bash":
		p.Line("# Bash completion for inistore")
		p.Line("# Add to ~/.bashrc: source <(inistore completion bash)")
		p.Line("_inistore_completion() {")
		p.Line("  if [ \"$COMP_CWORD\" -eq 1 ]; then")
		p.Line("    COMPREPLY=($(compgen -W '%s' -- \"${COMP_WORDS[COMP_CWORD]}\"))", words)
		p.Line("  else")
		p.Line("    COMPREPLY=($(compgen -f -- \"${COMP_WORDS[COMP_CWORD]}\"))")
		p.Line("  fi")
		p.Line("}")
		p.Line("complete -F _inistore_completion inistore")
	case "zsh":
		p.Line("#compdef inistore")
		p.Line("# Add to ~/.zshrc: source <(inistore completion zsh)")
		p.Line("_inistore() {")
		p.Line("  _arguments '1: :(%s)' '*:file:_files'", words)
		p.Line("}")
	case "fish":
		p.Line("# Fish completion for inistore")
		p.Line("complete -c inistore -n '__fish_use_subcommand' -f -a '%s'", words)
	default:
		return errors.New(inistore.ErrCodeInvalidConfig, fmt.Sprintf("unsupported shell: %s", shell))
	}
	return nil
}
