// Output helpers for the inistore CLI
//
// This file renders store results for terminals and pipes: plain lines for
// scripting and aligned columns where a human reads the output.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agilira/inistore"
)

// Printer writes command results to an output stream.
type Printer struct {
	w io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Line writes a single line.
func (p *Printer) Line(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Lines writes one item per line.
func (p *Printer) Lines(items []string) {
	for _, item := range items {
		p.Line("%s", item)
	}
}

// Entries writes "key = value" pairs with aligned separators.
func (p *Printer) Entries(entries []inistore.Entry) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 1, ' ', 0)
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t= %s\n", e.Key, e.Value)
	}
	_ = tw.Flush()
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Change writes a one-line summary per entry change of ev.
func (p *Printer) Change(ev inistore.ChangeEvent) {
	stamp := ev.Time.Format(time.RFC3339)
	if ev.Deleted {
		p.Line("%s %s: file deleted", stamp, ev.Path)
	}
	for _, c := range ev.Changes {
		p.Line("%s %s", stamp, FormatChange(c))
	}
}

// FormatChange renders c as "kind [section] key: old -> new".
func FormatChange(c inistore.Change) string {
	switch c.Kind {
	case inistore.ChangeAdded:
		return fmt.Sprintf("added [%s] %s = %s", c.Section, c.Key, c.NewValue)
	case inistore.ChangeRemoved:
		return fmt.Sprintf("removed [%s] %s (was %s)", c.Section, c.Key, c.OldValue)
	default:
		return fmt.Sprintf("%s [%s] %s: %s -> %s", c.Kind, c.Section, c.Key, c.OldValue, c.NewValue)
	}
}

// AuditStats writes a two-column summary of stats.
func (p *Printer) AuditStats(stats *inistore.AuditDatabaseStats) {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	row := func(label string, value interface{}) {
		_, _ = fmt.Fprintf(tw, "%s:\t%v\n", label, value)
	}

	row("Backend", stats.Backend)
	row("Location", stats.Location)
	row("Schema version", stats.SchemaVersion)
	row("Total events", stats.TotalEvents)
	row("Files touched", stats.FilesTouched)
	row("Storage size", formatBytes(stats.StorageSize))
	if stats.RetentionDays > 0 {
		row("Retention", fmt.Sprintf("%d days", stats.RetentionDays))
	}
	if stats.OldestEvent != nil && stats.NewestEvent != nil {
		row("Time range", stats.OldestEvent.Format(time.RFC3339)+" .. "+stats.NewestEvent.Format(time.RFC3339))
	}
	for _, name := range sortedKeys(stats.EventsByType) {
		row("  "+name, stats.EventsByType[name])
	}
	for _, name := range sortedKeys(stats.EventsByLevel) {
		row("  level "+name, stats.EventsByLevel[name])
	}
	_ = tw.Flush()
}

// Lint writes the report, one issue per line.
func (p *Printer) Lint(report *inistore.LintReport) {
	p.Line("%s", report.String())
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// QuoteIfNeeded wraps s in double quotes when it has surrounding
// whitespace or is empty, so such values stay visible on a terminal.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.TrimSpace(s) != s {
		return fmt.Sprintf("%q", s)
	}
	return s
}
