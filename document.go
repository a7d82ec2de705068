// document.go: Line-preserving INI document model
//
// A document is rebuilt from disk for every operation. Each physical line is
// classified once and keeps its raw text, so lines that an operation does not
// touch serialize back byte for byte.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"bytes"
	"strings"
)

// lineKind classifies a physical line of an INI file.
type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineSection
	lineEntry
	lineOther
)

func (k lineKind) String() string {
	switch k {
	case lineBlank:
		return "blank"
	case lineComment:
		return "comment"
	case lineSection:
		return "section"
	case lineEntry:
		return "entry"
	case lineOther:
		return "other"
	default:
		return "unknown"
	}
}

// line is one physical line without its "\n" terminator. A trailing "\r"
// stays in raw so CRLF files round-trip unchanged.
type line struct {
	raw   string
	kind  lineKind
	name  string // section name or entry key
	value string // text after the first '=' for entries, untrimmed
}

// classifyLine decides what a raw line is. Comments start with '#' or ';'
// after optional whitespace; headers are "[name]"; entries need a non-empty
// key before the first '='.
func classifyLine(raw string) line {
	l := line{raw: raw}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		l.kind = lineBlank
	case trimmed[0] == '#' || trimmed[0] == ';':
		l.kind = lineComment
	case len(trimmed) >= 2 && trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']':
		l.kind = lineSection
		l.name = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	default:
		idx := strings.IndexByte(trimmed, '=')
		if idx <= 0 {
			l.kind = lineOther
			return l
		}
		key := strings.TrimSpace(trimmed[:idx])
		if key == "" {
			l.kind = lineOther
			return l
		}
		l.kind = lineEntry
		l.name = key
		// Take the value from raw so the caller sees exactly what follows '='
		l.value = strings.TrimRight(raw[strings.IndexByte(raw, '=')+1:], "\r")
	}
	return l
}

// section is one header line plus every line up to the next header or EOF.
type section struct {
	header line
	body   []line
	// lineNo is the 1-based line number of the header in the parsed file
	lineNo int
}

func (s *section) name() string {
	return s.header.name
}

// findKey returns the index in body of the first entry for key, or -1.
func (s *section) findKey(key string) int {
	for i := range s.body {
		if s.body[i].kind == lineEntry && s.body[i].name == key {
			return i
		}
	}
	return -1
}

// keys lists entry keys in order, one per occurrence.
func (s *section) keys() []string {
	keys := make([]string, 0, len(s.body))
	for _, l := range s.body {
		if l.kind == lineEntry {
			keys = append(keys, l.name)
		}
	}
	return keys
}

// lastContent returns the index of the last non-blank body line, or -1.
func (s *section) lastContent() int {
	for i := len(s.body) - 1; i >= 0; i-- {
		if s.body[i].kind != lineBlank {
			return i
		}
	}
	return -1
}

// document is the transient model of one file.
type document struct {
	preamble []line
	sections []*section
	// trailingNewline records whether the file ended with "\n"
	trailingNewline bool
	crlf            bool
}

// parseDocument splits data into classified lines. It never fails: anything
// that is not a comment, header or entry is kept as an "other" line.
func parseDocument(data []byte) *document {
	doc := &document{}
	if len(data) == 0 {
		return doc
	}

	text := string(data)
	if strings.HasSuffix(text, "\n") {
		doc.trailingNewline = true
		text = text[:len(text)-1]
	}

	var current *section
	for i, raw := range strings.Split(text, "\n") {
		if i == 0 && strings.HasSuffix(raw, "\r") {
			doc.crlf = true
		}
		l := classifyLine(raw)
		if l.kind == lineSection {
			current = &section{header: l, lineNo: i + 1}
			doc.sections = append(doc.sections, current)
			continue
		}
		if current == nil {
			doc.preamble = append(doc.preamble, l)
		} else {
			current.body = append(current.body, l)
		}
	}
	return doc
}

// bytes serializes the document. Untouched lines are emitted exactly as read.
func (d *document) bytes() []byte {
	var buf bytes.Buffer
	first := true
	emit := func(l line) {
		if !first {
			buf.WriteByte('\n')
		}
		first = false
		buf.WriteString(l.raw)
	}

	for _, l := range d.preamble {
		emit(l)
	}
	for _, s := range d.sections {
		emit(s.header)
		for _, l := range s.body {
			emit(l)
		}
	}
	if !first && d.trailingNewline {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func (d *document) isEmpty() bool {
	return len(d.preamble) == 0 && len(d.sections) == 0
}

// newLine builds a line using the document's line ending convention.
func (d *document) newLine(text string) line {
	if d.crlf {
		return classifyLine(text + "\r")
	}
	return classifyLine(text)
}

// findSection returns the index of the first section named name, or -1.
func (d *document) findSection(name string) int {
	for i, s := range d.sections {
		if s.name() == name {
			return i
		}
	}
	return -1
}

// section returns the authoritative (first) section for name.
func (d *document) section(name string) *section {
	if idx := d.findSection(name); idx >= 0 {
		return d.sections[idx]
	}
	return nil
}

// sectionNames lists every header in file order, duplicates included.
func (d *document) sectionNames() []string {
	names := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		names = append(names, s.name())
	}
	return names
}

// lookup returns the raw value of the first entry for key in the first
// section named sectionName.
func (d *document) lookup(sectionName, key string) (string, bool) {
	s := d.section(sectionName)
	if s == nil {
		return "", false
	}
	idx := s.findKey(key)
	if idx < 0 {
		return "", false
	}
	return s.body[idx].value, true
}

// appendSection adds a new header at EOF, separated from existing content
// by one blank line.
func (d *document) appendSection(name string) *section {
	if last, ok := d.lastLine(); ok && last.kind != lineBlank {
		d.appendAtEnd(d.newLine(""))
	}
	s := &section{header: d.newLine("[" + name + "]")}
	d.sections = append(d.sections, s)
	d.trailingNewline = true
	return s
}

// lastLine returns the final line of the document.
func (d *document) lastLine() (line, bool) {
	if n := len(d.sections); n > 0 {
		s := d.sections[n-1]
		if len(s.body) > 0 {
			return s.body[len(s.body)-1], true
		}
		return s.header, true
	}
	if n := len(d.preamble); n > 0 {
		return d.preamble[n-1], true
	}
	return line{}, false
}

// appendAtEnd appends a line after whatever currently ends the file.
func (d *document) appendAtEnd(l line) {
	if n := len(d.sections); n > 0 {
		d.sections[n-1].body = append(d.sections[n-1].body, l)
	} else {
		d.preamble = append(d.preamble, l)
	}
}

// setEntry makes the first entry for key in the first section named
// sectionName read "key=encoded". The section is created when missing. It
// reports whether the document changed.
func (d *document) setEntry(sectionName, key, encoded string) bool {
	entry := d.newLine(key + "=" + encoded)

	s := d.section(sectionName)
	if s == nil {
		s = d.appendSection(sectionName)
		s.body = append(s.body, entry)
		return true
	}

	if idx := s.findKey(key); idx >= 0 {
		if s.body[idx].raw == entry.raw {
			return false
		}
		s.body[idx] = entry
		return true
	}

	// New keys go right after the last non-blank line of the section so
	// blank separators before the next header stay where they are.
	insertAt := s.lastContent() + 1
	s.body = append(s.body, line{})
	copy(s.body[insertAt+1:], s.body[insertAt:])
	s.body[insertAt] = entry
	if insertAt == len(s.body)-1 && s == d.sections[len(d.sections)-1] {
		d.trailingNewline = true
	}
	return true
}

// removeKey drops every entry for key inside the first section named
// sectionName and returns how many lines were removed.
func (d *document) removeKey(sectionName, key string) int {
	s := d.section(sectionName)
	if s == nil {
		return 0
	}
	kept := s.body[:0]
	removed := 0
	for _, l := range s.body {
		if l.kind == lineEntry && l.name == key {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.body = kept
	return removed
}

// removeSection drops the first header named name together with its body.
func (d *document) removeSection(name string) bool {
	idx := d.findSection(name)
	if idx < 0 {
		return false
	}
	wasLast := idx == len(d.sections)-1
	d.sections = append(d.sections[:idx], d.sections[idx+1:]...)
	if wasLast {
		// Drop the blank separator appendSection put before the header.
		d.trimTrailingBlanks()
	}
	return true
}

func (d *document) trimTrailingBlanks() {
	body := &d.preamble
	if n := len(d.sections); n > 0 {
		body = &d.sections[n-1].body
	}
	lines := *body
	for len(lines) > 0 && lines[len(lines)-1].kind == lineBlank {
		lines = lines[:len(lines)-1]
	}
	*body = lines
	if d.isEmpty() {
		d.trailingNewline = false
	}
}
