// lint.go: Structural checks for INI files
//
// The store itself keeps first-match-wins semantics for duplicate headers
// and keys. Lint reports those and other suspicious lines so callers can
// decide whether a file is acceptable.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"fmt"
	"strings"
)

// LintRule identifies the check that produced a LintIssue.
type LintRule string

const (
	RuleDuplicateSection LintRule = "duplicate_section"
	RuleDuplicateKey     LintRule = "duplicate_key"
	RuleUnparsedLine     LintRule = "unparsed_line"
	RuleOrphanEntry      LintRule = "entry_outside_section"
	RuleInvalidName      LintRule = "invalid_name"
)

// LintIssue is one finding, anchored to a 1-based line number.
type LintIssue struct {
	Line    int      `json:"line"`
	Rule    LintRule `json:"rule"`
	Section string   `json:"section,omitempty"`
	Key     string   `json:"key,omitempty"`
	Message string   `json:"message"`
}

func (i LintIssue) String() string {
	return fmt.Sprintf("line %d: [%s] %s", i.Line, i.Rule, i.Message)
}

// LintReport collects every issue found in one file.
type LintReport struct {
	Path     string      `json:"path"`
	Sections int         `json:"sections"`
	Entries  int         `json:"entries"`
	Issues   []LintIssue `json:"issues"`
}

// Valid reports whether the file produced no issues.
func (r *LintReport) Valid() bool {
	return len(r.Issues) == 0
}

// String renders the report one issue per line.
func (r *LintReport) String() string {
	if r.Valid() {
		return fmt.Sprintf("%s: ok (%d sections, %d entries)", r.Path, r.Sections, r.Entries)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d issue(s)", r.Path, len(r.Issues))
	for _, issue := range r.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.String())
	}
	return b.String()
}

func (r *LintReport) add(lineNo int, rule LintRule, section, key, msg string) {
	r.Issues = append(r.Issues, LintIssue{
		Line:    lineNo,
		Rule:    rule,
		Section: section,
		Key:     key,
		Message: msg,
	})
}

// Lint checks path for duplicate headers, duplicate keys inside one
// section block, unparsable lines, entries before the first header and
// names the store's policy would refuse to write.
func (s *Store) Lint(path string) (*LintReport, error) {
	doc, _, err := s.load(path, false)
	if err != nil {
		return nil, err
	}

	report := &LintReport{Path: path, Sections: len(doc.sections), Issues: []LintIssue{}}

	for i, l := range doc.preamble {
		switch l.kind {
		case lineEntry:
			report.Entries++
			report.add(i+1, RuleOrphanEntry, "", l.name,
				fmt.Sprintf("entry '%s' appears before any section header", l.name))
		case lineOther:
			report.add(i+1, RuleUnparsedLine, "", "", "line is neither a header, an entry nor a comment")
		}
	}

	firstHeader := make(map[string]int)
	for _, sec := range doc.sections {
		name := sec.name()
		if first, dup := firstHeader[name]; dup {
			report.add(sec.lineNo, RuleDuplicateSection, name, "",
				fmt.Sprintf("section '%s' already declared on line %d; this block is ignored", name, first))
		} else {
			firstHeader[name] = sec.lineNo
		}
		if err := validateName(kindSection, name, s.policy); err != nil {
			report.add(sec.lineNo, RuleInvalidName, name, "", err.Error())
		}

		firstKey := make(map[string]int)
		for j, l := range sec.body {
			lineNo := sec.lineNo + 1 + j
			switch l.kind {
			case lineEntry:
				report.Entries++
				if first, dup := firstKey[l.name]; dup {
					report.add(lineNo, RuleDuplicateKey, name, l.name,
						fmt.Sprintf("key '%s' already set on line %d; this entry is shadowed", l.name, first))
				} else {
					firstKey[l.name] = lineNo
				}
				if err := validateName(kindKey, l.name, s.policy); err != nil {
					report.add(lineNo, RuleInvalidName, name, l.name, err.Error())
				}
			case lineOther:
				report.add(lineNo, RuleUnparsedLine, name, "", "line is neither a header, an entry nor a comment")
			}
		}
	}

	return report, nil
}
