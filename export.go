// export.go: Ordered snapshots and format conversion
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// Entry is one key and its decoded value.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SnapshotSection is the authoritative view of one section name.
type SnapshotSection struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Snapshot is a first-match-wins view of a file: each section name appears
// once, in first-seen order, holding the keys of its first block with the
// value of each key's first occurrence.
type Snapshot struct {
	Path     string
	Sections []SnapshotSection
}

// Section returns the named section, or nil.
func (sn *Snapshot) Section(name string) *SnapshotSection {
	for i := range sn.Sections {
		if sn.Sections[i].Name == name {
			return &sn.Sections[i]
		}
	}
	return nil
}

// Lookup returns the value of key in section.
func (sn *Snapshot) Lookup(section, key string) (string, bool) {
	sec := sn.Section(section)
	if sec == nil {
		return "", false
	}
	for _, e := range sec.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Map flattens the snapshot into nested maps. Order is lost.
func (sn *Snapshot) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(sn.Sections))
	for _, sec := range sn.Sections {
		values := make(map[string]string, len(sec.Entries))
		for _, e := range sec.Entries {
			values[e.Key] = e.Value
		}
		out[sec.Name] = values
	}
	return out
}

func snapshotOf(path string, doc *document) *Snapshot {
	sn := &Snapshot{Path: path, Sections: []SnapshotSection{}}
	seen := make(map[string]struct{})
	for _, sec := range doc.sections {
		name := sec.name()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		entries := []Entry{}
		keys := make(map[string]struct{})
		for _, l := range sec.body {
			if l.kind != lineEntry {
				continue
			}
			if _, dup := keys[l.name]; dup {
				continue
			}
			keys[l.name] = struct{}{}
			entries = append(entries, Entry{Key: l.name, Value: decodeValue(l.value)})
		}
		sn.Sections = append(sn.Sections, SnapshotSection{Name: name, Entries: entries})
	}
	return sn
}

// Snapshot reads path into an ordered, deduplicated view.
func (s *Store) Snapshot(path string) (*Snapshot, error) {
	doc, _, err := s.load(path, false)
	if err != nil {
		return nil, err
	}
	return snapshotOf(path, doc), nil
}

// ExportFormat names an output format for Export.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
	FormatTOML ExportFormat = "toml"
	FormatINI  ExportFormat = "ini"
)

// ExportFormats lists the formats Export accepts.
func ExportFormats() []ExportFormat {
	return []ExportFormat{FormatJSON, FormatYAML, FormatTOML, FormatINI}
}

// ParseExportFormat accepts a format name case-insensitively; "yml" is an
// alias for yaml.
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "ini":
		return FormatINI, nil
	default:
		return "", errors.New(ErrCodeInvalidConfig, "unsupported export format").
			WithContext("format", name)
	}
}

// Export writes the snapshot of path to w in format.
func (s *Store) Export(path string, format ExportFormat, w io.Writer) error {
	sn, err := s.Snapshot(path)
	if err != nil {
		return err
	}
	return sn.Encode(format, w)
}

// Encode writes the snapshot to w in format.
func (sn *Snapshot) Encode(format ExportFormat, w io.Writer) error {
	var err error
	switch format {
	case FormatJSON:
		err = sn.encodeJSON(w)
	case FormatYAML:
		err = sn.encodeYAML(w)
	case FormatTOML:
		err = sn.encodeTOML(w)
	case FormatINI:
		err = sn.encodeINI(w)
	default:
		return errors.New(ErrCodeInvalidConfig, "unsupported export format").
			WithContext("format", string(format))
	}
	if err != nil {
		return errors.Wrap(err, ErrCodeIOError, "failed to export snapshot").
			WithContext("format", string(format)).
			WithContext("path", sn.Path)
	}
	return nil
}

// MarshalJSON encodes the snapshot as one object per section, keeping file
// order for both sections and keys.
func (sn *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range sn.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(sec.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(":{")
		for j, e := range sec.Entries {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(e.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (sn *Snapshot) encodeJSON(w io.Writer) error {
	raw, err := sn.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

func strNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// encodeYAML builds the node tree by hand so mapping order follows the file
// and every value stays a string.
func (sn *Snapshot) encodeYAML(w io.Writer) error {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, sec := range sn.Sections {
		body := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range sec.Entries {
			body.Content = append(body.Content, strNode(e.Key), strNode(e.Value))
		}
		root.Content = append(root.Content, strNode(sec.Name), body)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return err
	}
	return enc.Close()
}

// encodeTOML encodes one table at a time so tables keep file order. The
// encoder sorts keys inside each table.
func (sn *Snapshot) encodeTOML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, sec := range sn.Sections {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		values := make(map[string]string, len(sec.Entries))
		for _, e := range sec.Entries {
			values[e.Key] = e.Value
		}
		enc := toml.NewEncoder(bw)
		enc.Indent = ""
		if err := enc.Encode(map[string]map[string]string{sec.Name: values}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// encodeINI writes a normalized file: no comments, no duplicates, one blank
// line between sections, values quoted the way Write quotes them.
func (sn *Snapshot) encodeINI(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, sec := range sn.Sections {
		if i > 0 {
			_ = bw.WriteByte('\n')
		}
		fmt.Fprintf(bw, "[%s]\n", sec.Name)
		for _, e := range sec.Entries {
			fmt.Fprintf(bw, "%s=%s\n", e.Key, encodeValue(e.Value))
		}
	}
	return bw.Flush()
}
