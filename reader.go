// reader.go: Read and listing operations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import "iter"

// Read returns the value of key in the first section named section. found
// is false when the section or key is absent. Surrounding whitespace is
// trimmed and a double-quoted value is unquoted.
func (s *Store) Read(path, section, key string) (value string, found bool, err error) {
	if err := validateSectionAndKey(section, key, s.policy); err != nil {
		return "", false, err
	}

	doc, _, err := s.load(path, false)
	if err != nil {
		return "", false, err
	}

	raw, ok := doc.lookup(section, key)
	if !ok {
		return "", false, nil
	}
	return decodeValue(raw), true, nil
}

// Get is Read with absence reported as SectionNotFound or KeyNotFound.
func (s *Store) Get(path, section, key string) (string, error) {
	if err := validateSectionAndKey(section, key, s.policy); err != nil {
		return "", err
	}

	doc, _, err := s.load(path, false)
	if err != nil {
		return "", err
	}

	if doc.section(section) == nil {
		return "", newSectionNotFound(path, section)
	}
	raw, ok := doc.lookup(section, key)
	if !ok {
		return "", newKeyNotFound(path, section, key)
	}
	return decodeValue(raw), nil
}

// SectionExists reports whether at least one header named section exists.
func (s *Store) SectionExists(path, section string) (bool, error) {
	if err := validateName(kindSection, section, s.policy); err != nil {
		return false, err
	}

	doc, _, err := s.load(path, false)
	if err != nil {
		return false, err
	}
	return doc.section(section) != nil, nil
}

// ListSections returns every section header in file order, duplicates
// included.
func (s *Store) ListSections(path string) ([]string, error) {
	doc, _, err := s.load(path, false)
	if err != nil {
		return nil, err
	}
	return doc.sectionNames(), nil
}

// ListKeys returns the keys of the first section named section in file
// order, once per occurrence.
func (s *Store) ListKeys(path, section string) ([]string, error) {
	if err := validateName(kindSection, section, s.policy); err != nil {
		return nil, err
	}

	doc, _, err := s.load(path, false)
	if err != nil {
		return nil, err
	}

	sec := doc.section(section)
	if sec == nil {
		return nil, newSectionNotFound(path, section)
	}
	return sec.keys(), nil
}

// Sections returns a lazy sequence of every header in file order,
// duplicates included. The file is read when iteration starts, so each range
// over the sequence restarts from the current content. A load failure is
// yielded once as ("", err).
func (s *Store) Sections(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		doc, _, err := s.load(path, false)
		if err != nil {
			yield("", err)
			return
		}
		for _, sec := range doc.sections {
			if !yield(sec.name(), nil) {
				return
			}
		}
	}
}

// EachSection calls fn for every header in file order until fn returns
// false.
func (s *Store) EachSection(path string, fn func(name string) bool) error {
	for name, err := range s.Sections(path) {
		if err != nil {
			return err
		}
		if !fn(name) {
			return nil
		}
	}
	return nil
}
