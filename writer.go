// writer.go: Upsert, removal and array operations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

// Write sets key to value in the first section named section, creating the
// file, its parent directories and the section as needed. Values that need
// it are quoted on disk. Writing a value equal to the stored one leaves the
// file untouched.
func (s *Store) Write(path, section, key, value string) error {
	if err := validateSectionAndKey(section, key, s.policy); err != nil {
		return err
	}
	if err := validateValue(value, s.policy); err != nil {
		return err
	}
	return s.upsert(path, section, key, encodeValue(value), EventWrite, value)
}

// SetArrayValue stores values as one comma separated scalar. Elements that
// are empty or contain whitespace, ',' or '"' are quoted, and '\' and '"'
// are backslash-escaped. Use GetArrayValue to split it again.
func (s *Store) SetArrayValue(path, section, key string, values ...string) error {
	if err := validateSectionAndKey(section, key, s.policy); err != nil {
		return err
	}
	scalar := encodeArray(values)
	if err := validateValue(scalar, s.policy); err != nil {
		return err
	}
	return s.upsert(path, section, key, encodeValue(scalar), EventSetArray, values)
}

// GetArrayValue reads a value written by SetArrayValue and splits it on
// top-level commas. found is false when the section or key is absent.
func (s *Store) GetArrayValue(path, section, key string) ([]string, bool, error) {
	scalar, found, err := s.Read(path, section, key)
	if err != nil || !found {
		return nil, found, err
	}
	return decodeArray(scalar), true, nil
}

func (s *Store) upsert(path, section, key, encoded, event string, auditValue interface{}) error {
	unlock := s.lock(path)
	defer unlock()

	doc, exists, err := s.load(path, true)
	if err != nil {
		return err
	}
	if err := s.checkDuplicates(path, doc, section); err != nil {
		return err
	}

	oldRaw, hadOld := doc.lookup(section, key)
	if !doc.setEntry(section, key, encoded) && exists {
		return nil
	}

	if err := s.commit(path, doc); err != nil {
		return err
	}

	var oldValue interface{}
	if hadOld {
		oldValue = decodeValue(oldRaw)
	}
	s.audit.LogMutation(event, newOperationID(), path, section, key, oldValue, auditValue)
	return nil
}

// RemoveKey deletes every entry for key in the first section named section.
// A missing section is SectionNotFound; a missing key is a no-op that leaves
// the file untouched.
func (s *Store) RemoveKey(path, section, key string) error {
	if err := validateSectionAndKey(section, key, s.policy); err != nil {
		return err
	}

	unlock := s.lock(path)
	defer unlock()

	doc, _, err := s.load(path, false)
	if err != nil {
		return err
	}
	if doc.section(section) == nil {
		return newSectionNotFound(path, section)
	}

	oldRaw, _ := doc.lookup(section, key)
	if doc.removeKey(section, key) == 0 {
		return nil
	}

	if err := s.commit(path, doc); err != nil {
		return err
	}
	s.audit.LogMutation(EventRemoveKey, newOperationID(), path, section, key, decodeValue(oldRaw), nil)
	return nil
}

// RemoveSection deletes the first header named section and its body up to
// the next header. Removing a missing section, or from a missing file, is a
// no-op.
func (s *Store) RemoveSection(path, section string) error {
	if err := validateName(kindSection, section, s.policy); err != nil {
		return err
	}

	unlock := s.lock(path)
	defer unlock()

	doc, exists, err := s.load(path, true)
	if err != nil || !exists {
		return err
	}

	var removedKeys []string
	if sec := doc.section(section); sec != nil {
		removedKeys = sec.keys()
	}
	if !doc.removeSection(section) {
		return nil
	}

	if err := s.commit(path, doc); err != nil {
		return err
	}
	s.audit.LogMutation(EventRemoveSection, newOperationID(), path, section, "", removedKeys, nil)
	return nil
}
