// ini_validation.go: Name and value validation for INI sections and keys
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: AGILira System Libraries
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"strings"
	"unicode"

	"github.com/agilira/go-errors"
)

// Policy controls which section names, keys and values are accepted.
type Policy struct {
	// Strict forbids '[', ']' and '=' in names.
	Strict bool `json:"strict"`
	// AllowSpacesInNames permits whitespace inside names.
	AllowSpacesInNames bool `json:"allow_spaces_in_names"`
	// AllowEmptyValues permits writing "key=".
	AllowEmptyValues bool `json:"allow_empty_values"`
}

// nameKind labels what is being validated in error context.
type nameKind string

const (
	kindSection nameKind = "section"
	kindKey     nameKind = "key"
)

func validationError(kind nameKind, name, rule, msg string) error {
	return errors.New(ErrCodeValidation, "invalid "+string(kind)+" name: "+msg).
		WithContext("kind", string(kind)).
		WithContext("name", name).
		WithContext("rule", rule)
}

// validateName checks a section or key name against the policy. Control
// characters are rejected under every policy because a name must fit on one
// line of the file.
func validateName(kind nameKind, name string, p Policy) error {
	if name == "" {
		return validationError(kind, name, "empty", "name cannot be empty")
	}

	for _, char := range name {
		if char == '\x00' {
			return validationError(kind, name, "control", "null byte not allowed")
		}
		if char == '\n' || char == '\r' {
			return validationError(kind, name, "control", "line break not allowed")
		}
		if char < 32 && char != '\t' {
			return validationError(kind, name, "control", "control character not allowed")
		}
		if !unicode.IsPrint(char) && !unicode.IsSpace(char) {
			return validationError(kind, name, "control", "non-printable character not allowed")
		}
	}

	if p.Strict && strings.ContainsAny(name, "[]=") {
		return validationError(kind, name, "strict", "'[', ']' and '=' are not allowed")
	}

	if !p.AllowSpacesInNames && strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return validationError(kind, name, "whitespace", "whitespace is not allowed")
	}

	// The rest holds under every policy: a name must read back unchanged.
	if strings.TrimSpace(name) != name {
		return validationError(kind, name, "padding", "leading or trailing whitespace is not allowed")
	}

	switch name[0] {
	case '#', ';':
		return validationError(kind, name, "comment", "name cannot start with a comment marker")
	case '[':
		// "[k=...]" would parse as a header for some values
		if kind == kindKey {
			return validationError(kind, name, "header", "key cannot start with '['")
		}
	}

	if kind == kindKey && strings.ContainsRune(name, '=') {
		return validationError(kind, name, "separator", "key cannot contain '='")
	}

	if !parsesBack(kind, name) {
		return validationError(kind, name, "roundtrip", "name would not read back unchanged")
	}

	return nil
}

// parsesBack reports whether name survives being written and re-parsed.
func parsesBack(kind nameKind, name string) bool {
	if kind == kindSection {
		l := classifyLine("[" + name + "]")
		return l.kind == lineSection && l.name == name
	}
	l := classifyLine(name + "=x")
	return l.kind == lineEntry && l.name == name
}

// validateSectionAndKey validates both names of an entry reference.
func validateSectionAndKey(section, key string, p Policy) error {
	if err := validateName(kindSection, section, p); err != nil {
		return err
	}
	return validateName(kindKey, key, p)
}

// validateValue rejects values that cannot be stored on a single line and,
// unless the policy allows it, empty values.
func validateValue(value string, p Policy) error {
	if strings.ContainsAny(value, "\r\n") {
		return errors.New(ErrCodeValidation, "invalid value: line breaks are not allowed").
			WithContext("kind", "value").
			WithContext("rule", "multiline")
	}
	if value == "" && !p.AllowEmptyValues {
		return errors.New(ErrCodeEmptyValue, "empty values are not allowed").
			WithContext("rule", "empty")
	}
	return nil
}
