// quoting.go: Value quoting and array encoding
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"strings"
	"unicode"
)

// shellMetaChars are the characters that force a value to be quoted on write,
// in addition to any whitespace.
const shellMetaChars = "\"`&|<>;$"

// needsQuoting reports whether value must be wrapped in double quotes.
func needsQuoting(value string) bool {
	for _, r := range value {
		if unicode.IsSpace(r) || strings.ContainsRune(shellMetaChars, r) {
			return true
		}
	}
	return false
}

// encodeValue returns the on-disk form of value: unchanged when it is plain,
// otherwise wrapped in double quotes with every '"' escaped as '\"'.
func encodeValue(value string) string {
	if !needsQuoting(value) {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}

// decodeValue is the inverse of encodeValue applied to the raw text after
// '='. Surrounding whitespace is trimmed; a double-quoted value loses its
// quotes and has '\"' turned back into '"'.
func decodeValue(raw string) string {
	v := strings.TrimSpace(raw)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return strings.ReplaceAll(v[1:len(v)-1], `\"`, `"`)
	}
	return v
}

// encodeArray joins values into one comma separated scalar. Each element has
// '\' and '"' backslash-escaped; elements that are empty or contain
// whitespace, ',' or '"' are wrapped in double quotes.
func encodeArray(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		escaped := strings.ReplaceAll(v, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		if v == "" || strings.ContainsAny(v, `,"`) || strings.IndexFunc(v, unicode.IsSpace) >= 0 {
			escaped = `"` + escaped + `"`
		}
		parts[i] = escaped
	}
	return strings.Join(parts, ",")
}

// decodeArray splits a scalar produced by encodeArray. Commas inside quotes
// do not split, a backslash escapes the next byte, and unquoted elements are
// trimmed so hand-written "a, b" lists decode as expected.
func decodeArray(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	var (
		out      []string
		cur      strings.Builder
		inQuotes bool
		quoted   bool
	)
	flush := func() {
		v := cur.String()
		if !quoted {
			v = strings.TrimSpace(v)
		}
		out = append(out, v)
		cur.Reset()
		quoted = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
		case c == ',' && !inQuotes:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
