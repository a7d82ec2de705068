// path_validation.go: File path hardening for store operations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
)

const (
	maxPathLength = 4096
	maxPathDepth  = 64
)

// ValidatePath rejects paths that cannot safely name an INI file: empty
// paths, embedded NUL or control characters, encoded traversal sequences,
// kernel pseudo filesystems and Windows device names.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(ErrCodeInvalidPath, "empty path not allowed")
	}

	if len(path) > maxPathLength {
		return errors.New(ErrCodeInvalidPath,
			fmt.Sprintf("path too long (max %d characters): %d", maxPathLength, len(path)))
	}

	if strings.Contains(path, "\x00") {
		return errors.New(ErrCodeInvalidPath, "null byte in path not allowed")
	}

	for _, char := range path {
		if char < 32 {
			return errors.New(ErrCodeInvalidPath,
				fmt.Sprintf("control character in path not allowed: %d", char))
		}
	}

	lower := strings.ToLower(path)
	for _, pattern := range []string{"%2e%2e", "%252e", "%2f", "%252f", "%5c", "%255c", "%00"} {
		if strings.Contains(lower, pattern) {
			return errors.New(ErrCodeInvalidPath, "path contains URL-encoded traversal pattern: "+pattern).
				WithContext("path", path)
		}
	}

	slashed := filepath.ToSlash(filepath.Clean(path))
	for _, prefix := range []string{"/proc/", "/sys/", "/dev/"} {
		if strings.HasPrefix(slashed+"/", prefix) {
			return errors.New(ErrCodeInvalidPath, "access to system pseudo filesystem not allowed: "+prefix).
				WithContext("path", path)
		}
	}

	if strings.Count(slashed, "/") > maxPathDepth {
		return errors.New(ErrCodeInvalidPath,
			fmt.Sprintf("path too complex (max %d directory levels)", maxPathDepth))
	}

	base := strings.ToUpper(filepath.Base(path))
	if dot := strings.IndexByte(base, '.'); dot != -1 {
		base = base[:dot]
	}
	switch base {
	case "CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9":
		return errors.New(ErrCodeInvalidPath, "windows device name not allowed: "+base)
	}

	return nil
}
