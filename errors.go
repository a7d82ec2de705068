// errors.go: Error codes and inspection helpers for inistore
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	goerrors "errors"
	"strings"

	"github.com/agilira/go-errors"
)

// Error codes for inistore operations
const (
	ErrCodeFileNotFound       = "INI_FILE_NOT_FOUND"
	ErrCodeValidation         = "INI_VALIDATION_ERROR"
	ErrCodeEmptyValue         = "INI_EMPTY_VALUE"
	ErrCodeSectionNotFound    = "INI_SECTION_NOT_FOUND"
	ErrCodeKeyNotFound        = "INI_KEY_NOT_FOUND"
	ErrCodeIOError            = "INI_IO_ERROR"
	ErrCodeDuplicate          = "INI_DUPLICATE"
	ErrCodeInvalidConfig      = "INI_INVALID_CONFIG"
	ErrCodeInvalidPath        = "INI_INVALID_PATH"
	ErrCodeInvalidAuditConfig = "INI_INVALID_AUDIT_CONFIG"
	ErrCodeInvalidBufferSize  = "INI_INVALID_BUFFER_SIZE"
	ErrCodeInvalidFlush       = "INI_INVALID_FLUSH_INTERVAL"
	ErrCodeInvalidOutputFile  = "INI_INVALID_OUTPUT_FILE"
	ErrCodeInvalidFileMode    = "INI_INVALID_FILE_MODE"
	ErrCodeAuditDisabled      = "INI_AUDIT_DISABLED"
	ErrCodeWatchError         = "INI_WATCH_ERROR"
	ErrCodeHelpRequested      = "INI_HELP_REQUESTED"
)

func newFileNotFound(path string, cause error) error {
	if cause == nil {
		return errors.New(ErrCodeFileNotFound, "file does not exist").
			WithContext("path", path)
	}
	return errors.Wrap(cause, ErrCodeFileNotFound, "file does not exist").
		WithContext("path", path)
}

func newSectionNotFound(path, section string) error {
	return errors.New(ErrCodeSectionNotFound, "section '"+section+"' not found").
		WithContext("path", path).
		WithContext("section", section)
}

func newKeyNotFound(path, section, key string) error {
	return errors.New(ErrCodeKeyNotFound, "key '"+key+"' not found in section '"+section+"'").
		WithContext("path", path).
		WithContext("section", section).
		WithContext("key", key)
}

func wrapIO(err error, path, msg string) error {
	return errors.Wrap(err, ErrCodeIOError, msg).WithContext("path", path)
}

// ErrorCode returns the inistore error code carried by err, or "" when err
// was not produced by this package.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return string(coder.ErrorCode())
	}
	return ""
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// IsNotFound reports whether err signals a missing file, section or key.
func IsNotFound(err error) bool {
	switch ErrorCode(err) {
	case ErrCodeFileNotFound, ErrCodeSectionNotFound, ErrCodeKeyNotFound:
		return true
	}
	return false
}

// IsValidationError reports whether err was raised by name or value validation.
func IsValidationError(err error) bool {
	code := ErrorCode(err)
	return code == ErrCodeValidation || code == ErrCodeEmptyValue || code == ErrCodeInvalidPath
}

// IsStoreError checks if an error carries any inistore code
func IsStoreError(err error) bool {
	return strings.HasPrefix(ErrorCode(err), "INI_")
}
