// replacer.go: Atomic file replacement
//
// Every mutation writes the complete new file to a temporary file in the
// target's directory and renames it over the target. Readers therefore see
// either the old or the new content, never a partial write.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TempFile is a handle to a temporary file produced by a Replacer.
type TempFile interface {
	io.Writer
	Name() string
}

// Replacer creates temporary files and atomically swaps them into place.
// Tests substitute implementations that fail on demand.
type Replacer interface {
	// CreateTemp opens a new temporary file suitable for replacing target.
	CreateTemp(target string) (TempFile, error)
	// Commit makes tmp the new content of target.
	Commit(tmp TempFile, target string) error
	// Discard removes a temporary file that will not be committed.
	Discard(tmp TempFile) error
}

// FileReplacer is the default Replacer: temp file in the same directory,
// fsync, permission copy and rename.
type FileReplacer struct {
	// Mode is applied to newly created targets. Existing targets keep
	// their current permissions.
	Mode os.FileMode
}

// NewFileReplacer returns a FileReplacer creating new files with mode.
func NewFileReplacer(mode os.FileMode) *FileReplacer {
	if mode == 0 {
		mode = defaultFileMode
	}
	return &FileReplacer{Mode: mode}
}

type osTempFile struct {
	f *os.File
}

func (t *osTempFile) Write(p []byte) (int, error) { return t.f.Write(p) }
func (t *osTempFile) Name() string                { return t.f.Name() }

// CreateTemp creates ".<base>.tmp-*" next to target so the final rename
// never crosses a filesystem boundary.
func (r *FileReplacer) CreateTemp(target string) (TempFile, error) {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &osTempFile{f: f}, nil
}

// Commit flushes tmp to disk and renames it over target.
func (r *FileReplacer) Commit(tmp TempFile, target string) error {
	t, ok := tmp.(*osTempFile)
	if !ok {
		return fmt.Errorf("temp file %q was not created by FileReplacer", tmp.Name())
	}

	if err := t.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := t.f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	mode := r.Mode
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(t.f.Name(), mode); err != nil {
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}

	if err := os.Rename(t.f.Name(), target); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Discard closes and removes tmp. It is safe to call after a failed Commit.
func (r *FileReplacer) Discard(tmp TempFile) error {
	if t, ok := tmp.(*osTempFile); ok {
		_ = t.f.Close()
	}
	if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}
