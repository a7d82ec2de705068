// store.go: The INI Store
//
// A Store holds no file content between calls. Every operation parses the
// file into a transient document, and mutations commit a complete
// replacement through the configured Replacer.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	goerrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/agilira/go-errors"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Store reads and mutates INI files. It is safe for concurrent use;
// mutations of the same path through one Store are serialized.
type Store struct {
	config   Config
	policy   Policy
	replacer Replacer
	audit    *AuditLogger

	// locks maps a cleaned absolute path to its writer mutex
	locks *xsync.MapOf[string, *sync.Mutex]
}

// New builds a Store from config. Unset modes, debounce and replacer are
// defaulted; an enabled audit configuration opens the audit backend.
func New(config Config) (*Store, error) {
	cfg := config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		config:   *cfg,
		policy:   cfg.Policy(),
		replacer: cfg.Replacer,
		locks:    xsync.NewMapOf[string, *sync.Mutex](),
	}

	if cfg.Audit.Enabled {
		logger, err := NewAuditLogger(cfg.Audit)
		if err != nil {
			return nil, err
		}
		s.audit = logger
	}
	return s, nil
}

// NewDefault returns a Store with DefaultConfig.
func NewDefault() *Store {
	s, err := New(DefaultConfig())
	if err != nil {
		// DefaultConfig always validates and never enables audit
		panic(err)
	}
	return s
}

// Config returns the effective configuration.
func (s *Store) Config() Config {
	return s.config
}

// AuditLogger returns the audit logger, or nil when auditing is disabled.
func (s *Store) AuditLogger() *AuditLogger {
	return s.audit
}

// Close flushes and closes the audit trail.
func (s *Store) Close() error {
	return s.audit.Close()
}

// lock acquires the writer mutex for path and returns its release.
func (s *Store) lock(path string) func() {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}
	mu, _ := s.locks.LoadOrCompute(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}

// checkPath validates path and records rejections in the audit trail.
func (s *Store) checkPath(path string) error {
	if err := ValidatePath(path); err != nil {
		s.audit.LogSecurityEvent(EventRejectedPath, err.Error(), map[string]interface{}{
			"path": path,
		})
		return err
	}
	return nil
}

// load parses path. A missing file yields FileNotFound unless
// missingOK, in which case an empty document is returned with exists=false.
func (s *Store) load(path string, missingOK bool) (doc *document, exists bool, err error) {
	if err := s.checkPath(path); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path validated by checkPath
	if err != nil {
		if goerrors.Is(err, fs.ErrNotExist) {
			if missingOK {
				return parseDocument(nil), false, nil
			}
			return nil, false, newFileNotFound(path, err)
		}
		return nil, false, wrapIO(err, path, "failed to read file")
	}
	return parseDocument(data), true, nil
}

// commit writes doc to a temp file and swaps it over path. The original is
// left untouched and the temp file removed on any failure.
func (s *Store) commit(path string, doc *document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, s.config.DirMode); err != nil {
			return wrapIO(err, path, "failed to create parent directory")
		}
	}

	tmp, err := s.replacer.CreateTemp(path)
	if err != nil {
		return wrapIO(err, path, "failed to create temporary file")
	}

	if _, err := tmp.Write(doc.bytes()); err != nil {
		_ = s.replacer.Discard(tmp)
		return wrapIO(err, path, "failed to write temporary file")
	}

	if err := s.replacer.Commit(tmp, path); err != nil {
		_ = s.replacer.Discard(tmp)
		return wrapIO(err, path, "failed to replace file")
	}
	return nil
}

// checkDuplicates enforces RejectDuplicates for one target section.
func (s *Store) checkDuplicates(path string, doc *document, sectionName string) error {
	if !s.config.RejectDuplicates {
		return nil
	}

	headers := 0
	for _, sec := range doc.sections {
		if sec.name() == sectionName {
			headers++
		}
	}
	if headers > 1 {
		return errors.New(ErrCodeDuplicate, "section '"+sectionName+"' is declared more than once").
			WithContext("path", path).
			WithContext("section", sectionName)
	}

	if sec := doc.section(sectionName); sec != nil {
		seen := make(map[string]struct{})
		for _, key := range sec.keys() {
			if _, dup := seen[key]; dup {
				return errors.New(ErrCodeDuplicate, "key '"+key+"' appears more than once in section '"+sectionName+"'").
					WithContext("path", path).
					WithContext("section", sectionName).
					WithContext("key", key)
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}

func newOperationID() string {
	return uuid.NewString()
}
