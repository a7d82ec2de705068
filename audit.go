// audit.go: Audit trail for INI mutations
//
// Every write, key removal and section removal performed through a Store
// can be recorded with the previous and new value, an operation id and a
// SHA-256 checksum for tamper detection.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
	AuditSecurity
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	case AuditSecurity:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// Audit event names recorded by the store
const (
	EventWrite         = "ini_write"
	EventRemoveKey     = "ini_remove_key"
	EventRemoveSection = "ini_remove_section"
	EventSetArray      = "ini_set_array"
	EventFileChanged   = "ini_file_changed"
	EventRejectedPath  = "ini_rejected_path"
)

// AuditEvent represents a single auditable event
type AuditEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	Level       AuditLevel             `json:"level"`
	Event       string                 `json:"event"`
	Component   string                 `json:"component"`
	OperationID string                 `json:"operation_id,omitempty"`
	FilePath    string                 `json:"file_path,omitempty"`
	Section     string                 `json:"section,omitempty"`
	Key         string                 `json:"key,omitempty"`
	OldValue    interface{}            `json:"old_value,omitempty"`
	NewValue    interface{}            `json:"new_value,omitempty"`
	ProcessID   int                    `json:"process_id"`
	ProcessName string                 `json:"process_name"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Checksum    string                 `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled       bool          `json:"enabled"`
	OutputFile    string        `json:"output_file"`
	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
}

// DefaultAuditConfig returns an enabled audit configuration backed by the
// shared SQLite database. Use an OutputFile ending in ".jsonl" for a JSON
// lines log or in ".db" for a dedicated SQLite file.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    "",
		MinLevel:      AuditInfo,
		BufferSize:    100,
		FlushInterval: 5 * time.Second,
	}
}

// AuditLogger buffers audit events and flushes them to a backend in batches.
// A nil *AuditLogger is valid and discards everything.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
	processID   int
	processName string
}

// NewAuditLogger creates an audit logger with automatic backend selection.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidAuditConfig, "failed to initialize audit backend")
	}

	logger := &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, max(config.BufferSize, 1)),
		stopCh:      make(chan struct{}),
		processID:   os.Getpid(),
		processName: getProcessName(),
	}

	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records an audit event
func (al *AuditLogger) Log(event AuditEvent) {
	if al == nil || al.backend == nil || !al.config.Enabled || event.Level < al.config.MinLevel {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = timecache.CachedTime()
	}
	if event.Component == "" {
		event.Component = "inistore"
	}
	event.ProcessID = al.processID
	event.ProcessName = al.processName
	event.Checksum = al.generateChecksum(event)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, event)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // Ignore flush errors during buffering to maintain performance
	}
	al.bufferMu.Unlock()
}

// LogMutation records a change to one entry or section of an INI file.
func (al *AuditLogger) LogMutation(event, operationID, filePath, section, key string, oldVal, newVal interface{}) {
	al.Log(AuditEvent{
		Level:       AuditCritical,
		Event:       event,
		OperationID: operationID,
		FilePath:    filePath,
		Section:     section,
		Key:         key,
		OldValue:    oldVal,
		NewValue:    newVal,
	})
}

// LogFileWatch logs file watch events
func (al *AuditLogger) LogFileWatch(event, filePath string) {
	al.Log(AuditEvent{Level: AuditInfo, Event: event, FilePath: filePath})
}

// LogSecurityEvent logs security-related events
func (al *AuditLogger) LogSecurityEvent(event, details string, context map[string]interface{}) {
	if context == nil {
		context = make(map[string]interface{}, 1)
	}
	context["details"] = details
	al.Log(AuditEvent{Level: AuditSecurity, Event: event, Context: context})
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	if al == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// Stats reports what the backend has stored so far. Buffered events are
// flushed first so they are counted.
func (al *AuditLogger) Stats() (*AuditDatabaseStats, error) {
	if al == nil || al.backend == nil {
		return nil, errors.New(ErrCodeAuditDisabled, "audit logging not enabled")
	}
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.GetStats()
}

// Maintenance flushes pending events, then prunes entries older than the
// retention window and compacts the backend.
func (al *AuditLogger) Maintenance() error {
	if al == nil || al.backend == nil {
		return errors.New(ErrCodeAuditDisabled, "audit logging not enabled")
	}
	if err := al.Flush(); err != nil {
		return err
	}
	return al.backend.Maintenance()
}

// Close gracefully shuts down the audit logger. It is safe to call twice.
func (al *AuditLogger) Close() error {
	if al == nil {
		return nil
	}

	var closeErr error
	al.closeOnce.Do(func() {
		close(al.stopCh)
		if al.flushTicker != nil {
			al.flushTicker.Stop()
		}

		if err := al.Flush(); err != nil {
			closeErr = fmt.Errorf("failed to flush audit logger during close: %w", err)
			return
		}

		if al.backend != nil {
			if err := al.backend.Close(); err != nil {
				closeErr = fmt.Errorf("failed to close audit backend: %w", err)
			}
		}
	})
	return closeErr
}

// flushLoop runs the background flush process
func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush() // Ignore flush errors in background process
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes buffer to backend storage (caller must hold bufferMu).
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}

	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}

	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func (al *AuditLogger) generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s:%v:%v",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Event, event.Component, event.FilePath, event.Section, event.Key,
		event.OldValue, event.NewValue)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func getProcessName() string {
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "inistore"
}
