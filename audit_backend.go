// audit_backend.go: Storage backends for the inistore audit trail
//
// Two backends share one interface: a SQLite database (default, queryable,
// schema-versioned) and an append-only JSON lines file selected by a
// ".jsonl" OutputFile.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend abstracts where audit events are persisted.
type auditBackend interface {
	// Write persists a batch of audit events. Implementations must be safe
	// for concurrent use.
	Write(events []AuditEvent) error

	// Flush commits pending writes to stable storage.
	Flush() error

	// Close releases all resources. The backend must not be used afterwards.
	Close() error

	// Maintenance prunes old entries and optimizes storage.
	Maintenance() error

	// GetStats returns event counts and storage information.
	GetStats() (*AuditDatabaseStats, error)
}

// AuditDatabaseStats summarizes the contents of an audit backend.
type AuditDatabaseStats struct {
	Backend        string           `json:"backend"`
	Location       string           `json:"location"`
	TotalEvents    int64            `json:"total_events"`
	EventsByLevel  map[string]int64 `json:"events_by_level"`
	EventsByType   map[string]int64 `json:"events_by_type"`
	FilesTouched   int64            `json:"files_touched"`
	OldestEvent    *time.Time       `json:"oldest_event"`
	NewestEvent    *time.Time       `json:"newest_event"`
	StorageSize    int64            `json:"storage_size_bytes"`
	SchemaVersion  int              `json:"schema_version"`
	RetentionDays  int              `json:"retention_days,omitempty"`
	LastMaintained *time.Time       `json:"last_maintained,omitempty"`
}

func newAuditStats(backend, location string) *AuditDatabaseStats {
	return &AuditDatabaseStats{
		Backend:       backend,
		Location:      location,
		EventsByLevel: make(map[string]int64),
		EventsByType:  make(map[string]int64),
	}
}

// createAuditBackend selects a backend from the OutputFile extension:
// ".jsonl" gives a JSON lines file; anything else uses SQLite, falling back
// to JSON lines when SQLite cannot be opened and an OutputFile was given.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if config.OutputFile != "" && filepath.Ext(config.OutputFile) == ".jsonl" {
		return newJSONLBackend(config.OutputFile)
	}

	backend, err := newSQLiteBackend(config)
	if err == nil {
		return backend, nil
	}

	if config.OutputFile == "" {
		return nil, err
	}

	jsonlBackend, jsonlErr := newJSONLBackend(config.OutputFile + ".jsonl")
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}
	return jsonlBackend, nil
}

// getUnifiedAuditPath returns the shared SQLite database used when no
// dedicated OutputFile is configured.
func getUnifiedAuditPath() string {
	return filepath.Join(os.TempDir(), "inistore", "audit.db")
}

const (
	currentSchemaVersion = 2
	defaultRetentionDays = 90
)

// sqliteAuditBackend stores events in a WAL-mode SQLite database.
type sqliteAuditBackend struct {
	db         *sql.DB
	dbPath     string
	insertStmt *sql.Stmt
	mu         sync.RWMutex
	closed     bool
	maintained *time.Time
}

func newSQLiteBackend(config AuditConfig) (*sqliteAuditBackend, error) {
	dbPath := getUnifiedAuditPath()
	if config.OutputFile != "" {
		dbPath = config.OutputFile
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}

	db, err := openSQLiteDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	backend := &sqliteAuditBackend{db: db, dbPath: dbPath}

	if err := backend.ensureSchemaVersion(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit database schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare audit database statements: %w", err)
	}

	// Maintenance failures never block opening the trail.
	_ = backend.Maintenance()

	return backend, nil
}

// openSQLiteDatabase opens the database with WAL journaling so readers never
// block the writer, and a busy timeout for multi-process access.
func openSQLiteDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=1000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	return db, nil
}

// ensureSchemaVersion creates or migrates the schema:
//   - v1: audit_events table with basic indexes
//   - v2: per-file and per-operation indexes
func (s *sqliteAuditBackend) ensureSchemaVersion() error {
	if _, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("failed to create schema_info table: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_info ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check schema version: %w", err)
		}
		version = 0
	}

	if version >= currentSchemaVersion {
		return nil
	}

	if err := s.migrateSchema(version, currentSchemaVersion); err != nil {
		return fmt.Errorf("schema migration from v%d to v%d failed: %w", version, currentSchemaVersion, err)
	}

	if _, err := s.db.Exec(`
		INSERT OR REPLACE INTO schema_info (version, updated_at)
		VALUES (?, CURRENT_TIMESTAMP)
	`, currentSchemaVersion); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}

// migrateSchema applies migrations oldVersion+1..newVersion in one transaction.
func (s *sqliteAuditBackend) migrateSchema(oldVersion, newVersion int) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for version := oldVersion; version < newVersion; version++ {
		switch version {
		case 0:
			err = migrateToV1(tx)
		case 1:
			err = migrateToV2(tx)
		default:
			err = fmt.Errorf("unknown migration path from version %d", version)
		}
		if err != nil {
			return fmt.Errorf("migration to v%d failed: %w", version+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}
	return nil
}

func migrateToV1(tx *sql.Tx) error {
	if _, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		level TEXT NOT NULL,
		event TEXT NOT NULL,
		component TEXT NOT NULL,
		operation_id TEXT,

		-- INI location
		file_path TEXT,
		section TEXT,
		ini_key TEXT,
		old_value TEXT,
		new_value TEXT,

		process_id INTEGER NOT NULL,
		process_name TEXT NOT NULL,

		context TEXT, -- JSON blob for flexible metadata
		checksum TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("failed to create audit_events table: %w", err)
	}

	for _, indexSQL := range []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_audit_level ON audit_events(level)",
		"CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_events(event)",
		"CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_events(created_at)",
	} {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create basic index: %w", err)
		}
	}
	return nil
}

func migrateToV2(tx *sql.Tx) error {
	for _, indexSQL := range []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_file_section ON audit_events(file_path, section, ini_key)",
		"CREATE INDEX IF NOT EXISTS idx_audit_operation ON audit_events(operation_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_event_time ON audit_events(event, timestamp)",
	} {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create composite index: %w", err)
		}
	}
	return nil
}

func (s *sqliteAuditBackend) prepareStatements() error {
	stmt, err := s.db.Prepare(`
	INSERT INTO audit_events (
		timestamp, level, event, component, operation_id,
		file_path, section, ini_key, old_value, new_value,
		process_id, process_name, context, checksum
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	s.insertStmt = stmt
	return nil
}

func (s *sqliteAuditBackend) Write(events []AuditEvent) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("cannot write to closed SQLite audit backend")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txStmt := tx.Stmt(s.insertStmt)
	defer func() { _ = txStmt.Close() }()

	for _, event := range events {
		if err = insertEvent(txStmt, event); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}
	return nil
}

// jsonText serializes v for a TEXT column; nil becomes "".
func jsonText(v interface{}, field string) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s: %w", field, err)
	}
	return string(data), nil
}

func insertEvent(stmt *sql.Stmt, event AuditEvent) error {
	oldValue, err := jsonText(event.OldValue, "old_value")
	if err != nil {
		return err
	}
	newValue, err := jsonText(event.NewValue, "new_value")
	if err != nil {
		return err
	}
	var context string
	if len(event.Context) > 0 {
		if context, err = jsonText(event.Context, "context"); err != nil {
			return err
		}
	}

	_, err = stmt.Exec(
		event.Timestamp.Format(time.RFC3339Nano),
		event.Level.String(),
		event.Event,
		event.Component,
		event.OperationID,
		event.FilePath,
		event.Section,
		event.Key,
		oldValue,
		newValue,
		event.ProcessID,
		event.ProcessName,
		context,
		event.Checksum,
	)
	return err
}

func (s *sqliteAuditBackend) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to flush SQLite audit backend: %w", err)
	}
	return nil
}

// Maintenance deletes events older than the retention window and refreshes
// query planner statistics.
func (s *sqliteAuditBackend) Maintenance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	if _, err := s.db.Exec(`
		DELETE FROM audit_events
		WHERE created_at < datetime('now', '-' || ? || ' days')
	`, defaultRetentionDays); err != nil {
		return fmt.Errorf("failed to cleanup old audit events: %w", err)
	}

	for _, task := range []string{"PRAGMA optimize", "PRAGMA wal_checkpoint(FULL)"} {
		_, _ = s.db.Exec(task)
	}

	now := time.Now()
	s.maintained = &now
	return nil
}

func (s *sqliteAuditBackend) GetStats() (*AuditDatabaseStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("SQLite audit backend is closed")
	}

	stats := newAuditStats("sqlite", s.dbPath)
	stats.RetentionDays = defaultRetentionDays
	stats.LastMaintained = s.maintained

	if err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to get total events count: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT file_path) FROM audit_events WHERE file_path != ''").Scan(&stats.FilesTouched); err != nil {
		return nil, fmt.Errorf("failed to count audited files: %w", err)
	}
	if err := s.groupCount("level", stats.EventsByLevel); err != nil {
		return nil, err
	}
	if err := s.groupCount("event", stats.EventsByType); err != nil {
		return nil, err
	}
	if err := s.eventTimeRange(stats); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT version FROM schema_info ORDER BY version DESC LIMIT 1").Scan(&stats.SchemaVersion); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	if info, err := os.Stat(s.dbPath); err == nil {
		stats.StorageSize = info.Size()
	}
	return stats, nil
}

// groupCount fills into with COUNT(*) grouped by column. column is always a
// package constant, never user input.
func (s *sqliteAuditBackend) groupCount(column string, into map[string]int64) error {
	rows, err := s.db.Query("SELECT " + column + ", COUNT(*) FROM audit_events GROUP BY " + column)
	if err != nil {
		return fmt.Errorf("failed to get events by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return fmt.Errorf("failed to scan %s stats: %w", column, err)
		}
		into[name] = count
	}
	return rows.Err()
}

func (s *sqliteAuditBackend) eventTimeRange(stats *AuditDatabaseStats) error {
	var oldestStr, newestStr sql.NullString
	err := s.db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM audit_events").Scan(&oldestStr, &newestStr)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to get event time range: %w", err)
	}
	if oldestStr.Valid {
		if oldest, err := time.Parse(time.RFC3339Nano, oldestStr.String); err == nil {
			stats.OldestEvent = &oldest
		}
	}
	if newestStr.Valid {
		if newest, err := time.Parse(time.RFC3339Nano, newestStr.String); err == nil {
			stats.NewestEvent = &newest
		}
	}
	return nil
}

func (s *sqliteAuditBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush audit backend during close: %w", err))
	}
	if s.insertStmt != nil {
		if err := s.insertStmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close insert statement: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing SQLite audit backend: %v", errs)
	}
	return nil
}

// jsonlAuditBackend appends one JSON object per line to a file.
type jsonlAuditBackend struct {
	file   *os.File
	path   string
	mu     sync.Mutex
	closed bool
}

func newJSONLBackend(path string) (*jsonlAuditBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("JSONL backend requires OutputFile to be specified")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create JSONL audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- audit path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log file: %w", err)
	}

	return &jsonlAuditBackend{file: file, path: path}, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return fmt.Errorf("cannot write to closed JSONL audit backend")
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize audit event: %w", err)
		}
		data = append(data, '\n')
		if _, err := j.file.Write(data); err != nil {
			return fmt.Errorf("failed to write audit event to JSONL: %w", err)
		}
	}
	return nil
}

func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync JSONL audit file: %w", err)
	}
	return nil
}

// Maintenance is a no-op: JSONL logs are rotated externally.
func (j *jsonlAuditBackend) Maintenance() error {
	return nil
}

// GetStats scans the log once. Lines that do not decode are skipped.
func (j *jsonlAuditBackend) GetStats() (*AuditDatabaseStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stats := newAuditStats("jsonl", j.path)
	stats.SchemaVersion = 1

	f, err := os.Open(j.path) // #nosec G304 -- audit path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if info, err := f.Stat(); err == nil {
		stats.StorageSize = info.Size()
	}

	files := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}
		stats.TotalEvents++
		stats.EventsByLevel[event.Level.String()]++
		stats.EventsByType[event.Event]++
		if event.FilePath != "" {
			files[event.FilePath] = struct{}{}
		}
		ts := event.Timestamp
		if stats.OldestEvent == nil || ts.Before(*stats.OldestEvent) {
			stats.OldestEvent = &ts
		}
		if stats.NewestEvent == nil || ts.After(*stats.NewestEvent) {
			stats.NewestEvent = &ts
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSONL audit file: %w", err)
	}
	stats.FilesTouched = int64(len(files))
	return stats, nil
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.file.Close()
}
