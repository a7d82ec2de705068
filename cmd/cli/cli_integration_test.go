// CLI integration tests for inistore
//
// These tests drive the Orpheus command tree end to end against real files
// in an isolated temporary directory.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/agilira/inistore"
)

// =============================================================================
// CLI TEST INFRASTRUCTURE
// =============================================================================

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test
// goroutine to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// CLITestFixture manages CLI testing in isolated environments
type CLITestFixture struct {
	t       *testing.T
	tempDir string
	store   *inistore.Store
	manager *Manager
	out     *syncBuffer
}

// NewCLITestFixture creates an isolated environment for CLI testing. The
// optional mutators adjust the store configuration.
func NewCLITestFixture(t *testing.T, mutate ...func(*inistore.Config)) *CLITestFixture {
	t.Helper()

	config := inistore.DefaultConfig()
	for _, fn := range mutate {
		fn(&config)
	}
	store, err := inistore.New(config)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("Failed to close store: %v", err)
		}
	})

	out := &syncBuffer{}
	return &CLITestFixture{
		t:       t,
		tempDir: t.TempDir(),
		store:   store,
		manager: NewManager(store).WithOutput(out),
		out:     out,
	}
}

// RunCLI executes CLI commands via Manager and captures output
func (f *CLITestFixture) RunCLI(args ...string) (string, error) {
	f.t.Helper()
	f.out.Reset()
	err := f.manager.Run(args)
	return strings.TrimSpace(f.out.String()), err
}

// MustRun fails the test when the command fails.
func (f *CLITestFixture) MustRun(args ...string) string {
	f.t.Helper()
	output, err := f.RunCLI(args...)
	if err != nil {
		f.t.Fatalf("inistore %s: %v", strings.Join(args, " "), err)
	}
	return output
}

// CreateTempConfig creates an INI file in the temp directory
func (f *CLITestFixture) CreateTempConfig(name, content string) string {
	f.t.Helper()

	configPath := filepath.Join(f.tempDir, name)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		f.t.Fatalf("Failed to create temp config: %v", err)
	}
	return configPath
}

// ReadConfigFile reads and returns config file content
func (f *CLITestFixture) ReadConfigFile(path string) string {
	f.t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		f.t.Fatalf("Failed to read config file: %v", err)
	}
	return string(content)
}

// Path joins name onto the fixture directory without creating anything.
func (f *CLITestFixture) Path(name string) string {
	return filepath.Join(f.tempDir, name)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", code)
	}
	if got := inistore.ErrorCode(err); got != code {
		t.Fatalf("Error code = %q, want %q (err: %v)", got, code, err)
	}
}

// =============================================================================
// END-TO-END WORKFLOWS
// =============================================================================

func TestCLI_EditWorkflow(t *testing.T) {
	fixture := NewCLITestFixture(t)
	path := fixture.CreateTempConfig("app.ini", "; application settings\n[database]\nHOST=localhost\n\n[cache]\nTTL=60\n")

	fixture.MustRun("set", path, "database", "PORT", "5432")
	fixture.MustRun("set", path, "logging", "LEVEL", "info")

	if got := fixture.MustRun("get", path, "database", "PORT"); got != "5432" {
		t.Errorf("get PORT = %q", got)
	}
	if got := fixture.MustRun("sections", path); got != "database\ncache\nlogging" {
		t.Errorf("sections = %q", got)
	}
	if got := fixture.MustRun("keys", path, "database"); got != "HOST\nPORT" {
		t.Errorf("keys = %q", got)
	}

	fixture.MustRun("delete", path, "database", "HOST")
	fixture.MustRun("remove-section", path, "cache")

	want := "; application settings\n[database]\nPORT=5432\n\n[logging]\nLEVEL=info\n"
	if got := fixture.ReadConfigFile(path); got != want {
		t.Errorf("File content:\n%s\nwant:\n%s", got, want)
	}
}

func TestCLI_ArrayWorkflow(t *testing.T) {
	fixture := NewCLITestFixture(t)
	path := fixture.Path("arrays.ini")

	fixture.MustRun("array", "set", path, "cluster", "HOSTS", "a.example", "b,example", "c example")

	output := fixture.MustRun("array", "get", path, "cluster", "HOSTS")
	if output != "a.example\nb,example\nc example" {
		t.Errorf("array get = %q", output)
	}

	_, err := fixture.RunCLI("array", "get", path, "cluster", "MISSING")
	assertCode(t, err, inistore.ErrCodeKeyNotFound)
}

func TestCLI_PolicyFromStore(t *testing.T) {
	strict := NewCLITestFixture(t)
	path := strict.Path("policy.ini")

	_, err := strict.RunCLI("set", path, "my section", "KEY", "v")
	if !inistore.IsValidationError(err) {
		t.Errorf("Strict store should reject spaces, got %v", err)
	}

	lenient := NewCLITestFixture(t, func(c *inistore.Config) { c.AllowSpacesInNames = true })
	lenient.MustRun("set", path, "my section", "KEY", "v")
	if got := lenient.MustRun("get", path, "my section", "KEY"); got != "v" {
		t.Errorf("get = %q", got)
	}
}

func TestCLI_AuditedWorkflow(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	fixture := NewCLITestFixture(t, func(c *inistore.Config) {
		c.Audit = inistore.AuditConfig{Enabled: true, OutputFile: auditPath, BufferSize: 10}
	})
	path := fixture.Path("audited.ini")

	fixture.MustRun("set", path, "dev", "A", "1")
	fixture.MustRun("set", path, "dev", "B", "2")
	fixture.MustRun("delete", path, "dev", "A")

	output := fixture.MustRun("audit", "stats")
	for _, want := range []string{"jsonl", "Total events:", inistore.EventWrite, inistore.EventRemoveKey} {
		if !strings.Contains(output, want) {
			t.Errorf("audit stats output missing %q:\n%s", want, output)
		}
	}

	fixture.MustRun("audit", "cleanup")
}
