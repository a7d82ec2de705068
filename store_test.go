// store_test.go: Read, write and removal behaviour of the INI Store
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package inistore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// newTestStore returns a Store with DefaultConfig adjusted by mutate.
func newTestStore(t *testing.T, mutate ...func(*Config)) *Store {
	t.Helper()
	config := DefaultConfig()
	for _, m := range mutate {
		m(&config)
	}
	store, err := New(config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return store
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func readContent(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", code)
	}
	if got := ErrorCode(err); got != code {
		t.Fatalf("Expected error code %s, got %q (%v)", code, got, err)
	}
}

func TestScenarioWriteToEmptyFile(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "")

	if err := store.Write(path, "dev", "PORT", "5432"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := readContent(t, path); got != "[dev]\nPORT=5432\n" {
		t.Errorf("Unexpected file content: %q", got)
	}

	value, found, err := store.Read(path, "dev", "PORT")
	if err != nil || !found || value != "5432" {
		t.Errorf("Read = (%q, %v, %v), want (\"5432\", true, nil)", value, found, err)
	}
}

func TestScenarioUpdateOnlyTargetSection(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nPORT=5432\n[uat]\nPORT=5433\n")

	if err := store.Write(path, "dev", "PORT", "5555"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := readContent(t, path); got != "[dev]\nPORT=5555\n[uat]\nPORT=5433\n" {
		t.Errorf("Unexpected file content: %q", got)
	}
}

func TestScenarioQuotedValue(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\n")

	if err := store.Write(path, "dev", "DESC", "hello world"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(readContent(t, path), "DESC=\"hello world\"\n") {
		t.Errorf("Value not quoted on disk: %q", readContent(t, path))
	}

	value, _, err := store.Read(path, "dev", "DESC")
	if err != nil || value != "hello world" {
		t.Errorf("Read = (%q, %v), want \"hello world\"", value, err)
	}
}

func TestScenarioRemoveSection(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nPORT=5555\n[uat]\nPORT=5433\n")

	if err := store.RemoveSection(path, "uat"); err != nil {
		t.Fatalf("RemoveSection failed: %v", err)
	}
	if got := readContent(t, path); got != "[dev]\nPORT=5555\n" {
		t.Errorf("Unexpected file content: %q", got)
	}
}

func TestScenarioListKeysSkipsComments(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=1\n# comment\nB=2\n")

	keys, err := store.ListKeys(path, "dev")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if strings.Join(keys, ",") != "A,B" {
		t.Errorf("ListKeys = %v, want [A B]", keys)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "roundtrip.ini")

	values := []string{
		"plain",
		"hello world",
		"tab\tseparated",
		`say "hi"`,
		`"already quoted"`,
		"a;b",
		"$HOME/bin",
		"cmd | grep x",
		"a && b",
		"<tag>",
		"back`tick`",
		`C:\path\to\file`,
		`trailing backslash\`,
		"key=value=more",
		"  padded  ",
		"unicode ✓ värde",
		"#not-a-comment",
	}

	for i, v := range values {
		key := fmt.Sprintf("K%d", i)
		t.Run(key, func(t *testing.T) {
			if err := store.Write(path, "round", key, v); err != nil {
				t.Fatalf("Write(%q) failed: %v", v, err)
			}
			got, found, err := store.Read(path, "round", key)
			if err != nil || !found {
				t.Fatalf("Read failed: found=%v err=%v", found, err)
			}
			if got != v {
				t.Errorf("Round trip mismatch: wrote %q, read %q", v, got)
			}
		})
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "# header\n[dev]\nA=1\n\n[uat]\nA=2\n")

	if err := store.Write(path, "dev", "DESC", "hello world"); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	first := readContent(t, path)
	firstInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Write(path, "dev", "DESC", "hello world"); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}
	if second := readContent(t, path); second != first {
		t.Errorf("Second write changed file:\n%q\n%q", first, second)
	}

	secondInfo, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(firstInfo, secondInfo) {
		t.Error("Unchanged write replaced the file")
	}
}

func TestWritePreservesUntouchedLines(t *testing.T) {
	store := newTestStore(t)
	original := "; global comment\n\n[dev]\n  A = 1   \n# keep me\nB=\"x y\"\n\n\n[uat]\nstray line\nC=3\n"
	path := writeFixture(t, original)

	if err := store.Write(path, "uat", "C", "4"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := strings.Replace(original, "C=3", "C=4", 1)
	if got := readContent(t, path); got != want {
		t.Errorf("Unexpected content:\n got %q\nwant %q", got, want)
	}
}

func TestWriteInsertsBeforeBlankSeparator(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=1\n\n[uat]\nB=2\n")

	if err := store.Write(path, "dev", "C", "3"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := readContent(t, path); got != "[dev]\nA=1\nC=3\n\n[uat]\nB=2\n" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestWriteAppendsSectionWithSeparator(t *testing.T) {
	tests := []struct {
		name     string
		original string
		want     string
	}{
		{"trailing_newline", "[dev]\nA=1\n", "[dev]\nA=1\n\n[uat]\nB=2\n"},
		{"missing_newline", "[dev]\nA=1", "[dev]\nA=1\n\n[uat]\nB=2\n"},
		{"already_blank", "[dev]\nA=1\n\n", "[dev]\nA=1\n\n[uat]\nB=2\n"},
		{"comment_only", "# only a comment\n", "# only a comment\n\n[uat]\nB=2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			path := writeFixture(t, tt.original)

			if err := store.Write(path, "uat", "B", "2"); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if got := readContent(t, path); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteRepairsMissingFinalNewline(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=1")

	if err := store.Write(path, "dev", "B", "2"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := readContent(t, path); got != "[dev]\nA=1\nB=2\n" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestWriteKeepsCRLF(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\r\nA=1\r\n")

	if err := store.Write(path, "dev", "B", "2"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := readContent(t, path); got != "[dev]\r\nA=1\r\nB=2\r\n" {
		t.Errorf("Unexpected content: %q", got)
	}

	value, found, err := store.Read(path, "dev", "A")
	if err != nil || !found || value != "1" {
		t.Errorf("Read = (%q, %v, %v)", value, found, err)
	}
}

func TestWriteCreatesFileAndDirectories(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.ini")

	if err := store.Write(path, "dev", "PORT", "5432"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("File not created: %v", err)
	}
	if info.Mode().Perm() != defaultFileMode {
		t.Errorf("File mode = %v, want %v", info.Mode().Perm(), defaultFileMode)
	}
	if got := readContent(t, path); got != "[dev]\nPORT=5432\n" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestWriteKeepsExistingPermissions(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=1\n")
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatal(err)
	}

	if err := store.Write(path, "dev", "A", "2"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Permissions changed to %v", info.Mode().Perm())
	}
}

func TestSectionIsolation(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=1\n\n[uat]\nB=2\n")

	if err := store.Write(path, "dev", "KEY", "dev-value"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, found, err := store.Read(path, "uat", "KEY"); err != nil || found {
		t.Errorf("KEY leaked into [uat]: found=%v err=%v", found, err)
	}
	keys, err := store.ListKeys(path, "uat")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "B" {
		t.Errorf("[uat] keys changed: %v", keys)
	}
}

func TestFirstMatchWins(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=first\nA=second\n[uat]\nX=1\n[dev]\nA=third\nB=only-in-second-block\n")

	t.Run("read", func(t *testing.T) {
		value, found, err := store.Read(path, "dev", "A")
		if err != nil || !found || value != "first" {
			t.Errorf("Read = (%q, %v, %v), want first", value, found, err)
		}
		if _, found, _ := store.Read(path, "dev", "B"); found {
			t.Error("Key from duplicate section block must not be visible")
		}
	})

	t.Run("list", func(t *testing.T) {
		sections, err := store.ListSections(path)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(sections, ",") != "dev,uat,dev" {
			t.Errorf("ListSections = %v", sections)
		}
		keys, err := store.ListKeys(path, "dev")
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(keys, ",") != "A,A" {
			t.Errorf("ListKeys = %v", keys)
		}
	})

	t.Run("write_replaces_first_only", func(t *testing.T) {
		if err := store.Write(path, "dev", "A", "updated"); err != nil {
			t.Fatal(err)
		}
		want := "[dev]\nA=updated\nA=second\n[uat]\nX=1\n[dev]\nA=third\nB=only-in-second-block\n"
		if got := readContent(t, path); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestOrderPreservation(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "order.ini")

	for _, section := range []string{"zeta", "alpha", "mid"} {
		for _, key := range []string{"Z", "A", "M"} {
			if err := store.Write(path, section, key, "v"); err != nil {
				t.Fatal(err)
			}
		}
	}

	sections, err := store.ListSections(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(sections, ",") != "zeta,alpha,mid" {
		t.Errorf("ListSections = %v", sections)
	}

	keys, err := store.ListKeys(path, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "Z,A,M" {
		t.Errorf("ListKeys = %v", keys)
	}
}

func TestReadMissing(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=1\n[uat]\nB=2\n")

	t.Run("missing_file", func(t *testing.T) {
		_, _, err := store.Read(filepath.Join(t.TempDir(), "nope.ini"), "dev", "A")
		assertCode(t, err, ErrCodeFileNotFound)
		if !IsNotFound(err) {
			t.Error("IsNotFound should be true")
		}
	})

	t.Run("missing_section", func(t *testing.T) {
		_, found, err := store.Read(path, "prod", "A")
		if err != nil || found {
			t.Errorf("found=%v err=%v", found, err)
		}
	})

	t.Run("key_in_next_section", func(t *testing.T) {
		_, found, err := store.Read(path, "dev", "B")
		if err != nil || found {
			t.Errorf("Scan must stop at the next header: found=%v err=%v", found, err)
		}
	})
}

func TestGet(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\nA=\"x y\"\n")

	value, err := store.Get(path, "dev", "A")
	if err != nil || value != "x y" {
		t.Errorf("Get = (%q, %v)", value, err)
	}

	_, err = store.Get(path, "prod", "A")
	assertCode(t, err, ErrCodeSectionNotFound)

	_, err = store.Get(path, "dev", "B")
	assertCode(t, err, ErrCodeKeyNotFound)
}

func TestSectionExists(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[dev]\n")

	if ok, err := store.SectionExists(path, "dev"); err != nil || !ok {
		t.Errorf("SectionExists(dev) = (%v, %v)", ok, err)
	}
	if ok, err := store.SectionExists(path, "uat"); err != nil || ok {
		t.Errorf("SectionExists(uat) = (%v, %v)", ok, err)
	}
}

func TestEachSection(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[a]\n[b]\n[c]\n")

	var seen []string
	err := store.EachSection(path, func(name string) bool {
		seen = append(seen, name)
		return name != "b"
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(seen, ",") != "a,b" {
		t.Errorf("EachSection visited %v, want stop after b", seen)
	}

	// A second pass restarts from the file
	seen = nil
	_ = store.EachSection(path, func(name string) bool {
		seen = append(seen, name)
		return true
	})
	if len(seen) != 3 {
		t.Errorf("Second pass visited %v", seen)
	}
}

func TestSectionsSequence(t *testing.T) {
	store := newTestStore(t)
	path := writeFixture(t, "[a]\nX=1\n[b]\n[a]\n")
	seq := store.Sections(path)

	var first []string
	for name, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		first = append(first, name)
		if name == "b" {
			break
		}
	}
	if strings.Join(first, ",") != "a,b" {
		t.Errorf("First pass = %v, want stop after b", first)
	}

	// Ranging again re-reads the file
	if err := store.Write(path, "c", "Y", "2"); err != nil {
		t.Fatal(err)
	}
	var second []string
	for name, err := range seq {
		if err != nil {
			t.Fatal(err)
		}
		second = append(second, name)
	}
	if strings.Join(second, ",") != "a,b,a,c" {
		t.Errorf("Second pass = %v", second)
	}

	var errs int
	for name, err := range store.Sections(filepath.Join(t.TempDir(), "missing.ini")) {
		errs++
		if name != "" {
			t.Errorf("Unexpected name %q alongside error", name)
		}
		assertCode(t, err, ErrCodeFileNotFound)
	}
	if errs != 1 {
		t.Errorf("Missing file yielded %d times, want 1", errs)
	}
}

func TestWriteValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.ini")

	tests := []struct {
		name    string
		mutate  func(*Config)
		section string
		key     string
		value   string
		code    string
	}{
		{"bracket_in_section", nil, "de[v", "A", "1", ErrCodeValidation},
		{"equals_in_key", nil, "dev", "A=B", "1", ErrCodeValidation},
		{"space_in_key", nil, "dev", "MY KEY", "1", ErrCodeValidation},
		{"empty_section", nil, "", "A", "1", ErrCodeValidation},
		{"empty_value", nil, "dev", "A", "", ErrCodeEmptyValue},
		{"multiline_value", nil, "dev", "A", "line1\nline2", ErrCodeValidation},
		{"newline_in_name_lenient", func(c *Config) { c.Strict = false }, "dev\n", "A", "1", ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutators []func(*Config)
			if tt.mutate != nil {
				mutators = append(mutators, tt.mutate)
			}
			store := newTestStore(t, mutators...)
			err := store.Write(path, tt.section, tt.key, tt.value)
			assertCode(t, err, tt.code)
			if !IsValidationError(err) {
				t.Errorf("IsValidationError should be true for %v", err)
			}
		})
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Rejected writes must not create the file")
	}
}

func TestWritePolicyRelaxations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relaxed.ini")
	store := newTestStore(t, func(c *Config) {
		c.AllowSpacesInNames = true
		c.AllowEmptyValues = true
	})

	if err := store.Write(path, "my section", "my key", ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	value, found, err := store.Read(path, "my section", "my key")
	if err != nil || !found || value != "" {
		t.Errorf("Read = (%q, %v, %v)", value, found, err)
	}
}

func TestWriteNamesReadBackUnderEveryPolicy(t *testing.T) {
	policies := map[string]func(*Config){
		"strict":  func(c *Config) {},
		"lenient": func(c *Config) { c.Strict = false },
		"spaces":  func(c *Config) { c.AllowSpacesInNames = true },
		"relaxed": func(c *Config) {
			c.Strict = false
			c.AllowSpacesInNames = true
		},
	}

	tests := []struct {
		name    string
		section string
		key     string
	}{
		{"plain", "dev", "PORT"},
		{"inner_space", "my dev", "my key"},
		{"inner_brackets", "a]b", "k[1]"},
		{"inner_hash", "dev#2", "k;1"},
		{"section_equals", "a=b", "k"},
		{"leading_space_key", "dev", " k"},
		{"trailing_space_key", "dev", "k "},
		{"trailing_space_section", "dev ", "k"},
		{"leading_space_section", " dev", "k"},
		{"hash_key", "dev", "#k"},
		{"semicolon_key", "dev", ";k"},
		{"hash_section", "#dev", "k"},
		{"equals_key", "dev", "a=b"},
		{"bracket_key", "dev", "[k"},
	}

	for policyName, mutate := range policies {
		store := newTestStore(t, mutate)
		for _, tt := range tests {
			t.Run(policyName+"/"+tt.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "edge.ini")

				err := store.Write(path, tt.section, tt.key, "v]")
				if err != nil {
					assertCode(t, err, ErrCodeValidation)
					if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
						t.Error("Rejected write must not create the file")
					}
					return
				}

				first := readContent(t, path)
				if err := store.Write(path, tt.section, tt.key, "v]"); err != nil {
					t.Fatalf("Second write failed: %v", err)
				}
				if got := readContent(t, path); got != first {
					t.Errorf("Repeated write changed the file:\n%q\n%q", first, got)
				}

				value, found, err := store.Read(path, tt.section, tt.key)
				if err != nil || !found || value != "v]" {
					t.Errorf("Read = (%q, %v, %v), want (\"v]\", true, nil)", value, found, err)
				}
				if keys, err := store.ListKeys(path, tt.section); err != nil || len(keys) != 1 {
					t.Errorf("ListKeys = %v, %v; want exactly one key", keys, err)
				}
			})
		}
	}
}

func TestRemoveKey(t *testing.T) {
	t.Run("removes_all_occurrences_in_first_block", func(t *testing.T) {
		store := newTestStore(t)
		path := writeFixture(t, "[dev]\nA=1\n# note\nB=2\nA=3\n\n[uat]\nA=4\n")

		if err := store.RemoveKey(path, "dev", "A"); err != nil {
			t.Fatalf("RemoveKey failed: %v", err)
		}
		if got := readContent(t, path); got != "[dev]\n# note\nB=2\n\n[uat]\nA=4\n" {
			t.Errorf("Unexpected content: %q", got)
		}
		if _, found, _ := store.Read(path, "dev", "A"); found {
			t.Error("Key still readable after removal")
		}
	})

	t.Run("missing_section", func(t *testing.T) {
		store := newTestStore(t)
		path := writeFixture(t, "[dev]\nA=1\n")
		assertCode(t, store.RemoveKey(path, "missing-section", "k"), ErrCodeSectionNotFound)
	})

	t.Run("missing_key_is_noop", func(t *testing.T) {
		store := newTestStore(t)
		original := "[dev]\nA=1\n"
		path := writeFixture(t, original)
		before, _ := os.Stat(path)

		if err := store.RemoveKey(path, "dev", "missing-key"); err != nil {
			t.Fatalf("RemoveKey failed: %v", err)
		}
		if got := readContent(t, path); got != original {
			t.Errorf("File altered: %q", got)
		}
		after, _ := os.Stat(path)
		if !os.SameFile(before, after) {
			t.Error("No-op removal rewrote the file")
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		store := newTestStore(t)
		err := store.RemoveKey(filepath.Join(t.TempDir(), "none.ini"), "dev", "A")
		assertCode(t, err, ErrCodeFileNotFound)
	})
}

func TestRemoveSection(t *testing.T) {
	t.Run("middle_section", func(t *testing.T) {
		store := newTestStore(t)
		path := writeFixture(t, "[dev]\nA=1\n\n[uat]\nB=2\n\n[prod]\nC=3\n")

		if err := store.RemoveSection(path, "uat"); err != nil {
			t.Fatal(err)
		}
		if got := readContent(t, path); got != "[dev]\nA=1\n\n[prod]\nC=3\n" {
			t.Errorf("Unexpected content: %q", got)
		}
	})

	t.Run("last_section_drops_separator", func(t *testing.T) {
		store := newTestStore(t)
		path := writeFixture(t, "[dev]\nA=1\n\n[uat]\nB=2\n")

		if err := store.RemoveSection(path, "uat"); err != nil {
			t.Fatal(err)
		}
		if got := readContent(t, path); got != "[dev]\nA=1\n" {
			t.Errorf("Unexpected content: %q", got)
		}
	})

	t.Run("first_occurrence_only", func(t *testing.T) {
		store := newTestStore(t)
		path := writeFixture(t, "[dev]\nA=1\n[dev]\nA=2\n")

		if err := store.RemoveSection(path, "dev"); err != nil {
			t.Fatal(err)
		}
		value, found, _ := store.Read(path, "dev", "A")
		if !found || value != "2" {
			t.Errorf("Second block should become authoritative, got (%q, %v)", value, found)
		}
	})

	t.Run("missing_section_is_noop", func(t *testing.T) {
		store := newTestStore(t)
		original := "[dev]\nA=1\n"
		path := writeFixture(t, original)

		if err := store.RemoveSection(path, "uat"); err != nil {
			t.Fatal(err)
		}
		if got := readContent(t, path); got != original {
			t.Errorf("File altered: %q", got)
		}
	})

	t.Run("missing_file_is_noop", func(t *testing.T) {
		store := newTestStore(t)
		path := filepath.Join(t.TempDir(), "none.ini")
		if err := store.RemoveSection(path, "dev"); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("RemoveSection must not create the file")
		}
	})
}

func TestRejectDuplicates(t *testing.T) {
	store := newTestStore(t, func(c *Config) { c.RejectDuplicates = true })

	t.Run("duplicate_header", func(t *testing.T) {
		path := writeFixture(t, "[dev]\nA=1\n[dev]\nB=2\n")
		assertCode(t, store.Write(path, "dev", "C", "3"), ErrCodeDuplicate)
	})

	t.Run("duplicate_key", func(t *testing.T) {
		path := writeFixture(t, "[dev]\nA=1\nA=2\n")
		assertCode(t, store.Write(path, "dev", "B", "3"), ErrCodeDuplicate)
	})

	t.Run("other_sections_unaffected", func(t *testing.T) {
		path := writeFixture(t, "[dev]\nA=1\nA=2\n[uat]\nB=1\n")
		if err := store.Write(path, "uat", "B", "2"); err != nil {
			t.Errorf("Write to clean section failed: %v", err)
		}
	})
}

func TestConcurrentWritesSameStore(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "concurrent.ini")

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			section := fmt.Sprintf("s%d", i%4)
			if err := store.Write(path, section, fmt.Sprintf("K%d", i), fmt.Sprint(i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent write failed: %v", err)
	}

	for i := 0; i < workers; i++ {
		value, found, err := store.Read(path, fmt.Sprintf("s%d", i%4), fmt.Sprintf("K%d", i))
		if err != nil || !found || value != fmt.Sprint(i) {
			t.Errorf("K%d lost: (%q, %v, %v)", i, value, found, err)
		}
	}
}

func TestRejectedPath(t *testing.T) {
	store := newTestStore(t)
	for _, path := range []string{"", "/proc/self/environ", "config%2e%2e.ini", "a\x00b.ini"} {
		_, _, err := store.Read(path, "dev", "A")
		assertCode(t, err, ErrCodeInvalidPath)
	}
}
