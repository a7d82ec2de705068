// Package inistore reads and edits flat INI files in place: "[section]"
// headers followed by "key=value" entries, with '#' and ';' comments.
//
// # Model
//
// A Store keeps no file content between calls. Each operation parses the
// file into a transient line model, answers or mutates it, and mutating
// operations write a complete replacement file to a temporary path that is
// then renamed over the original. Readers observe either the old or the new
// file, never a partial one, and lines an operation does not touch are
// written back byte for byte, comments and blank lines included.
//
// Duplicate headers and duplicate keys are kept as found. The first header
// with a given name is authoritative for Read, Write, ListKeys and
// RemoveKey; ListSections and Sections report every header. Lint reports
// duplicates, and Config.RejectDuplicates makes Write refuse to touch them.
//
// Names must read back unchanged: under every policy a name with leading or
// trailing whitespace or a leading comment marker is rejected, as is a key
// containing '=' or starting with '['.
//
// # Quick start
//
//	store, err := inistore.New(inistore.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Write("app.ini", "dev", "PORT", "5432"); err != nil {
//		log.Fatal(err)
//	}
//	port, found, err := store.Read("app.ini", "dev", "PORT")
//
// Values containing whitespace, quotes or shell metacharacters are stored
// double-quoted and unquoted again on read:
//
//	store.Write("app.ini", "dev", "DESC", "hello world") // DESC="hello world"
//
// Lists go through SetArrayValue and GetArrayValue:
//
//	store.SetArrayValue("app.ini", "dev", "HOSTS", "a.local", "b local")
//	hosts, _, _ := store.GetArrayValue("app.ini", "dev", "HOSTS")
//
// # Validation policy
//
// Section and key names are checked against the Store's Policy. Strict mode
// (the default) rejects '[', ']' and '='; AllowSpacesInNames admits
// whitespace; AllowEmptyValues admits "key=". Line breaks and control
// characters are rejected under every policy.
//
// # Errors
//
// Every error carries a code from github.com/agilira/go-errors:
//
//	if _, err := store.Get(path, "dev", "PORT"); inistore.HasCode(err, inistore.ErrCodeKeyNotFound) {
//		// fall back to a default
//	}
//
// # Configuration
//
// Config can be built in code, from INISTORE_* environment variables
// (LoadConfigFromEnv), from dotenv files (LoadConfigMultiSource) or from
// command-line flags (ConfigFromFlags).
//
// # Audit trail
//
// With Config.Audit enabled every mutation is recorded with its previous
// and new value, an operation id and a SHA-256 checksum. An OutputFile
// ending in ".jsonl" selects a JSON lines log; any other path, or none,
// selects a SQLite database.
//
// # Export and watching
//
// Snapshot gives an ordered, deduplicated view of a file that Export
// renders as JSON, YAML, TOML or normalized INI. Watch reports entry-level
// changes made by any writer, including other processes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package inistore
