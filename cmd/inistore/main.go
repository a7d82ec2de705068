// inistore - command-line access to INI files
//
// Global flags (policy, audit file, env file) come first, then the command:
//
//	inistore --audit-file audit.jsonl set app.ini database PORT 5432
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/agilira/inistore"
	"github.com/agilira/inistore/cmd/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := inistore.NewConfigManager("inistore").
		SetDescription("Read and edit INI files with atomic, comment-preserving writes").
		SetVersion(cli.Version)

	rest, err := flags.Parse(args)
	if goerrors.Is(err, inistore.ErrHelpRequested) {
		flags.PrintUsage()
		_ = cli.NewManager(nil).Run([]string{"--help"})
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	config, err := flags.Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	store, err := inistore.New(*config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: closing audit trail: %v\n", err)
		}
	}()

	if err := cli.NewManager(store).Run(rest); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
