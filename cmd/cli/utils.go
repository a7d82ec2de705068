// Utility functions for the inistore CLI
//
// This file provides positional argument helpers and the extended duration
// parser used by long-running commands.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/inistore"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// commandNames feeds shell completion.
var commandNames = []string{
	"get", "set", "delete", "sections", "keys", "has", "remove-section",
	"array", "lint", "export", "watch", "audit", "info", "completion",
}

var extendedDurationRe = regexp.MustCompile(`^(\d+)(d|w)$`)

// requireArgs returns the first n positional arguments, failing with the
// usage line when any of them is empty.
func requireArgs(ctx *orpheus.Context, usage string, n int) ([]string, error) {
	args := make([]string, n)
	for i := range args {
		args[i] = ctx.GetArg(i)
		if args[i] == "" {
			return nil, errors.New(inistore.ErrCodeInvalidConfig, "usage: inistore "+usage).
				WithContext("missing_argument", i+1)
		}
	}
	return args, nil
}

// trailingArgs collects positional arguments from index start up to the
// first missing one.
func trailingArgs(ctx *orpheus.Context, start int) []string {
	var values []string
	for i := start; ; i++ {
		v := ctx.GetArg(i)
		if v == "" {
			return values
		}
		values = append(values, v)
	}
}

// parseExtendedDuration parses duration strings with extended units (d, w).
// Supports all Go standard units (ns, us, ms, s, m, h) plus:
// - d: days (24 hours)
// - w: weeks (7 days)
//
// Examples: "30d", "2w", "7d", "24h", "5m", "30s", "0"
func parseExtendedDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	matches := extendedDurationRe.FindStringSubmatch(s)
	if len(matches) != 3 {
		_, err := time.ParseDuration(s)
		return 0, err
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	switch matches[2] {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
}
