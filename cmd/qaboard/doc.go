// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Qaboard is the command-line client for a live question board.
//
// "qaboard watch" opens the terminal dashboard: questions stream in
// over the push channel, are filtered by tab and search, and admins
// can answer and triage them in place. The other subcommands (list,
// ask, answer, status, delete) perform one request each and print
// the result, with --json for scripts. "qaboard login" saves a
// session file that later commands load automatically.
//
// Configuration comes from the file named by --config or
// $QABOARD_CONFIG (YAML or JSONC), with --env-file loading variables
// for ${VAR} expansion first. --api overrides the API root.
package main
