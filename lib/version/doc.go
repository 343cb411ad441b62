// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the qaboard binaries.
//
// [Version], [GitCommit], and [BuildTime] are injected with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/qaboard/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When they are not injected, [Info] falls back to the VCS stamp the Go
// toolchain embeds in module builds, so "go install" binaries still
// identify their commit.
package version
