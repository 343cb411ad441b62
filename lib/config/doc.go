// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for qaboard.
//
// Configuration is loaded from a single file specified by:
//   - the --config flag passed to the command, or
//   - the QABOARD_CONFIG environment variable.
//
// With neither, [Default] applies: a local server on 127.0.0.1:8000.
// Environment variables never override individual values; the only
// environment input is ${VAR} and ${VAR:-default} expansion inside
// URLs, paths, and the token secret.
//
// The file is YAML, or JSON with comments when its name ends in .json
// or .jsonc. It may contain environment-specific sections
// (development, staging, production) that override base values when
// the environment matches:
//
//	environment: production
//	api:
//	  url: https://qa.example.com
//	push:
//	  reconnect_delay: 5s
//	production:
//	  view:
//	    page_size: 50
package config
