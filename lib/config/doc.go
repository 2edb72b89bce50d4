// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for buildwatch.
//
// Configuration is loaded from a single file specified by either the
// BUILDWATCH_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. Without a file, commands run
// with [Default].
//
// Files are YAML. A file ending in .json or .jsonc is read as JSON with
// comments and trailing commas allowed. Unknown keys are rejected so a
// misspelled setting fails loudly instead of being ignored.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- display, error handling, logging, and refresh settings
//   - [Default] -- returns a Config with interactive defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
