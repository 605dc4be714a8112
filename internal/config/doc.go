// SPDX-License-Identifier: MPL-2.0

// Package config handles project configuration using Viper with CUE as the file format.
//
// Configuration is read from workerpack.cue in the project directory (or the file
// passed with --config) and layered over built-in defaults that reproduce the
// conventional layout: pages under src/assets, the entry module at src/worker.js,
// and artifacts in dist/. WORKERPACK_* environment variables override both.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before
// being merged, and the decoded Config is checked again with Validate so that
// programmatic callers get the same guarantees.
package config
