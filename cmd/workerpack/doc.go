// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for workerpack.
//
// The root command wires build, watch, verify, pages and config under a
// shared App, which carries the configuration provider, the bundling engine
// and the output streams so tests can substitute each of them.
package cmd
