// SPDX-License-Identifier: MPL-2.0

// Package bundler turns the worker entry module into one self-contained ES
// module with esbuild, substituting merged pages and the icon as compile-time
// constants.
package bundler
