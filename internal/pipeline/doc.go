// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs a complete build: merge page assets, read the icon,
// bundle the worker entry with the merged pages injected, and write the raw
// module and its archive. Stages run strictly in order and the first failure
// ends the build.
package pipeline
