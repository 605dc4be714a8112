// SPDX-License-Identifier: MPL-2.0

// Package artifact persists a bundled module twice: as a raw script file and
// as the single entry of a deflate-compressed zip archive.
package artifact
