// SPDX-License-Identifier: MPL-2.0

// Package assets discovers page directories and merges each page's HTML
// template, stylesheet and script into a single embeddable HTML string.
//
// A page directory is any directory below the asset root that contains an
// index.html. Its style.css and script.js siblings are required; a missing
// sibling aborts the whole merge.
package assets
