// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError records the failed operation, the resource involved and
// suggested fixes. The issue catalog holds longer Markdown guidance for each
// class of build failure, rendered for the terminal with glamour.
package issue
