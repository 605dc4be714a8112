// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* helpers it builds throwaway project trees (WriteProject)
// and provides a FakeClock for deterministic archive timestamps.
package testutil
