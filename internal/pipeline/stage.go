// SPDX-License-Identifier: MPL-2.0

package pipeline

import "fmt"

const (
	// StageMerge reads and merges page assets.
	StageMerge Stage = "merge"
	// StageIcon reads the icon.
	StageIcon Stage = "icon"
	// StageBundle runs the bundling engine.
	StageBundle Stage = "bundle"
	// StageWrite persists the artifacts.
	StageWrite Stage = "write"
)

type (
	// Stage identifies a pipeline step.
	Stage string

	// StageError records which stage failed.
	StageError struct {
		Stage Stage
		Err   error
	}
)

// String returns the stage name.
func (s Stage) String() string { return string(s) }

// Error implements the error interface for StageError.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the stage's underlying error.
func (e *StageError) Unwrap() error { return e.Err }
