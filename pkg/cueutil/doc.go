// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing utilities.
//
// Parsing follows three steps:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode into a Go value
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[map[string]any](
//	    schema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename("workerpack.cue"),
//	    cueutil.WithConcrete(false),
//	)
//	if err != nil {
//	    return nil, err // error carries the CUE path of the bad field
//	}
package cueutil
