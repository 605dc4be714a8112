// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
)

type (
	// Metafile is the subset of esbuild's metafile JSON used for build reports.
	Metafile struct {
		Inputs  map[string]MetafileInput  `json:"inputs"`
		Outputs map[string]MetafileOutput `json:"outputs"`
	}

	// MetafileInput is an input file in the metafile.
	MetafileInput struct {
		Bytes   int              `json:"bytes"`
		Imports []MetafileImport `json:"imports"`
	}

	// MetafileImport is an import in the metafile.
	MetafileImport struct {
		Path     string `json:"path"`
		Kind     string `json:"kind"`
		External bool   `json:"external,omitempty"`
	}

	// MetafileOutput is an output file in the metafile.
	MetafileOutput struct {
		Bytes int `json:"bytes"`
	}

	// Summary condenses a metafile.
	Summary struct {
		Inputs    []string
		Externals []string
		Bytes     int
	}
)

// Summarize decodes metafile and lists the bundled inputs and external imports.
func Summarize(metafile string) (*Summary, error) {
	var mf Metafile
	if err := json.Unmarshal([]byte(metafile), &mf); err != nil {
		return nil, fmt.Errorf("decode metafile: %w", err)
	}

	s := &Summary{}
	ext := map[string]bool{}
	for path, in := range mf.Inputs {
		s.Inputs = append(s.Inputs, path)
		for _, imp := range in.Imports {
			if imp.External && !ext[imp.Path] {
				ext[imp.Path] = true
				s.Externals = append(s.Externals, imp.Path)
			}
		}
	}
	for _, out := range mf.Outputs {
		s.Bytes += out.Bytes
	}
	slices.Sort(s.Inputs)
	slices.Sort(s.Externals)
	return s, nil
}

// Analyze renders esbuild's size breakdown of the bundled inputs.
func Analyze(metafile string, verbose bool) string {
	return api.AnalyzeMetafile(metafile, api.AnalyzeMetafileOptions{Verbose: verbose})
}
