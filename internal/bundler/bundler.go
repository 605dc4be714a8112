// SPDX-License-Identifier: MPL-2.0

package bundler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrBuildFailed is the sentinel wrapped by BuildError.
var ErrBuildFailed = errors.New("bundle failed")

type (
	// Engine produces a bundled module from a Request.
	Engine interface {
		Build(ctx context.Context, req Request) (*Result, error)
	}

	// Request describes one bundling run.
	Request struct {
		// Entry is the path of the entry module.
		Entry string
		// WorkingDir resolves relative paths. Empty means the current directory.
		WorkingDir string
		Externals  []string
		Target     api.Target
		Platform   api.Platform
		// Defines maps constant identifiers to JavaScript expressions.
		Defines map[string]string
		// Metafile requests esbuild's JSON metadata in Result.Metafile.
		Metafile bool
	}

	// Result is the combined module produced by an Engine.
	Result struct {
		Code     []byte
		Metafile string
		Warnings []string
	}

	// BuildError carries every error message reported by the engine.
	BuildError struct {
		Entry    string
		Messages []string
	}

	// Esbuild is the Engine backed by github.com/evanw/esbuild.
	Esbuild struct{}
)

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("bundle %s: no output produced", e.Entry)
	}
	return fmt.Sprintf("bundle %s: %s", e.Entry, strings.Join(e.Messages, "; "))
}

// Unwrap returns ErrBuildFailed for errors.Is() compatibility.
func (e *BuildError) Unwrap() error { return ErrBuildFailed }

// Build bundles req.Entry into a single ES module held in memory. Nothing is
// written to disk and no minification is applied. esbuild cannot be
// interrupted, so ctx is only checked before the build starts.
func (Esbuild) Build(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{req.Entry},
		AbsWorkingDir: req.WorkingDir,
		Bundle:        true,
		Write:         false,
		Format:        api.FormatESModule,
		Platform:      req.Platform,
		Target:        req.Target,
		External:      req.Externals,
		Define:        req.Defines,
		Metafile:      req.Metafile,
		LogLevel:      api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		return nil, &BuildError{Entry: req.Entry, Messages: formatMessages(result.Errors, api.ErrorMessage)}
	}
	if len(result.OutputFiles) == 0 {
		return nil, &BuildError{Entry: req.Entry}
	}

	return &Result{
		Code:     result.OutputFiles[0].Contents,
		Metafile: result.Metafile,
		Warnings: formatMessages(result.Warnings, api.WarningMessage),
	}, nil
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	out := make([]string, 0, len(formatted))
	for _, m := range formatted {
		out = append(out, strings.TrimSpace(m))
	}
	return out
}
