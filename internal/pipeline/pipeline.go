// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/workerpack/workerpack/internal/artifact"
	"github.com/workerpack/workerpack/internal/assets"
	"github.com/workerpack/workerpack/internal/bundler"
	"github.com/workerpack/workerpack/internal/config"
	"github.com/workerpack/workerpack/internal/issue"
)

type (
	// Options are the inputs of one build. Relative paths in Config resolve
	// against ProjectDir.
	Options struct {
		Config     *config.Config
		ProjectDir string
		// Engine defaults to bundler.Esbuild.
		Engine bundler.Engine
		// Logger receives one line per completed stage. Nil discards output.
		Logger *log.Logger
		// Clock stamps the archive entry and times the build. Nil uses the
		// system time.
		Clock artifact.Clock
		// Analyze adds esbuild's size breakdown to the report.
		Analyze bool
	}

	// Report summarizes a successful build.
	Report struct {
		Mode  config.Mode
		Pages []string
		// Dropped lists merged pages without a constant.
		Dropped []string
		// Defaulted lists constants injected as an empty string.
		Defaulted []string
		Warnings  []string
		Artifacts *artifact.Artifacts
		Summary   *bundler.Summary
		Analysis  string
		Duration  time.Duration
	}
)

// Run executes the build described by opts.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Config == nil {
		return nil, errors.New("pipeline: nil config")
	}
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	engine := opts.Engine
	if engine == nil {
		engine = bundler.Esbuild{}
	}

	now := time.Now
	if opts.Clock != nil {
		now = opts.Clock.Now
	}
	start := now()
	report := &Report{Mode: cfg.Mode}
	logger.Debug("starting build", "mode", cfg.Mode, "dir", opts.ProjectDir)

	// Merge
	assetRoot := resolve(opts.ProjectDir, cfg.AssetRoot)
	merged, err := assets.Merge(ctx, assetRoot)
	if err != nil {
		return nil, fail(StageMerge, assetRoot, err)
	}
	report.Pages = merged.Names()

	iconPath := resolve(opts.ProjectDir, cfg.IconPath())
	icon, err := assets.ReadIcon(iconPath)
	if err != nil {
		return nil, fail(StageIcon, iconPath, err)
	}
	logger.Info("✓ assets merged", "pages", len(report.Pages))

	// Bundle
	set := bundler.Defines(merged.Encoded(), pageTable(cfg.Pages), cfg.IconConstant, icon)
	report.Dropped = set.Dropped
	report.Defaulted = set.Defaulted
	for _, name := range set.Dropped {
		logger.Debug("page has no constant, skipped", "page", name)
	}
	for _, c := range set.Defaulted {
		logger.Debug("page not found, injecting empty string", "constant", c)
	}

	entry := resolve(opts.ProjectDir, cfg.Entry)
	req, err := request(cfg, entry, set.Defines, opts.Analyze)
	if err != nil {
		return nil, fail(StageBundle, entry, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fail(StageBundle, entry, err)
	}
	bundled, err := engine.Build(ctx, req)
	if err != nil {
		return nil, fail(StageBundle, entry, err)
	}
	report.Warnings = bundled.Warnings
	for _, w := range bundled.Warnings {
		logger.Warn("bundler", "message", w)
	}
	if opts.Analyze && bundled.Metafile != "" {
		if report.Summary, err = bundler.Summarize(bundled.Metafile); err != nil {
			logger.Warn("could not read metafile", "error", err)
		}
		report.Analysis = bundler.Analyze(bundled.Metafile, false)
	}
	logger.Info("✓ worker built", "bytes", len(bundled.Code))

	// Write
	w := &artifact.Writer{
		DistDir:     resolve(opts.ProjectDir, cfg.Output.Dir),
		RawName:     cfg.Output.Raw,
		ArchiveName: cfg.Output.Archive,
		EntryName:   cfg.Output.ArchiveEntry,
		Directive:   cfg.Output.Directive,
		Clock:       opts.Clock,
	}
	out, err := w.Write(ctx, bundled.Code)
	if err != nil {
		return nil, fail(StageWrite, w.DistDir, err)
	}
	report.Artifacts = out
	report.Duration = now().Sub(start)
	logger.Info("✓ done", "raw", out.RawPath, "archive", out.ArchivePath)

	return report, nil
}

func request(cfg *config.Config, entry string, defines map[string]string, metafile bool) (bundler.Request, error) {
	target, err := bundler.ParseTarget(cfg.Bundle.Target)
	if err != nil {
		return bundler.Request{}, err
	}
	platform, err := bundler.ParsePlatform(string(cfg.Bundle.Platform))
	if err != nil {
		return bundler.Request{}, err
	}
	return bundler.Request{
		Entry:     entry,
		Externals: cfg.Bundle.Externals,
		Target:    target,
		Platform:  platform,
		Defines:   defines,
		Metafile:  metafile,
	}, nil
}

func pageTable(pages []config.PageConstant) []bundler.PageConstant {
	table := make([]bundler.PageConstant, 0, len(pages))
	for _, p := range pages {
		table = append(table, bundler.PageConstant{Page: p.Page, Constant: p.Constant})
	}
	return table
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) || base == "" {
		return filepath.FromSlash(p)
	}
	return filepath.Join(base, filepath.FromSlash(p))
}

// fail wraps err with the stage and user-facing guidance for it.
func fail(stage Stage, resource string, err error) error {
	ctx := issue.NewErrorContext().WithResource(resource).WithIssue(IssueID(stage))
	switch stage {
	case StageMerge:
		ctx = ctx.WithOperation("merge page assets").
			WithSuggestion("Every directory with an index.html also needs style.css and script.js")
	case StageIcon:
		ctx = ctx.WithOperation("read icon").
			WithSuggestion("Place favicon.ico in the asset root or set 'icon' in workerpack.cue")
	case StageBundle:
		ctx = ctx.WithOperation("bundle worker").
			WithSuggestion("Check that the entry module exists and parses").
			WithSuggestion("Imports provided by the runtime must be listed in bundle.externals")
	case StageWrite:
		ctx = ctx.WithOperation("write artifacts").
			WithSuggestion("Check that the output directory is writable")
	}
	return ctx.Wrap(&StageError{Stage: stage, Err: err}).BuildError()
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// IssueID maps a failed stage to its issue catalog entry.
func IssueID(stage Stage) issue.Id {
	switch stage {
	case StageMerge:
		return issue.AssetMissingId
	case StageIcon:
		return issue.IconMissingId
	case StageBundle:
		return issue.BundleFailedId
	default:
		return issue.ArtifactWriteFailedId
	}
}

// Describe is a short human summary of the report, used by the CLI.
func (r *Report) Describe() string {
	if r.Artifacts == nil {
		return fmt.Sprintf("%d pages", len(r.Pages))
	}
	return fmt.Sprintf("%d pages, %d bytes in %s", len(r.Pages), r.Artifacts.Size, r.Duration.Round(time.Millisecond))
}
