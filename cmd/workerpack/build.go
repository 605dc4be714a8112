// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/workerpack/workerpack/internal/config"
	"github.com/workerpack/workerpack/internal/issue"
	"github.com/workerpack/workerpack/internal/pipeline"
)

// buildFlags holds the flags of the build command.
type buildFlags struct {
	dir     string
	mode    string
	analyze bool
}

func newBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge pages, bundle the worker and write the artifacts",
		Long: `Merge every page under the asset root, inject the merged pages and the
favicon into the worker entry, bundle it, and write the raw module and its
zip package into the output directory.`,
		Example: `  workerpack build
  workerpack build --dir ./site --mode development
  workerpack build --analyze`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runBuild(cmd.Context(), rootFlags, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.dir, "dir", "d", ".", "project directory")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "build mode (production or development)")
	cmd.Flags().BoolVar(&flags.analyze, "analyze", false, "print a size breakdown of the bundled module")

	return cmd
}

func (a *App) runBuild(ctx context.Context, rootFlags *rootFlagValues, flags *buildFlags) error {
	cfg, _, err := a.loadConfig(ctx, rootFlags, flags.dir)
	if err != nil {
		return a.reportFailure("Build failed", err, rootFlags.verbose, issue.ConfigLoadFailedId)
	}
	if flags.mode != "" {
		mode := config.Mode(flags.mode)
		if ok, errs := mode.IsValid(); !ok {
			return a.reportFailure("Build failed", errs[0], rootFlags.verbose, issue.ConfigLoadFailedId)
		}
		cfg.Mode = mode
	}

	verbose := rootFlags.verbose || cfg.UI.Verbose
	report, err := a.build(ctx, cfg, flags.dir, flags.analyze, verbose)
	if err != nil {
		return a.reportFailure("Build failed", err, verbose, issue.ArtifactWriteFailedId)
	}

	fmt.Fprintln(a.stdout, SuccessStyle.Render("✓ ")+report.Describe())
	if verbose {
		fmt.Fprintln(a.stdout, VerboseStyle.Render("  mode:    ")+string(report.Mode))
		fmt.Fprintln(a.stdout, VerboseStyle.Render("  raw:     ")+CmdStyle.Render(report.Artifacts.RawPath))
		fmt.Fprintln(a.stdout, VerboseStyle.Render("  archive: ")+CmdStyle.Render(report.Artifacts.ArchivePath))
	}
	for _, c := range report.Defaulted {
		fmt.Fprintln(a.stdout, WarningStyle.Render("! ")+CmdStyle.Render(c)+VerboseStyle.Render(" has no page, injected as an empty string"))
	}
	if flags.analyze && report.Analysis != "" {
		fmt.Fprintln(a.stdout)
		fmt.Fprint(a.stdout, report.Analysis)
	}
	return nil
}

// build runs one pipeline pass for the project in dir.
func (a *App) build(ctx context.Context, cfg *config.Config, dir string, analyze, verbose bool) (*pipeline.Report, error) {
	return pipeline.Run(ctx, pipeline.Options{
		Config:     cfg,
		ProjectDir: dir,
		Engine:     a.Engine,
		Logger:     a.logger(verbose),
		Clock:      a.Clock,
		Analyze:    analyze,
	})
}

// reportFailure prints the failure line and, when verbose, the catalog
// entry attached to err (fallback when err carries none). It returns an
// already-reported ExitError.
func (a *App) reportFailure(title string, err error, verbose bool, fallback issue.Id) error {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("✗ "+title+": ")+formatErrorForDisplay(err, verbose))
	if verbose {
		id, ok := issue.IssueOf(err)
		if !ok {
			id = fallback
		}
		renderIssue(a.stderr, id)
	}
	return &ExitError{Code: 1}
}

// projectPath resolves a configured path against the project directory.
func projectPath(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return filepath.FromSlash(p)
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
