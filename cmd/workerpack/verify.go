// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workerpack/workerpack/internal/artifact"
	"github.com/workerpack/workerpack/internal/issue"
)

func newVerifyCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the zip package matches the raw module",
		Long: `Open the zip package in the output directory and check that it holds a
single entry, with the configured name, whose content equals the raw module.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runVerify(cmd.Context(), rootFlags, dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")

	return cmd
}

func (a *App) runVerify(ctx context.Context, rootFlags *rootFlagValues, dir string) error {
	cfg, _, err := a.loadConfig(ctx, rootFlags, dir)
	if err != nil {
		return a.reportFailure("Verify failed", err, rootFlags.verbose, issue.ConfigLoadFailedId)
	}

	distDir := projectPath(dir, cfg.Output.Dir)
	rawPath := projectPath(distDir, cfg.Output.Raw)
	archivePath := projectPath(distDir, cfg.Output.Archive)

	if err := artifact.Verify(rawPath, archivePath, cfg.Output.ArchiveEntry); err != nil {
		return a.reportFailure("Verify failed", err, rootFlags.verbose || cfg.UI.Verbose, issue.ArchiveMismatchId)
	}

	fmt.Fprintln(a.stdout, SuccessStyle.Render("✓ ")+CmdStyle.Render(archivePath)+
		" holds "+CmdStyle.Render(cfg.Output.ArchiveEntry)+" matching "+CmdStyle.Render(rawPath))
	return nil
}
