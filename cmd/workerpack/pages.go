// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/workerpack/workerpack/internal/assets"
	"github.com/workerpack/workerpack/internal/issue"
)

func newPagesCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List discovered pages and the constants they fill",
		Long: `List every page directory under the asset root together with the constant
its merged HTML is injected into. Pages without a constant are not injected;
constants without a page are injected as an empty string.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runPages(cmd.Context(), rootFlags, dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")

	return cmd
}

func (a *App) runPages(ctx context.Context, rootFlags *rootFlagValues, dir string) error {
	cfg, _, err := a.loadConfig(ctx, rootFlags, dir)
	if err != nil {
		return a.reportFailure("Listing pages failed", err, rootFlags.verbose, issue.ConfigLoadFailedId)
	}

	assetRoot := projectPath(dir, cfg.AssetRoot)
	names, err := assets.Discover(assetRoot)
	if err != nil {
		return a.reportFailure("Listing pages failed", err, rootFlags.verbose || cfg.UI.Verbose, issue.AssetMissingId)
	}

	constants := make(map[string]string, len(cfg.Pages))
	for _, p := range cfg.Pages {
		constants[p.Page] = p.Constant
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Pages")+SubtitleStyle.Render(" in "+assetRoot))
	if len(names) == 0 {
		fmt.Fprintln(a.stdout, VerboseStyle.Render("  (none)"))
	}
	for _, name := range names {
		c, ok := constants[name]
		if !ok {
			fmt.Fprintf(a.stdout, "  %s %s\n", name, VerboseStyle.Render("(not injected)"))
			continue
		}
		fmt.Fprintf(a.stdout, "  %s → %s\n", name, CmdStyle.Render(c))
	}

	for _, p := range cfg.Pages {
		if slices.Contains(names, p.Page) {
			continue
		}
		fmt.Fprintf(a.stdout, "  %s %s\n", WarningStyle.Render(p.Page), VerboseStyle.Render("(missing, "+p.Constant+` = "")`))
	}
	return nil
}
