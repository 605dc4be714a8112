// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/workerpack/workerpack/internal/config"
	"github.com/workerpack/workerpack/internal/issue"
	"github.com/workerpack/workerpack/internal/watch"
)

// watchFlags holds the flags of the watch command.
type watchFlags struct {
	dir      string
	debounce time.Duration
}

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the worker whenever its sources change",
		Long: `Build once, then watch the asset root, the entry directory, the favicon
and workerpack.cue, rebuilding after changes settle. Failed rebuilds are
reported and the watcher keeps running. Press Ctrl+C to stop.`,
		Example: `  workerpack watch
  workerpack watch --dir ./site --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runWatch(cmd.Context(), rootFlags, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.dir, "dir", "d", ".", "project directory")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watch.DefaultDebounce, "quiet period before rebuilding")

	return cmd
}

func (a *App) runWatch(ctx context.Context, rootFlags *rootFlagValues, flags *watchFlags) error {
	cfg, _, err := a.loadConfig(ctx, rootFlags, flags.dir)
	if err != nil {
		return a.reportFailure("Watch failed", err, rootFlags.verbose, issue.ConfigLoadFailedId)
	}
	verbose := rootFlags.verbose || cfg.UI.Verbose

	// The initial build may fail; the watcher still starts so a fix
	// triggers a rebuild.
	a.rebuild(ctx, rootFlags, flags.dir, verbose)

	patterns, ignore := watchPatterns(cfg, flags.dir)
	w, err := watch.New(watch.Config{
		BaseDir:  flags.dir,
		Patterns: patterns,
		Ignore:   ignore,
		Debounce: flags.debounce,
		Logger:   a.logger(verbose),
		OnChange: func(ctx context.Context, changed []string) error {
			if verbose {
				fmt.Fprintln(a.stdout, VerboseStyle.Render("changed: "+strings.Join(changed, ", ")))
			}
			a.rebuild(ctx, rootFlags, flags.dir, verbose)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintln(a.stdout, SubtitleStyle.Render("watching "+flags.dir+" (Ctrl+C to stop)"))
	return w.Run(ctx)
}

// rebuild reloads the configuration and runs one build, reporting the
// outcome without returning an error.
func (a *App) rebuild(ctx context.Context, rootFlags *rootFlagValues, dir string, verbose bool) {
	cfg, _, err := a.loadConfig(ctx, rootFlags, dir)
	if err != nil {
		_ = a.reportFailure("Build failed", err, verbose, issue.ConfigLoadFailedId)
		return
	}
	report, err := a.build(ctx, cfg, dir, false, verbose || cfg.UI.Verbose)
	if err != nil {
		_ = a.reportFailure("Build failed", err, verbose, issue.ArtifactWriteFailedId)
		return
	}
	fmt.Fprintln(a.stdout, SuccessStyle.Render("✓ ")+report.Describe())
}

// watchPatterns returns the globs, relative to dir, that trigger a rebuild
// and the output directory to ignore.
func watchPatterns(cfg *config.Config, dir string) (patterns, ignore []string) {
	rel := func(p string) (string, bool) {
		if !filepath.IsAbs(p) {
			return path.Clean(filepath.ToSlash(p)), true
		}
		base, err := filepath.Abs(dir)
		if err != nil {
			return "", false
		}
		r, err := filepath.Rel(base, p)
		if err != nil || strings.HasPrefix(r, "..") {
			return "", false
		}
		return filepath.ToSlash(r), true
	}

	tree := func(p string) string {
		if p == "." {
			return "**"
		}
		return p + "/**"
	}

	if root, ok := rel(cfg.AssetRoot); ok {
		patterns = append(patterns, tree(root))
	}
	if entry, ok := rel(cfg.Entry); ok {
		patterns = append(patterns, tree(path.Dir(entry)))
	}
	if icon, ok := rel(cfg.IconPath()); ok {
		patterns = append(patterns, icon)
	}
	patterns = append(patterns, config.ConfigFileName+"."+config.ConfigFileExt)

	if out, ok := rel(cfg.Output.Dir); ok && out != "." {
		ignore = append(ignore, out+"/**")
	}
	return patterns, ignore
}
