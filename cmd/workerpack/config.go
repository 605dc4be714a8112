// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workerpack/workerpack/internal/config"
	"github.com/workerpack/workerpack/internal/issue"
)

// newConfigCommand creates the `workerpack config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var dir string

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage workerpack configuration",
		Long: `Manage the workerpack project configuration.

Configuration is read from workerpack.cue in the project directory, or from
the file given with --config. WORKERPACK_* environment variables override
file values, e.g. WORKERPACK_MODE=development.`,
	}
	cfgCmd.PersistentFlags().StringVarP(&dir, "dir", "d", ".", "project directory")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, source, err := app.loadConfig(cmd.Context(), rootFlags, dir)
			if err != nil {
				return app.reportFailure("Loading configuration failed", err, rootFlags.verbose, issue.ConfigLoadFailedId)
			}
			app.showConfig(cfg, source)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write workerpack.cue with the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfgPath, err := config.WriteDefault(dir, force)
			if err != nil {
				if force {
					return err
				}
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ ")+"Created "+CmdStyle.Render(cfgPath))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing workerpack.cue")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if rootFlags.configPath != "" {
				fmt.Fprintln(app.stdout, rootFlags.configPath)
				return
			}
			fmt.Fprintln(app.stdout, config.ProjectConfigPath(dir))
		},
	}

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration in CUE, TOML or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := config.Format(format)
			if ok, errs := f.IsValid(); !ok {
				return errs[0]
			}
			cfg, _, err := app.loadConfig(cmd.Context(), rootFlags, dir)
			if err != nil {
				return app.reportFailure("Loading configuration failed", err, rootFlags.verbose, issue.ConfigLoadFailedId)
			}
			out, err := config.Export(cfg, f)
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}
	dumpCmd.Flags().StringVarP(&format, "format", "f", string(config.FormatCUE), "output format (cue, toml, yaml)")

	cfgCmd.AddCommand(showCmd, initCmd, pathCmd, dumpCmd)
	return cfgCmd
}

// showConfig prints the effective configuration as styled key/value lines.
func (a *App) showConfig(cfg *config.Config, source string) {
	keyStyle := CmdStyle
	valueStyle := VerboseStyle
	line := func(key, value string) {
		fmt.Fprintf(a.stdout, "  %s %s\n", keyStyle.Render(key+":"), valueStyle.Render(value))
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Configuration"))
	if source == "" {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("from "+source))
	}
	fmt.Fprintln(a.stdout)

	line("mode", string(cfg.Mode))
	line("asset_root", cfg.AssetRoot)
	line("entry", cfg.Entry)
	line("icon", cfg.IconPath())
	line("icon_constant", cfg.IconConstant)

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, TitleStyle.Render("Pages"))
	for _, p := range cfg.Pages {
		line(p.Page, p.Constant)
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, TitleStyle.Render("Output"))
	line("dir", cfg.Output.Dir)
	line("raw", cfg.Output.Raw)
	line("archive", cfg.Output.Archive)
	line("archive_entry", cfg.Output.ArchiveEntry)
	line("directive", cfg.Output.Directive)

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, TitleStyle.Render("Bundle"))
	line("target", cfg.Bundle.Target)
	line("platform", string(cfg.Bundle.Platform))
	line("externals", strings.Join(cfg.Bundle.Externals, ", "))

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, TitleStyle.Render("UI"))
	line("verbose", fmt.Sprintf("%v", cfg.UI.Verbose))
}
