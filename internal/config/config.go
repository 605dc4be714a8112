// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workerpack/workerpack/internal/issue"
	"github.com/workerpack/workerpack/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "workerpack"
	// ConfigFileName is the name of the project config file (without extension).
	ConfigFileName = "workerpack"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. WORKERPACK_MODE.
	EnvPrefix = "WORKERPACK"
)

//go:embed config_schema.cue
var configSchema []byte

// ProjectConfigPath returns the path of the config file inside projectDir.
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ConfigFileName+"."+ConfigFileExt)
}

// loadWithOptions loads defaults, the project CUE file (if any) and
// WORKERPACK_* environment overrides, in increasing order of precedence.
// It returns the config and the path of the file that was read ("" when
// only defaults apply).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'workerpack config init' to create a project config").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		projectDir := opts.ProjectDir
		if projectDir == "" {
			projectDir = "."
		}
		if candidate := ProjectConfigPath(projectDir); fileExists(candidate) {
			resolvedPath = candidate
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Compare with 'workerpack config dump' for the expected shape").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Each page and constant may appear only once in 'pages'").
			WithSuggestion("output.archive_entry must differ from output.raw").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("mode", string(defaults.Mode))
	v.SetDefault("asset_root", defaults.AssetRoot)
	v.SetDefault("entry", defaults.Entry)
	v.SetDefault("icon", defaults.Icon)
	v.SetDefault("icon_constant", defaults.IconConstant)
	v.SetDefault("pages", defaults.Pages)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.raw", defaults.Output.Raw)
	v.SetDefault("output.archive", defaults.Output.Archive)
	v.SetDefault("output.archive_entry", defaults.Output.ArchiveEntry)
	v.SetDefault("output.directive", defaults.Output.Directive)
	v.SetDefault("bundle.target", defaults.Bundle.Target)
	v.SetDefault("bundle.platform", string(defaults.Bundle.Platform))
	v.SetDefault("bundle.externals", defaults.Bundle.Externals)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// loadCUEIntoViper validates a CUE file against #Config and merges the
// decoded map into v. Config fields are optional, so values are not required
// to be concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](
		configSchema,
		data,
		"#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteDefault writes the default configuration to workerpack.cue inside
// projectDir. An existing file is left untouched unless force is set.
func WriteDefault(projectDir string, force bool) (string, error) {
	cfgPath := ProjectConfigPath(projectDir)
	if fileExists(cfgPath) && !force {
		return cfgPath, fmt.Errorf("%s already exists", cfgPath)
	}

	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// workerpack project configuration\n\n")

	fmt.Fprintf(&sb, "mode: %q\n", cfg.Mode)
	fmt.Fprintf(&sb, "asset_root: %q\n", cfg.AssetRoot)
	fmt.Fprintf(&sb, "entry: %q\n", cfg.Entry)
	if cfg.Icon != "" {
		fmt.Fprintf(&sb, "icon: %q\n", cfg.Icon)
	}
	fmt.Fprintf(&sb, "icon_constant: %q\n", cfg.IconConstant)

	sb.WriteString("\npages: [\n")
	for _, p := range cfg.Pages {
		fmt.Fprintf(&sb, "\t{page: %q, constant: %q},\n", p.Page, p.Constant)
	}
	sb.WriteString("]\n")

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Output.Dir)
	fmt.Fprintf(&sb, "\traw: %q\n", cfg.Output.Raw)
	fmt.Fprintf(&sb, "\tarchive: %q\n", cfg.Output.Archive)
	fmt.Fprintf(&sb, "\tarchive_entry: %q\n", cfg.Output.ArchiveEntry)
	fmt.Fprintf(&sb, "\tdirective: %q\n", cfg.Output.Directive)
	sb.WriteString("}\n")

	sb.WriteString("\nbundle: {\n")
	fmt.Fprintf(&sb, "\ttarget: %q\n", cfg.Bundle.Target)
	fmt.Fprintf(&sb, "\tplatform: %q\n", cfg.Bundle.Platform)
	sb.WriteString("\texternals: [")
	for i, ext := range cfg.Bundle.Externals {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", ext)
	}
	sb.WriteString("]\n")
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}
