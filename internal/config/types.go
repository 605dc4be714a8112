// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

const (
	// ModeProduction is the default build mode.
	ModeProduction Mode = "production"
	// ModeDevelopment is accepted for compatibility with existing project
	// setups. It produces the same output as ModeProduction.
	ModeDevelopment Mode = "development"

	// PlatformBrowser targets browser-like runtimes (edge workers).
	PlatformBrowser Platform = "browser"
	// PlatformNode targets Node.js.
	PlatformNode Platform = "node"
	// PlatformNeutral applies no platform-specific defaults.
	PlatformNeutral Platform = "neutral"
)

// knownTargets mirrors the ECMAScript targets the bundler accepts.
// Defined locally to avoid coupling config to internal/bundler.
var knownTargets = []string{
	"esnext", "es2015", "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022",
}

var (
	// ErrInvalidMode is returned when a Mode value is not recognized.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidPlatform is returned when a Platform value is not recognized.
	ErrInvalidPlatform = errors.New("invalid platform")
	// ErrInvalidTarget is returned when a bundle target is not recognized.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidPageConstant is the sentinel error wrapped by InvalidPageConstantError.
	ErrInvalidPageConstant = errors.New("invalid page constant")
	// ErrInvalidOutputConfig is the sentinel error wrapped by InvalidOutputConfigError.
	ErrInvalidOutputConfig = errors.New("invalid output config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Mode is the build mode carried into the pipeline.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}

	// Platform selects the bundler's platform defaults.
	Platform string

	// InvalidPlatformError is returned when a Platform value is not recognized.
	InvalidPlatformError struct {
		Value Platform
	}

	// InvalidTargetError is returned when a bundle target is not recognized.
	InvalidTargetError struct {
		Value string
	}

	// InvalidPageConstantError reports a bad entry in the page constant table.
	InvalidPageConstantError struct {
		Index  int
		Reason string
	}

	// InvalidOutputConfigError reports a bad output configuration.
	InvalidOutputConfigError struct {
		Reason string
	}

	// InvalidConfigError collects every field-level validation error of a Config.
	// errors.Is matches ErrInvalidConfig and the sentinel of each field error.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// PageConstant binds a page directory name to the symbolic constant the
	// bundler substitutes with that page's merged HTML.
	PageConstant struct {
		Page     string `json:"page" mapstructure:"page" toml:"page" yaml:"page"`
		Constant string `json:"constant" mapstructure:"constant" toml:"constant" yaml:"constant"`
	}

	// OutputConfig describes where build artifacts are written.
	OutputConfig struct {
		// Dir is the distribution directory, relative to the project directory.
		Dir string `json:"dir" mapstructure:"dir" toml:"dir" yaml:"dir"`
		// Raw is the file name of the combined module.
		Raw string `json:"raw" mapstructure:"raw" toml:"raw" yaml:"raw"`
		// Archive is the file name of the zip package.
		Archive string `json:"archive" mapstructure:"archive" toml:"archive" yaml:"archive"`
		// ArchiveEntry is the name of the single entry inside the zip package.
		ArchiveEntry string `json:"archive_entry" mapstructure:"archive_entry" toml:"archive_entry" yaml:"archive_entry"`
		// Directive is the line prepended to the generated module.
		Directive string `json:"directive" mapstructure:"directive" toml:"directive" yaml:"directive"`
	}

	// BundleConfig holds the bundler invocation settings.
	BundleConfig struct {
		Target    string   `json:"target" mapstructure:"target" toml:"target" yaml:"target"`
		Platform  Platform `json:"platform" mapstructure:"platform" toml:"platform" yaml:"platform"`
		Externals []string `json:"externals" mapstructure:"externals" toml:"externals" yaml:"externals"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging and detailed error output.
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose" yaml:"verbose"`
	}

	// Config holds the project configuration.
	Config struct {
		Mode Mode `json:"mode" mapstructure:"mode" toml:"mode" yaml:"mode"`
		// AssetRoot is the directory scanned for page directories.
		AssetRoot string `json:"asset_root" mapstructure:"asset_root" toml:"asset_root" yaml:"asset_root"`
		// Entry is the worker entry module handed to the bundler.
		Entry string `json:"entry" mapstructure:"entry" toml:"entry" yaml:"entry"`
		// Icon overrides the favicon location. Empty means <asset_root>/favicon.ico.
		Icon         string         `json:"icon" mapstructure:"icon" toml:"icon" yaml:"icon"`
		IconConstant string         `json:"icon_constant" mapstructure:"icon_constant" toml:"icon_constant" yaml:"icon_constant"`
		Pages        []PageConstant `json:"pages" mapstructure:"pages" toml:"pages" yaml:"pages"`
		Output       OutputConfig   `json:"output" mapstructure:"output" toml:"output" yaml:"output"`
		Bundle       BundleConfig   `json:"bundle" mapstructure:"bundle" toml:"bundle" yaml:"bundle"`
		UI           UIConfig       `json:"ui" mapstructure:"ui" toml:"ui" yaml:"ui"`
	}
)

// DefaultConfig returns the configuration used when no workerpack.cue exists.
func DefaultConfig() *Config {
	return &Config{
		Mode:         ModeProduction,
		AssetRoot:    "src/assets",
		Entry:        "src/worker.js",
		IconConstant: "__ICON__",
		Pages: []PageConstant{
			{Page: "panel", Constant: "__PANEL_HTML_CONTENT__"},
			{Page: "login", Constant: "__LOGIN_HTML_CONTENT__"},
			{Page: "error", Constant: "__ERROR_HTML_CONTENT__"},
			{Page: "secrets", Constant: "__SECRETS_HTML_CONTENT__"},
		},
		Output: OutputConfig{
			Dir:          "dist",
			Raw:          "worker.js",
			Archive:      "worker.zip",
			ArchiveEntry: "_worker.js",
			Directive:    "// @ts-nocheck",
		},
		Bundle: BundleConfig{
			Target:    "es2020",
			Platform:  PlatformBrowser,
			Externals: []string{"cloudflare:sockets"},
		},
	}
}

// IconPath returns the configured icon path, defaulting to favicon.ico in
// the asset root.
func (c *Config) IconPath() string {
	if c.Icon != "" {
		return c.Icon
	}
	return path.Join(c.AssetRoot, "favicon.ico")
}

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// IsValid returns whether the Mode is one of the defined modes.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeProduction, ModeDevelopment:
		return true, nil
	default:
		return false, []error{&InvalidModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q (valid: production, development)", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// String returns the string representation of the Platform.
func (p Platform) String() string { return string(p) }

// IsValid returns whether the Platform is one of the defined platforms.
func (p Platform) IsValid() (bool, []error) {
	switch p {
	case PlatformBrowser, PlatformNode, PlatformNeutral:
		return true, nil
	default:
		return false, []error{&InvalidPlatformError{Value: p}}
	}
}

// Error implements the error interface for InvalidPlatformError.
func (e *InvalidPlatformError) Error() string {
	return fmt.Sprintf("invalid platform %q (valid: browser, node, neutral)", e.Value)
}

// Unwrap returns ErrInvalidPlatform for errors.Is() compatibility.
func (e *InvalidPlatformError) Unwrap() error { return ErrInvalidPlatform }

// Error implements the error interface for InvalidTargetError.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q (valid: %s)", e.Value, strings.Join(knownTargets, ", "))
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// Error implements the error interface for InvalidPageConstantError.
func (e *InvalidPageConstantError) Error() string {
	return fmt.Sprintf("pages[%d]: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidPageConstant for errors.Is() compatibility.
func (e *InvalidPageConstantError) Unwrap() error { return ErrInvalidPageConstant }

// Error implements the error interface for InvalidOutputConfigError.
func (e *InvalidOutputConfigError) Error() string {
	return "output: " + e.Reason
}

// Unwrap returns ErrInvalidOutputConfig for errors.Is() compatibility.
func (e *InvalidOutputConfigError) Unwrap() error { return ErrInvalidOutputConfig }

// IsValid returns whether the BundleConfig has a known target and platform.
func (c BundleConfig) IsValid() (bool, []error) {
	var errs []error
	if !slices.Contains(knownTargets, strings.ToLower(c.Target)) {
		errs = append(errs, &InvalidTargetError{Value: c.Target})
	}
	if valid, fieldErrs := c.Platform.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// IsValid returns whether the OutputConfig names three distinct, non-empty
// outputs. The archive entry must not reuse the raw file name.
func (c OutputConfig) IsValid() (bool, []error) {
	var errs []error
	for _, f := range []struct{ name, value string }{
		{"dir", c.Dir},
		{"raw", c.Raw},
		{"archive", c.Archive},
		{"archive_entry", c.ArchiveEntry},
	} {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, &InvalidOutputConfigError{Reason: f.name + " must be non-empty"})
		}
	}
	if c.ArchiveEntry != "" && c.ArchiveEntry == c.Raw {
		errs = append(errs, &InvalidOutputConfigError{
			Reason: fmt.Sprintf("archive_entry %q must differ from raw %q", c.ArchiveEntry, c.Raw),
		})
	}
	if c.Raw != "" && c.Raw == c.Archive {
		errs = append(errs, &InvalidOutputConfigError{
			Reason: fmt.Sprintf("raw and archive both write %q", c.Raw),
		})
	}
	return len(errs) == 0, errs
}

// validatePages checks the page constant table: both fields set, page names
// unique, constants unique and distinct from the icon constant.
func validatePages(pages []PageConstant, iconConstant string) []error {
	var errs []error
	seenPages := make(map[string]int)
	seenConstants := map[string]string{}
	if iconConstant != "" {
		seenConstants[iconConstant] = "icon_constant"
	}

	for i, p := range pages {
		if strings.TrimSpace(p.Page) == "" {
			errs = append(errs, &InvalidPageConstantError{Index: i, Reason: "page must be non-empty"})
		}
		if strings.TrimSpace(p.Constant) == "" {
			errs = append(errs, &InvalidPageConstantError{Index: i, Reason: "constant must be non-empty"})
			continue
		}
		if first, ok := seenPages[p.Page]; ok && p.Page != "" {
			errs = append(errs, &InvalidPageConstantError{
				Index:  i,
				Reason: fmt.Sprintf("page %q already mapped by pages[%d]", p.Page, first),
			})
		} else {
			seenPages[p.Page] = i
		}
		if owner, ok := seenConstants[p.Constant]; ok {
			errs = append(errs, &InvalidPageConstantError{
				Index:  i,
				Reason: fmt.Sprintf("constant %q already used by %s", p.Constant, owner),
			})
		} else {
			seenConstants[p.Constant] = fmt.Sprintf("pages[%d]", i)
		}
	}
	return errs
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if strings.TrimSpace(c.AssetRoot) == "" {
		errs = append(errs, errors.New("asset_root must be non-empty"))
	}
	if strings.TrimSpace(c.Entry) == "" {
		errs = append(errs, errors.New("entry must be non-empty"))
	}
	if strings.TrimSpace(c.IconConstant) == "" {
		errs = append(errs, errors.New("icon_constant must be non-empty"))
	}
	errs = append(errs, validatePages(c.Pages, c.IconConstant)...)
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Bundle.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Validate returns nil for a valid Config and an *InvalidConfigError otherwise.
func (c Config) Validate() error {
	if valid, errs := c.IsValid(); !valid {
		return errs[0]
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
