// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/workerpack/workerpack/internal/config"
	"github.com/workerpack/workerpack/internal/testutil"
)

func defaultProject(t *testing.T) string {
	t.Helper()

	return testutil.WriteProject(t, t.TempDir(), testutil.Project{
		Pages: map[string]testutil.Page{
			"panel": testutil.SimplePage("Panel"),
			"login": testutil.SimplePage("Login"),
			"error": testutil.SimplePage("Error"),
			"about": testutil.SimplePage("About"),
		},
	})
}

func wantExitCode(t *testing.T, err error, code int) {
	t.Helper()

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitErr.Code != code {
		t.Errorf("exit code = %d, want %d", exitErr.Code, code)
	}
}

func TestBuildThenVerify(t *testing.T) {
	t.Parallel()

	dir := defaultProject(t)
	app, stdout, stderr := testApp(t)

	if err := execute(t, app, "build", "--dir", dir); err != nil {
		t.Fatalf("build error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "✓ 4 pages") {
		t.Errorf("build output = %q, want success line with page count", stdout.String())
	}
	if !strings.Contains(stdout.String(), "__SECRETS_HTML_CONTENT__") {
		t.Errorf("build output = %q, want warning for the defaulted constant", stdout.String())
	}

	raw := testutil.MustReadFile(t, filepath.Join(dir, "dist", "worker.js"))
	if !strings.HasPrefix(raw, "// @ts-nocheck\n") {
		t.Errorf("raw module starts with %q, want the directive line", raw[:min(len(raw), 20)])
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "worker.zip")); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	stdout.Reset()
	if err := execute(t, app, "verify", "--dir", dir); err != nil {
		t.Fatalf("verify error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "_worker.js") {
		t.Errorf("verify output = %q, want the archive entry name", stdout.String())
	}
}

func TestBuild_AnalyzePrintsBreakdown(t *testing.T) {
	t.Parallel()

	dir := defaultProject(t)
	app, stdout, stderr := testApp(t)

	if err := execute(t, app, "build", "--dir", dir, "--analyze"); err != nil {
		t.Fatalf("build error = %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "worker.js") {
		t.Errorf("analyze output = %q, want the entry in the breakdown", stdout.String())
	}
}

func TestBuild_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		args    []string
		wantErr string
	}{
		{
			name: "missing sibling asset",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				if err := os.Remove(filepath.Join(dir, "src", "assets", "login", "style.css")); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: "style.css",
		},
		{
			name: "missing icon",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				if err := os.Remove(filepath.Join(dir, "src", "assets", "favicon.ico")); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: "favicon.ico",
		},
		{
			name: "syntax error in entry",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				testutil.MustWriteFile(t, filepath.Join(dir, "src", "worker.js"), "export default {\n")
			},
			wantErr: "Build failed",
		},
		{
			name:    "invalid mode flag",
			args:    []string{"--mode", "staging"},
			wantErr: "staging",
		},
		{
			name: "invalid config file",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				testutil.MustWriteFile(t, config.ProjectConfigPath(dir), `mode: "staging"`+"\n")
			},
			wantErr: "load configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := defaultProject(t)
			if tt.setup != nil {
				tt.setup(t, dir)
			}
			app, _, stderr := testApp(t)

			err := execute(t, app, append([]string{"build", "--dir", dir}, tt.args...)...)
			wantExitCode(t, err, 1)
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
			if _, statErr := os.Stat(filepath.Join(dir, "dist", "worker.js")); statErr == nil {
				t.Error("failed build must not write the raw module")
			}
		})
	}
}

func TestBuild_VerboseRendersIssue(t *testing.T) {
	t.Parallel()

	dir := defaultProject(t)
	if err := os.Remove(filepath.Join(dir, "src", "assets", "panel", "script.js")); err != nil {
		t.Fatal(err)
	}
	app, _, stderr := testApp(t)

	err := execute(t, app, "build", "--dir", dir, "--verbose")
	wantExitCode(t, err, 1)
	if !strings.Contains(stderr.String(), "Error chain:") {
		t.Errorf("verbose stderr = %q, want the error chain", stderr.String())
	}
}

func TestVerify_WithoutArtifacts(t *testing.T) {
	t.Parallel()

	dir := defaultProject(t)
	app, _, stderr := testApp(t)

	err := execute(t, app, "verify", "--dir", dir)
	wantExitCode(t, err, 1)
	if !strings.Contains(stderr.String(), "Verify failed") {
		t.Errorf("stderr = %q, want the verify failure line", stderr.String())
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	dir := defaultProject(t)
	app, stdout, stderr := testApp(t)

	if err := execute(t, app, "pages", "--dir", dir); err != nil {
		t.Fatalf("pages error = %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"panel → __PANEL_HTML_CONTENT__",
		"login → __LOGIN_HTML_CONTENT__",
		"error → __ERROR_HTML_CONTENT__",
		"about (not injected)",
		`secrets (missing, __SECRETS_HTML_CONTENT__ = "")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pages output missing %q\n%s", want, out)
		}
	}
}

func TestPages_MissingAssetRoot(t *testing.T) {
	t.Parallel()

	app, _, stderr := testApp(t)
	err := execute(t, app, "pages", "--dir", t.TempDir())
	wantExitCode(t, err, 1)
	if !strings.Contains(stderr.String(), "Listing pages failed") {
		t.Errorf("stderr = %q, want the failure line", stderr.String())
	}
}

func TestConfigInitShowDump(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	app, stdout, _ := testApp(t)

	if err := execute(t, app, "config", "init", "--dir", dir); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	cfgPath := config.ProjectConfigPath(dir)
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config init did not write %s: %v", cfgPath, err)
	}

	if err := execute(t, app, "config", "init", "--dir", dir); err == nil {
		t.Error("second config init without --force must fail")
	}
	if err := execute(t, app, "config", "init", "--dir", dir, "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	stdout.Reset()
	if err := execute(t, app, "config", "show", "--dir", dir); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(stdout.String(), cfgPath) || !strings.Contains(stdout.String(), "__PANEL_HTML_CONTENT__") {
		t.Errorf("config show output = %q, want source path and page table", stdout.String())
	}

	formats := []struct {
		format string
		want   string
	}{
		{"cue", `mode: "production"`},
		{"toml", "[output]"},
		{"yaml", "mode: production"},
	}
	for _, f := range formats {
		stdout.Reset()
		if err := execute(t, app, "config", "dump", "--dir", dir, "--format", f.format); err != nil {
			t.Fatalf("config dump --format %s error = %v", f.format, err)
		}
		if !strings.Contains(stdout.String(), f.want) {
			t.Errorf("config dump --format %s = %q, want %q", f.format, stdout.String(), f.want)
		}
	}
}

func TestConfigDump_InvalidFormat(t *testing.T) {
	t.Parallel()

	app, _, _ := testApp(t)
	err := execute(t, app, "config", "dump", "--dir", t.TempDir(), "--format", "json")
	if !errors.Is(err, config.ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	t.Parallel()

	app, stdout, _ := testApp(t)
	if err := execute(t, app, "config", "show", "--dir", t.TempDir()); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(stdout.String(), "(using defaults)") {
		t.Errorf("config show output = %q, want defaults marker", stdout.String())
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"project file", []string{"config", "path", "--dir", dir}, config.ProjectConfigPath(dir)},
		{"explicit file", []string{"--config", "custom.cue", "config", "path"}, "custom.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, stdout, _ := testApp(t)
			if err := execute(t, app, tt.args...); err != nil {
				t.Fatalf("config path error = %v", err)
			}
			if got := strings.TrimSpace(stdout.String()); got != tt.want {
				t.Errorf("config path = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWatchPatterns(t *testing.T) {
	t.Parallel()

	withDotOutput := config.DefaultConfig()
	withDotOutput.Entry = "worker.js"
	withDotOutput.Output.Dir = "."

	withIcon := config.DefaultConfig()
	withIcon.Icon = "static/icon.ico"

	tests := []struct {
		name         string
		cfg          *config.Config
		wantPatterns []string
		wantIgnore   []string
	}{
		{
			name:         "defaults",
			cfg:          config.DefaultConfig(),
			wantPatterns: []string{"src/assets/**", "src/**", "src/assets/favicon.ico", "workerpack.cue"},
			wantIgnore:   []string{"dist/**"},
		},
		{
			name:         "entry at project root and output in place",
			cfg:          withDotOutput,
			wantPatterns: []string{"src/assets/**", "**", "src/assets/favicon.ico", "workerpack.cue"},
		},
		{
			name:         "custom icon",
			cfg:          withIcon,
			wantPatterns: []string{"src/assets/**", "src/**", "static/icon.ico", "workerpack.cue"},
			wantIgnore:   []string{"dist/**"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			patterns, ignore := watchPatterns(tt.cfg, ".")
			if !slices.Equal(patterns, tt.wantPatterns) {
				t.Errorf("patterns = %v, want %v", patterns, tt.wantPatterns)
			}
			if !slices.Equal(ignore, tt.wantIgnore) {
				t.Errorf("ignore = %v, want %v", ignore, tt.wantIgnore)
			}
		})
	}
}
