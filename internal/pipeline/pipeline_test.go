// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/workerpack/workerpack/internal/artifact"
	"github.com/workerpack/workerpack/internal/assets"
	"github.com/workerpack/workerpack/internal/bundler"
	"github.com/workerpack/workerpack/internal/config"
	"github.com/workerpack/workerpack/internal/issue"
	"github.com/workerpack/workerpack/internal/testutil"
)

// recordingEngine captures requests and delegates to next when set.
type recordingEngine struct {
	next     bundler.Engine
	requests []bundler.Request
	err      error
}

func (e *recordingEngine) Build(ctx context.Context, req bundler.Request) (*bundler.Result, error) {
	e.requests = append(e.requests, req)
	if e.err != nil {
		return nil, e.err
	}
	if e.next == nil {
		return &bundler.Result{Code: []byte("export default {};\n")}, nil
	}
	return e.next.Build(ctx, req)
}

func scenarioProject(t *testing.T) string {
	t.Helper()
	return testutil.WriteProject(t, t.TempDir(), testutil.Project{
		Pages: map[string]testutil.Page{
			"panel": testutil.SimplePage("panel"),
			"login": testutil.SimplePage("login"),
			"error": testutil.SimplePage("error"),
		},
	})
}

func runOptions(dir string, engine bundler.Engine, logger *log.Logger) Options {
	return Options{
		Config:     config.DefaultConfig(),
		ProjectDir: dir,
		Engine:     engine,
		Logger:     logger,
		Clock:      testutil.NewFakeClock(time.Time{}),
	}
}

func TestRun_Scenario(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	engine := &recordingEngine{next: bundler.Esbuild{}}
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Prefix: "workerpack"})

	report, err := Run(context.Background(), runOptions(dir, engine, logger))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(engine.requests) != 1 {
		t.Fatalf("engine called %d times, want 1", len(engine.requests))
	}
	defines := engine.requests[0].Defines
	for _, c := range []string{"__PANEL_HTML_CONTENT__", "__LOGIN_HTML_CONTENT__", "__ERROR_HTML_CONTENT__"} {
		if v := defines[c]; len(v) <= 2 || !strings.HasPrefix(v, `"`) {
			t.Errorf("%s = %q, want a non-empty JSON string", c, v)
		}
	}
	if got := defines["__SECRETS_HTML_CONTENT__"]; got != `""` {
		t.Errorf("__SECRETS_HTML_CONTENT__ = %q, want %q", got, `""`)
	}
	if _, ok := defines["__ICON__"]; !ok {
		t.Error("icon constant missing")
	}
	if !slices.Equal(engine.requests[0].Externals, []string{"cloudflare:sockets"}) {
		t.Errorf("Externals = %v", engine.requests[0].Externals)
	}

	if !slices.Equal(report.Pages, []string{"error", "login", "panel"}) {
		t.Errorf("Pages = %v", report.Pages)
	}
	if !slices.Equal(report.Defaulted, []string{"__SECRETS_HTML_CONTENT__"}) {
		t.Errorf("Defaulted = %v", report.Defaulted)
	}
	if report.Mode != config.ModeProduction {
		t.Errorf("Mode = %s", report.Mode)
	}

	raw := testutil.MustReadFile(t, filepath.Join(dir, "dist", "worker.js"))
	if !strings.HasPrefix(raw, "// @ts-nocheck\n") {
		t.Errorf("raw output lacks directive: %.60q", raw)
	}
	if strings.Contains(raw, "__PANEL_HTML_CONTENT__") || !strings.Contains(raw, "<h1>panel</h1>") {
		t.Error("panel page was not injected")
	}
	if err := artifact.Verify(report.Artifacts.RawPath, report.Artifacts.ArchivePath, "_worker.js"); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	out := logs.String()
	for _, line := range []string{"✓ assets merged", "✓ worker built", "✓ done"} {
		if !strings.Contains(out, line) {
			t.Errorf("log output missing %q:\n%s", line, out)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	rawPath := filepath.Join(dir, "dist", "worker.js")

	if _, err := Run(context.Background(), runOptions(dir, nil, nil)); err != nil {
		t.Fatal(err)
	}
	first := testutil.MustReadFile(t, rawPath)

	if _, err := Run(context.Background(), runOptions(dir, nil, nil)); err != nil {
		t.Fatal(err)
	}
	if second := testutil.MustReadFile(t, rawPath); first != second {
		t.Error("raw output differs between identical builds")
	}
}

func TestRun_MissingSiblingFailsBeforeBundling(t *testing.T) {
	t.Parallel()

	for _, missing := range []string{assets.StyleFile, assets.ScriptFile} {
		t.Run(missing, func(t *testing.T) {
			t.Parallel()

			dir := scenarioProject(t)
			if err := os.Remove(filepath.Join(dir, "src", "assets", "login", missing)); err != nil {
				t.Fatal(err)
			}
			engine := &recordingEngine{}

			_, err := Run(context.Background(), runOptions(dir, engine, nil))
			if err == nil {
				t.Fatal("expected failure")
			}
			if len(engine.requests) != 0 {
				t.Error("engine must not be called when an asset is missing")
			}
			if _, statErr := os.Stat(filepath.Join(dir, "dist")); !errors.Is(statErr, fs.ErrNotExist) {
				t.Error("no output may be written when an asset is missing")
			}

			stage, ok := FailedStage(err)
			if !ok || stage != StageMerge {
				t.Errorf("FailedStage() = %q, %v; want merge", stage, ok)
			}
			var fae *assets.FileAccessError
			if !errors.As(err, &fae) {
				t.Errorf("expected *assets.FileAccessError in chain, got %v", err)
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Operation != "merge page assets" {
				t.Errorf("expected actionable merge error, got %v", err)
			}
		})
	}
}

func TestRun_MissingIcon(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, t.TempDir(), testutil.Project{NoIcon: true})
	engine := &recordingEngine{}

	_, err := Run(context.Background(), runOptions(dir, engine, nil))
	if stage, _ := FailedStage(err); stage != StageIcon {
		t.Fatalf("expected icon stage failure, got %v", err)
	}
	if id, ok := issue.IssueOf(err); !ok || id != issue.IconMissingId {
		t.Errorf("IssueOf() = %v, %v; want IconMissingId", id, ok)
	}
	if len(engine.requests) != 0 {
		t.Error("engine must not be called without an icon")
	}
}

func TestRun_BundleFailure(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, t.TempDir(), testutil.Project{Entry: "export default {\n"})

	_, err := Run(context.Background(), runOptions(dir, nil, nil))
	if err == nil {
		t.Fatal("expected bundle failure")
	}
	if stage, _ := FailedStage(err); stage != StageBundle {
		t.Errorf("expected bundle stage, got %v", err)
	}
	if !errors.Is(err, bundler.ErrBuildFailed) {
		t.Errorf("expected ErrBuildFailed in chain, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "dist")); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("no output may be written when bundling fails")
	}
}

func TestRun_WriteFailure(t *testing.T) {
	t.Parallel()

	dir := scenarioProject(t)
	testutil.MustMkdirAll(t, filepath.Join(dir, "dist", "worker.zip"), 0o755)

	_, err := Run(context.Background(), runOptions(dir, &recordingEngine{}, nil))
	if stage, _ := FailedStage(err); stage != StageWrite {
		t.Fatalf("expected write stage failure, got %v", err)
	}
	if IssueID(StageWrite) != issue.ArtifactWriteFailedId {
		t.Error("write stage should map to the artifact issue")
	}
}

func TestRun_CustomPageTable(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, t.TempDir(), testutil.Project{
		Pages: map[string]testutil.Page{
			"home":  testutil.SimplePage("home"),
			"about": testutil.SimplePage("about"),
		},
		Entry: "export const home = __HOME_HTML_CONTENT__;\n",
	})
	cfg := config.DefaultConfig()
	cfg.Pages = []config.PageConstant{{Page: "home", Constant: "__HOME_HTML_CONTENT__"}}
	cfg.Mode = config.ModeDevelopment

	engine := &recordingEngine{next: bundler.Esbuild{}}
	opts := runOptions(dir, engine, nil)
	opts.Config = cfg
	opts.Analyze = true

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !slices.Equal(report.Dropped, []string{"about"}) {
		t.Errorf("Dropped = %v, want [about]", report.Dropped)
	}
	if len(engine.requests[0].Defines) != 2 {
		t.Errorf("expected home and icon constants, got %v", engine.requests[0].Defines)
	}
	if report.Mode != config.ModeDevelopment {
		t.Errorf("Mode = %s", report.Mode)
	}
	if report.Summary == nil || report.Analysis == "" {
		t.Error("Analyze should fill Summary and Analysis")
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, runOptions(scenarioProject(t), &recordingEngine{}, nil))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_NilConfig(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestIssueID(t *testing.T) {
	t.Parallel()

	tests := map[Stage]issue.Id{
		StageMerge:  issue.AssetMissingId,
		StageIcon:   issue.IconMissingId,
		StageBundle: issue.BundleFailedId,
		StageWrite:  issue.ArtifactWriteFailedId,
	}
	for stage, want := range tests {
		if got := IssueID(stage); got != want {
			t.Errorf("IssueID(%s) = %d, want %d", stage, got, want)
		}
	}
}

// slowEngine advances the fake clock as if bundling took d.
type slowEngine struct {
	clock *testutil.FakeClock
	d     time.Duration
}

func (e slowEngine) Build(context.Context, bundler.Request) (*bundler.Result, error) {
	e.clock.Advance(e.d)
	return &bundler.Result{Code: []byte("export default {};\n")}, nil
}

func TestRun_DurationFromClock(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(time.Time{})
	opts := runOptions(scenarioProject(t), slowEngine{clock: clock, d: 1500 * time.Millisecond}, nil)
	opts.Clock = clock

	report, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", report.Duration)
	}
	if want := "3 pages"; !strings.HasPrefix(report.Describe(), want) {
		t.Errorf("Describe() = %q, want prefix %q", report.Describe(), want)
	}
}
