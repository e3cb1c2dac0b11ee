package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tracked/internal/logging"
	"tracked/internal/metrics"
	"tracked/internal/version"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testDeps() appDeps {
	return appDeps{
		Metrics: &metrics.Registry{},
		LogOut:  io.Discard,
		NoWatch: true,
	}
}

func TestParseArgsHelp(t *testing.T) {
	var errOut bytes.Buffer
	_, err := parseArgs([]string{"-h"}, &errOut)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
	if !strings.Contains(errOut.String(), "Usage: tracked") {
		t.Fatalf("expected usage output, got %q", errOut.String())
	}
}

func TestParseArgsRejectsBadValues(t *testing.T) {
	cases := [][]string{
		{"-frames", "-1"},
		{"-log-level", "loud"},
		{"extra"},
		{"-unknown"},
	}
	for _, args := range cases {
		if _, err := parseArgs(args, io.Discard); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestOptionsOverridesOnlyVisitedFlags(t *testing.T) {
	options, err := parseArgs([]string{"-frames", "0", "-resources", "data", "-log-level", "debug"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	overrides := options.overrides()
	if got, ok := overrides["frame.frames"]; !ok || got != int64(0) {
		t.Fatalf("expected explicit zero frames override, got %v", got)
	}
	if overrides["resources.dir"] != "data" {
		t.Fatalf("expected resources dir override, got %v", overrides["resources.dir"])
	}
	if overrides["log.level"] != "debug" {
		t.Fatalf("expected log level override, got %v", overrides["log.level"])
	}
	if _, ok := overrides["frame.tick"]; ok {
		t.Fatalf("expected no tick override")
	}
}

func TestRunPrintsVersion(t *testing.T) {
	previous := version.Version
	version.Version = "1.0.0"
	t.Cleanup(func() { version.Version = previous })

	var out bytes.Buffer
	if code := runWithDeps([]string{"-version"}, &out, io.Discard, testDeps(), nil); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.TrimSpace(out.String()) != "tracked version 1.0.0" {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestRunWalksRouteForFrameBudget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "route.yaml"), "orbit: 0.1\nwaypoints:\n  - {z: 3}\n")

	var out, errOut bytes.Buffer
	args := []string{"-resources", dir, "-frames", "20", "-tick", "1ms", "-metrics"}
	if code := runWithDeps(args, &out, &errOut, testDeps(), nil); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "tracked_frames_total 20") {
		t.Fatalf("expected frame count in metrics, got %q", out.String())
	}
	if !strings.Contains(out.String(), `tracked_resource_reloads_total{resource="route.yaml"} 1`) {
		t.Fatalf("expected route reload in metrics, got %q", out.String())
	}
}

func TestRunUsesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKED_RESOURCES_DIR", dir)
	t.Setenv("TRACKED_FRAMES", "3")
	t.Setenv("TRACKED_TICK", "1ms")

	var out bytes.Buffer
	if code := runWithDeps([]string{"-metrics"}, &out, io.Discard, testDeps(), nil); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out.String(), "tracked_frames_total 3") {
		t.Fatalf("expected 3 frames, got %q", out.String())
	}
}

func TestRunRejectsBrokenSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracked.toml")
	writeFile(t, path, "[frame\ntick = ")

	var errOut bytes.Buffer
	code := runWithDeps([]string{"-config", path, "-frames", "1"}, io.Discard, &errOut, testDeps(), nil)
	if code != exitConfig {
		t.Fatalf("expected exit %d, got %d", exitConfig, code)
	}
	if !strings.Contains(errOut.String(), "load settings") {
		t.Fatalf("expected settings error, got %q", errOut.String())
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	dir := t.TempDir()
	signals := func(_ *logging.Logger, cancel context.CancelFunc) func() {
		timer := time.AfterFunc(20*time.Millisecond, cancel)
		return func() { timer.Stop() }
	}

	done := make(chan int, 1)
	go func() {
		done <- runWithDeps([]string{"-resources", dir, "-tick", "1ms"}, io.Discard, io.Discard, testDeps(), signals)
	}()
	select {
	case code := <-done:
		if code != exitOK {
			t.Fatalf("expected exit 0 after cancel, got %d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected run to stop after cancel")
	}
}
