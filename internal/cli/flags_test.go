package cli

import (
	"flag"
	"io"
	"testing"
)

func TestHelpFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := AddHelpVersionFlags(fs, "", "")

	if err := fs.Parse([]string{"-h"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !flags.Help {
		t.Fatalf("expected help flag set")
	}
}

func TestVersionFlag(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := AddHelpVersionFlags(fs, "", "")

	if err := fs.Parse([]string{"--version"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !flags.Version {
		t.Fatalf("expected version flag set")
	}
}

func TestVisitedOnlyReportsSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Int("frames", 0, "")
	fs.String("config", "", "")

	if err := fs.Parse([]string{"-frames", "0"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	visited := Visited(fs)
	if !visited["frames"] {
		t.Fatalf("expected frames to be visited even with a zero value")
	}
	if visited["config"] {
		t.Fatalf("expected config to be unvisited")
	}
	if len(Visited(nil)) != 0 {
		t.Fatalf("expected empty result for nil flag set")
	}
}
