package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func testDeps() (*Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Dependencies{
		Now:    time.Now,
		Stdout: stdout,
		Stderr: stderr,
	}, stdout, stderr
}

func TestRun_NoArgs(t *testing.T) {
	t.Parallel()

	deps, _, stderr := testDeps()
	if code := run(nil, deps); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	deps, _, stderr := testDeps()
	if code := run([]string{"frobnicate"}, deps); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "Unknown command: frobnicate") {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := testDeps()
	if code := run([]string{"version"}, deps); code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout.String(), "office2png") {
		t.Errorf("unexpected stdout: %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"help"}, "Commands:"},
		{[]string{"help", "convert"}, "office2png convert"},
		{[]string{"help", "info"}, "office2png info"},
		{[]string{"--help"}, "Commands:"},
	}

	for _, tt := range tests {
		deps, stdout, _ := testDeps()
		if code := run(tt.args, deps); code != ExitSuccess {
			t.Errorf("run(%v) = %d, want %d", tt.args, code, ExitSuccess)
		}
		if !strings.Contains(stdout.String(), tt.want) {
			t.Errorf("run(%v) stdout missing %q", tt.args, tt.want)
		}
	}
}

func TestRun_ConvertNoInput(t *testing.T) {
	t.Parallel()

	deps, _, _ := testDeps()
	if code := run([]string{"convert"}, deps); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
}
