package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunDoctorCmd(t *testing.T) {
	soffice := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(soffice, []byte("#!/bin/sh\necho LibreOffice 7.6\n"), 0o700); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OFFICE2PNG_SOFFICE", soffice)

	deps, stdout, _ := testDeps()
	if code := runDoctorCmd(nil, deps); code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
	out := stdout.String()
	if !strings.Contains(out, "LibreOffice") || !strings.Contains(out, soffice) {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "Status: Ready") {
		t.Errorf("status missing: %q", out)
	}
}

func TestRunDoctorCmd_JSON(t *testing.T) {
	soffice := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(soffice, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OFFICE2PNG_SOFFICE", soffice)

	deps, stdout, _ := testDeps()
	if code := runDoctorCmd([]string{"--json"}, deps); code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !result.LibreOffice.Found || result.LibreOffice.Path != soffice {
		t.Errorf("unexpected result: %+v", result.LibreOffice)
	}
	if !result.System.TempWritable {
		t.Error("temp dir should be writable in tests")
	}
}

func TestRunDoctorCmd_MissingSoffice(t *testing.T) {
	t.Setenv("OFFICE2PNG_SOFFICE", filepath.Join(t.TempDir(), "nope"))

	deps, stdout, _ := testDeps()
	if code := runDoctorCmd(nil, deps); code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(stdout.String(), "Not ready") {
		t.Errorf("unexpected output: %q", stdout.String())
	}
}
