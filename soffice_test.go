package office2png

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSofficeArgs(t *testing.T) {
	t.Parallel()

	args := sofficeArgs("/work/profile-0", "/work/pdfs/job", "/docs/report.docx")

	joined := strings.Join(args, " ")
	for _, want := range []string{
		"--headless",
		"--invisible",
		"--norestore",
		"-env:UserInstallation=file:///work/profile-0",
		"--convert-to pdf:writer_pdf_Export",
		"--outdir /work/pdfs/job",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if args[len(args)-1] != "/docs/report.docx" {
		t.Errorf("input path must be last, got %q", args[len(args)-1])
	}
}

func TestLocateSoffice_ExplicitPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := locateSoffice(PoolConfig{SofficePath: path})
	if err != nil {
		t.Fatalf("locateSoffice: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}
}

func TestLocateSoffice_ExplicitPathMissing(t *testing.T) {
	t.Parallel()

	_, err := locateSoffice(PoolConfig{SofficePath: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, ErrSofficeNotFound) {
		t.Errorf("got %v, want ErrSofficeNotFound", err)
	}
}

func TestFindSoffice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := FindSoffice(path)
	if err != nil || got != path {
		t.Errorf("got (%q, %v), want (%q, nil)", got, err, path)
	}
}
