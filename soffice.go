package office2png

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/officepix/go-office2png/internal/fileutil"
	"github.com/officepix/go-office2png/internal/process"
)

// commandRunner abstracts subprocess execution to enable testing
// without a real LibreOffice install.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// execRunner implements commandRunner using os/exec. The child is
// placed in its own process group so a timeout kills soffice and
// every helper process it spawned.
type execRunner struct{}

// Compile-time interface check.
var _ commandRunner = (*execRunner)(nil)

// killWaitDelay bounds how long Wait blocks on I/O after a kill.
const killWaitDelay = 5 * time.Second

func (r *execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.SysProcAttr = process.GroupAttr()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Cancel = func() error {
		if cmd.Process != nil {
			process.KillProcessGroup(cmd.Process.Pid)
		}
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = killWaitDelay

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// sofficeCandidates lists well-known install locations, searched in
// order before falling back to PATH.
func sofficeCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/LibreOffice.app/Contents/MacOS/soffice",
		}
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	default:
		return []string{
			"/usr/bin/soffice",
			"/usr/lib/libreoffice/program/soffice",
			"/opt/libreoffice/program/soffice",
			"/snap/bin/libreoffice.soffice",
		}
	}
}

// FindSoffice locates the soffice binary the pool would use. An empty
// explicit path means search well-known install locations, then PATH.
// Exported for diagnostics tooling.
func FindSoffice(explicitPath string) (string, error) {
	return locateSoffice(PoolConfig{SofficePath: explicitPath})
}

// locateSoffice resolves the soffice binary. An explicit configured
// path wins; otherwise well-known locations are tried, then PATH.
func locateSoffice(cfg PoolConfig) (string, error) {
	if cfg.SofficePath != "" {
		if fileutil.FileExists(cfg.SofficePath) {
			return cfg.SofficePath, nil
		}
		return "", fmt.Errorf("%w: %s", ErrSofficeNotFound, cfg.SofficePath)
	}

	for _, candidate := range sofficeCandidates() {
		if fileutil.FileExists(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath("soffice"); err == nil {
		return path, nil
	}
	if path, err := exec.LookPath("libreoffice"); err == nil {
		return path, nil
	}

	return "", ErrSofficeNotFound
}

// sofficeArgs builds the one-shot conversion command line. The unique
// UserInstallation profile is what allows instances to run in parallel:
// two soffice processes sharing a profile corrupt each other's state.
func sofficeArgs(profileDir, outputDir, inputPath string) []string {
	return []string{
		"--headless",
		"--invisible",
		"--nologo",
		"--nofirststartwizard",
		"--norestore",
		"-env:UserInstallation=file://" + profileDir,
		"--convert-to", "pdf:writer_pdf_Export",
		"--outdir", outputDir,
		inputPath,
	}
}
