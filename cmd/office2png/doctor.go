package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	office2png "github.com/officepix/go-office2png"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string      `json:"status"` // "ready", "warnings", "errors"
	LibreOffice sofficeInfo `json:"libreoffice"`
	Env         envInfo     `json:"environment"`
	System      systemInfo  `json:"system"`
	Warnings    []string    `json:"warnings,omitempty"`
	Errors      []string    `json:"errors,omitempty"`
}

// sofficeInfo holds LibreOffice detection results.
type sofficeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	PoolSize   int    `json:"pool_size"`
	SofficeEnv string `json:"office2png_soffice,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, deps *Dependencies) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor()

	if jsonOutput {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(deps.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor() *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			PoolSize:   office2png.ResolvePoolSize(0),
			SofficeEnv: os.Getenv("OFFICE2PNG_SOFFICE"),
		},
	}

	checkSoffice(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkSoffice detects the LibreOffice installation.
func checkSoffice(result *doctorResult) {
	path, err := office2png.FindSoffice(result.Env.SofficeEnv)
	if err != nil {
		result.Errors = append(result.Errors,
			"LibreOffice not found. Install LibreOffice or set OFFICE2PNG_SOFFICE")
		return
	}

	result.LibreOffice.Found = true
	result.LibreOffice.Path = path

	cmd := exec.Command(path, "--version")
	out, err := cmd.Output()
	if err == nil {
		result.LibreOffice.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get LibreOffice version: %v", err))
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "office2png-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "office2png doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "LibreOffice")
	if r.LibreOffice.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.LibreOffice.Path)
		if r.LibreOffice.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.LibreOffice.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] Auto pool size: %d\n", r.Env.PoolSize)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
