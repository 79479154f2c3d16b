package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/user/clipsampler/internal/testfixture"
)

// buildBinary builds the CLI, or returns CLIPSAMPLER_BINARY when a pre-built binary is provided.
func buildBinary(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("CLIPSAMPLER_BINARY"); path != "" {
		return path
	}

	name := "clipsampler-test"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	bin := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	return bin
}

// TestSampleBinary runs the built CLI on a generated video with debug output enabled.
func TestSampleBinary(t *testing.T) {
	if os.Getenv("CLIPSAMPLER_E2E") != "1" {
		t.Skip("Skipping E2E test (set CLIPSAMPLER_E2E=1 to run)")
	}

	video := testfixture.MP4(t, testfixture.Default())
	bin := buildBinary(t)
	outDir := t.TempDir()

	cmd := exec.Command(bin,
		"sample",
		"--clips", "2",
		"--frames", "4",
		"-W", "32", "-H", "32",
		"--debug", "--debug-dir", filepath.Join(outDir, "debug"),
		"--summary", filepath.Join(outDir, "summary.md"),
		"--log-format", "json",
		video,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("sample command failed: %v\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String())
	}

	dir := filepath.Join(outDir, "debug", "fixture_64x48_45")
	for _, name := range []string{"metadata.json", "contact-sheet.png", "clip-00/frame-000.png", "clip-01/frame-003.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("debug output %s missing: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "summary.md")); err != nil {
		t.Errorf("summary missing: %v", err)
	}
}
