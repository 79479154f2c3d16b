package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/clipsampler/internal/testfixture"
	"github.com/user/clipsampler/pkg/config"
	"github.com/user/clipsampler/pkg/decoder"
)

// parseSampleFlags runs the sample command with args and returns the resulting configuration.
func parseSampleFlags(t *testing.T, args ...string) config.Config {
	t.Helper()

	var cfg config.Config
	cmd := sampleCommand()
	cmd.Action = func(c *cli.Context) error {
		var err error
		cfg, err = buildConfig(c)
		return err
	}
	app := &cli.App{Name: "clipsampler", Commands: []*cli.Command{cmd}, Writer: &bytes.Buffer{}}
	if err := app.Run(append([]string{"clipsampler", "sample"}, args...)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return cfg
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg := parseSampleFlags(t, "a.mp4")

	want := config.Defaults()
	if cfg.Video != want.Video || cfg.Sampler != want.Sampler {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, want)
	}
	if cfg.Debug || cfg.Summary != "" {
		t.Errorf("debug = %v, summary = %q", cfg.Debug, cfg.Summary)
	}
}

func TestBuildConfigFlags(t *testing.T) {
	cfg := parseSampleFlags(t,
		"-W", "64", "-H", "32",
		"--stream", "1",
		"--interpolation", "nearest",
		"--mode", "time-based",
		"--frame-rate", "2.5",
		"--sampler", "random",
		"--seed", "9",
		"--clips", "2",
		"--frames", "4",
		"-j", "3",
		"--ffmpeg-path", "/opt/ffmpeg",
		"--debug", "--debug-dir", "out/debug",
		"--summary", "out/summary.md",
		"--log-format", "json",
		"--quiet",
		"a.mp4",
	)

	if cfg.Video.Width != 64 || cfg.Video.Height != 32 || cfg.Video.Stream != 1 || cfg.Video.Interpolation != "nearest" {
		t.Errorf("Video = %+v", cfg.Video)
	}
	want := config.SamplerConfig{Mode: "time-based", Type: "random", ClipsPerVideo: 2, FramesPerClip: 4, Seed: 9, FrameRate: 2.5}
	if cfg.Sampler != want {
		t.Errorf("Sampler = %+v, want %+v", cfg.Sampler, want)
	}
	if cfg.Workers != 3 || cfg.FFmpegPath != "/opt/ffmpeg" {
		t.Errorf("Workers = %d, FFmpegPath = %q", cfg.Workers, cfg.FFmpegPath)
	}
	if !cfg.Debug || cfg.DebugDir != "out/debug" || cfg.Summary != "out/summary.md" {
		t.Errorf("Debug = %v, DebugDir = %q, Summary = %q", cfg.Debug, cfg.DebugDir, cfg.Summary)
	}
	if cfg.LogLevel != "quiet" || cfg.LogFormat != "json" {
		t.Errorf("LogLevel = %q, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestBuildConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipsampler.yaml")
	data := []byte("video:\n  width: 96\n  height: 80\nsampler:\n  clips_per_video: 6\n  frames_per_clip: 2\ndebug: true\ndebug_dir: from-file\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := parseSampleFlags(t, "--config", path, "-H", "40", "--frames", "3", "a.mp4")

	if cfg.Video.Width != 96 || cfg.Video.Height != 40 {
		t.Errorf("size = %dx%d, want 96x40", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Sampler.ClipsPerVideo != 6 || cfg.Sampler.FramesPerClip != 3 {
		t.Errorf("Sampler = %+v", cfg.Sampler)
	}
	if !cfg.Debug || cfg.DebugDir != "from-file" {
		t.Errorf("Debug = %v, DebugDir = %q", cfg.Debug, cfg.DebugDir)
	}
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no videos", []string{"sample", "--quiet"}, 2},
		{"invalid config", []string{"sample", "--quiet", "--clips", "0", "a.mp4"}, 2},
		{"missing config file", []string{"sample", "--config", "does-not-exist.yaml", "a.mp4"}, 2},
		{"missing video", []string{"sample", "--quiet", "does-not-exist.mp4"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := newApp(&stdout, &stderr).Run(append([]string{"clipsampler"}, tt.args...))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := exitCode(err); got != tt.code {
				t.Errorf("exit code = %d, want %d (%v)", got, tt.code, err)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	if err := newApp(&stdout, &bytes.Buffer{}).Run([]string{"clipsampler", "version"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, version) || !strings.Contains(out, runtime.GOOS) {
		t.Errorf("version output = %q", out)
	}
}

func TestProbeCommand(t *testing.T) {
	opts := testfixture.Default()
	path := testfixture.MP4(t, opts)

	t.Run("json", func(t *testing.T) {
		var stdout bytes.Buffer
		if err := newApp(&stdout, &bytes.Buffer{}).Run([]string{"clipsampler", "probe", path}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		var info decoder.ContainerInfo
		if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
		}
		if info.NumVideoStreams != 1 || info.Streams[0].FrameCount != opts.Frames {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var stdout bytes.Buffer
		if err := newApp(&stdout, &bytes.Buffer{}).Run([]string{"clipsampler", "probe", "-f", "yaml", path}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		var info decoder.ContainerInfo
		if err := yaml.Unmarshal(stdout.Bytes(), &info); err != nil {
			t.Fatalf("invalid YAML: %v\n%s", err, stdout.String())
		}
		if info.BestVideoStream != 0 || info.Streams[0].Width != opts.Width {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}, &bytes.Buffer{}).Run([]string{"clipsampler", "probe", "-f", "xml", path})
		if exitCode(err) != 2 {
			t.Errorf("error = %v, want exit code 2", err)
		}
	})
}

func TestSampleCommandSummary(t *testing.T) {
	path := testfixture.MP4(t, testfixture.Default())
	summary := filepath.Join(t.TempDir(), "summary.md")

	err := newApp(&bytes.Buffer{}, &bytes.Buffer{}).Run([]string{
		"clipsampler", "sample",
		"--quiet", "-W", "16", "-H", "16", "--clips", "2", "--frames", "4",
		"--summary", summary,
		path, "does-not-exist.mp4",
	})
	if got := exitCode(err); got != 1 {
		t.Fatalf("exit code = %d, want 1 (%v)", got, err)
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if !strings.Contains(string(data), "does-not-exist.mp4") {
		t.Errorf("summary does not list the failed video:\n%s", data)
	}
}
