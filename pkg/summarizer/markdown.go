package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator replaces the label translator (go-l10n by default).
func WithTranslator(translate func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = translate
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: l10n.T}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Sampling Summary"))
	fmt.Fprintf(&b, "%s: %s  \n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "%s: `%s`\n\n", t("Run ID"), s.RunID)

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Mode"), modeLabel(s.Settings, t))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Sampler"), samplerLabel(s.Settings))
	fmt.Fprintf(&b, "| %s | %d x %d |\n", t("Clips x Frames"), s.Settings.ClipsPerVideo, s.Settings.FramesPerClip)
	fmt.Fprintf(&b, "| %s | %dx%d (%s) |\n\n", t("Frame Size"), s.Settings.Width, s.Settings.Height, s.Settings.Interpolation)

	fmt.Fprintf(&b, "## %s\n\n", t("Run"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Videos"), len(s.Videos))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Succeeded"), s.Run.Succeeded)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Failed"), s.Run.Failed)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Workers"), s.Run.Workers)
	fmt.Fprintf(&b, "| %s | %d ms |\n\n", t("Duration"), s.Run.DurationMs)

	if len(s.Videos) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Videos"))
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
		t("Video"), t("Stream"), t("Frames"), t("Length"), t("Clip Starts"), t("Seeks"), t("Time"))
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, v := range s.Videos {
		if v.Failed() {
			fmt.Fprintf(&b, "| %s | %s: %s | | | | | |\n", escape(v.Name), t("Error"), escape(v.Error))
			continue
		}
		fmt.Fprintf(&b, "| %s | %s %dx%d @ %.2f fps | %d | %.2f s | %s | %d | %d ms |\n",
			escape(v.Name), v.Codec, v.Width, v.Height, v.FPS,
			v.FrameCount, v.DurationSec, formatStarts(v.Starts, s.Settings.Mode), v.SeeksDone, v.DurationMs)
	}
	return b.String()
}

func modeLabel(s Settings, t func(string) string) string {
	if s.FrameRate > 0 {
		return fmt.Sprintf("%s @ %g fps", s.Mode, s.FrameRate)
	}
	if strings.HasPrefix(s.Mode, "time") {
		return fmt.Sprintf("%s (%s)", s.Mode, t("native rate"))
	}
	return s.Mode
}

func samplerLabel(s Settings) string {
	if s.Sampler == "random" {
		return fmt.Sprintf("random (seed %d)", s.Seed)
	}
	return s.Sampler
}

// formatStarts prints frame indices for index-based runs and seconds otherwise.
func formatStarts(starts []float64, mode string) string {
	parts := make([]string, len(starts))
	for i, start := range starts {
		if strings.HasPrefix(mode, "index") {
			parts[i] = fmt.Sprintf("%d", int(start))
		} else {
			parts[i] = fmt.Sprintf("%.3f", start)
		}
	}
	return strings.Join(parts, ", ")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
