// Package relay implements the media relay pipeline: per-message batches of
// URL acquisition jobs driven through an external resolver (yt-dlp), optional
// post-processing through an external transcoder (ffmpeg), size/availability
// validation before delivery, and time-based eviction of stale artifacts.
package relay

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mkrell/vidify/directive"
)

// Kind selects the delivery mode for a batch.
type Kind int

const (
	// KindVideo delivers the artifact as a video attachment.
	KindVideo Kind = iota
	// KindAnimation delivers the artifact as an animation (audio stripped).
	KindAnimation
)

func (k Kind) String() string {
	if k == KindAnimation {
		return "animation"
	}
	return "video"
}

// Step is a post-processing operation the resolver applies to a downloaded
// artifact. It returns the path downstream stages should use, which may
// differ from the input path.
type Step interface {
	Apply(ctx context.Context, path string) (string, error)
}

// AcquisitionConfig describes how the resolver fetches and names one batch of
// media. The two base variants (video, animation) are built once at startup
// and never mutated; per-batch trim steps are attached to a copy via WithTrim.
type AcquisitionConfig struct {
	// OutputDir is the shared working directory artifacts are written to.
	OutputDir string
	// MaxBytes is passed to the resolver as a download size ceiling.
	MaxBytes int64
	// Format is the resolver's format selection policy.
	Format string
	// MergeFormat is the target container when separate streams are muxed.
	MergeFormat string
	// NameSuffix is appended to the media id in the output filename.
	NameSuffix string
	// Steps run in order against the downloaded file.
	Steps []Step
	// ExtraArgs are operator-supplied resolver flags appended verbatim.
	ExtraArgs []string
}

// VideoConfig returns the base acquisition config for video mode.
func VideoConfig(dir string, maxBytes int64, extraArgs []string) AcquisitionConfig {
	return AcquisitionConfig{
		OutputDir:   dir,
		MaxBytes:    maxBytes,
		Format:      "best[ext=mp4]/bestvideo+bestaudio",
		MergeFormat: "mp4",
		ExtraArgs:   extraArgs,
	}
}

// AnimationConfig returns the base acquisition config for animation mode. It
// differs from video mode only in the output name suffix and the audio-strip
// step appended for animation conversion.
func AnimationConfig(dir string, maxBytes int64, extraArgs []string) AcquisitionConfig {
	cfg := VideoConfig(dir, maxBytes, extraArgs)
	cfg.NameSuffix = "_gif"
	cfg.Steps = []Step{stripAudioStep{}}
	return cfg
}

// WithTrim returns a copy of the config with a trim step appended. The
// receiver's step slice is never shared with the copy, so the base configs
// stay immutable across batches. A nil trim returns the config unchanged.
func (c AcquisitionConfig) WithTrim(t *directive.Trim) AcquisitionConfig {
	if t == nil {
		return c
	}
	steps := make([]Step, len(c.Steps), len(c.Steps)+1)
	copy(steps, c.Steps)
	c.Steps = append(steps, TrimStep{Start: t.Start, Bound: t.Bound, Mode: t.Mode})
	return c
}

// TrimSuffix is appended to an artifact path by the trim step so downstream
// stages can tell derived files from originals.
const TrimSuffix = ".trim.mp4"

// TrimStep clips the artifact with the external transcoder. Stream copy only;
// no re-encode.
type TrimStep struct {
	Start string
	Bound string
	Mode  directive.Mode
}

func (s TrimStep) Apply(ctx context.Context, path string) (string, error) {
	flag := "-to"
	if s.Mode == directive.ModeDuration {
		flag = "-t"
	}
	out := path + TrimSuffix
	args := []string{"-y", "-v", "16", "-ss", s.Start, flag, s.Bound, "-i", path, "-c", "copy", "-acodec", "copy", out}
	if err := runFFmpeg(ctx, args); err != nil {
		return "", fmt.Errorf("trim %s: %w", path, err)
	}
	return out, nil
}

// stripAudioStep remuxes the artifact without its audio track, in place, so
// the transport accepts it as an animation.
type stripAudioStep struct{}

func (stripAudioStep) Apply(ctx context.Context, path string) (string, error) {
	tmp := path + ".noaudio.mp4"
	args := []string{"-y", "-v", "16", "-i", path, "-c", "copy", "-an", tmp}
	if err := runFFmpeg(ctx, args); err != nil {
		return "", fmt.Errorf("strip audio %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("strip audio %s: %w", path, err)
	}
	return path, nil
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("ffmpeg: %w", err)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(msg))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
