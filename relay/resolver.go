package relay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Artifact is the outcome of a successful acquisition: a media file on disk
// plus the resolver-reported media id.
type Artifact struct {
	MediaID string
	Path    string
}

// Resolver fetches the media behind a URL into the working directory.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, url string, cfg AcquisitionConfig) (Artifact, error)
}

// YTDLP resolves URLs by shelling out to yt-dlp. Each call is stateless: the
// extractor cache is disabled so no state leaks between invocations.
type YTDLP struct {
	// Bin overrides the yt-dlp binary path; empty means $PATH lookup.
	Bin string
}

func (r *YTDLP) bin() string {
	if r.Bin != "" {
		return r.Bin
	}
	return "yt-dlp"
}

// Resolve downloads the URL per cfg, runs the config's post-processing steps,
// and returns the final artifact. The --print pair makes yt-dlp report the
// media id and the file's resting path on stdout after any internal moves.
func (r *YTDLP) Resolve(ctx context.Context, url string, cfg AcquisitionConfig) (Artifact, error) {
	tmpl := filepath.Join(cfg.OutputDir, "%(id)s"+cfg.NameSuffix+".%(ext)s")
	args := []string{
		"--no-playlist",
		"--no-cache-dir",
		"--no-warnings",
		"--max-filesize", strconv.FormatInt(cfg.MaxBytes, 10),
		"-f", cfg.Format,
		"--merge-output-format", cfg.MergeFormat,
		"-o", tmpl,
		"--no-simulate",
		"--print", "after_move:%(id)s",
		"--print", "after_move:filepath",
	}
	args = append(args, cfg.ExtraArgs...)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, r.bin(), args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Artifact{}, fmt.Errorf("yt-dlp %s: %w: %s", url, err, lastLine(string(exitErr.Stderr)))
		}
		return Artifact{}, fmt.Errorf("yt-dlp %s: %w", url, err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 || lines[0] == "" {
		// yt-dlp exits zero without printing when the file exceeds
		// --max-filesize or the download is otherwise skipped.
		return Artifact{}, fmt.Errorf("yt-dlp %s: no artifact produced (skipped or over size limit)", url)
	}
	art := Artifact{
		MediaID: strings.TrimSpace(lines[0]),
		Path:    strings.TrimSpace(lines[len(lines)-1]),
	}
	if _, err := os.Stat(art.Path); err != nil {
		return Artifact{}, fmt.Errorf("yt-dlp %s: reported path missing: %w", url, err)
	}

	for _, step := range cfg.Steps {
		next, err := step.Apply(ctx, art.Path)
		if err != nil {
			return Artifact{}, err
		}
		if next != art.Path {
			// Derived file replaces the original downstream; drop the
			// original now so only one copy awaits delivery cleanup.
			if rmErr := os.Remove(art.Path); rmErr != nil && !os.IsNotExist(rmErr) {
				return Artifact{}, fmt.Errorf("replace %s: %w", art.Path, rmErr)
			}
			art.Path = next
		}
	}
	return art, nil
}
