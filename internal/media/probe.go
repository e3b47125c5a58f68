// Package media probes and compresses audio through the external
// ffprobe/ffmpeg binaries. Both are treated as black boxes: an input path,
// arguments, and a pass/fail outcome.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ffmpegAvailable caches whether ffmpeg/ffprobe are in PATH (checked once).
var (
	ffmpegAvailable  *bool
	ffprobeAvailable *bool
)

// CheckFFmpeg checks if ffmpeg is available in PATH. Call once at startup.
func CheckFFmpeg() bool {
	if ffmpegAvailable != nil {
		return *ffmpegAvailable
	}
	_, err := exec.LookPath("ffmpeg")
	avail := err == nil
	ffmpegAvailable = &avail
	return avail
}

// CheckFFprobe checks if ffprobe is available in PATH. Call once at startup.
func CheckFFprobe() bool {
	if ffprobeAvailable != nil {
		return *ffprobeAvailable
	}
	_, err := exec.LookPath("ffprobe")
	avail := err == nil
	ffprobeAvailable = &avail
	return avail
}

// Duration returns the audio duration in seconds via ffprobe, or 0 if it
// cannot be determined. A zero duration is not an error here; callers that
// need a real duration (the compression planner) fail on their own terms.
func Duration(ctx context.Context, path string) float64 {
	if !CheckFFprobe() {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0
	}
	return d
}

// FormatDuration renders seconds as a short human-readable string ("45s",
// "3m05s", "1h12m").
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "?"
	}
	s := int(seconds)
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%dm%02ds", s/60, s%60)
	default:
		return fmt.Sprintf("%dh%02dm", s/3600, (s%3600)/60)
	}
}
