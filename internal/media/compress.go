package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Speech-adequate encode policy: mono at 16 kHz. Below 32 kbps speech stops
// being intelligible; above 128 kbps a size-constrained speech encode gains
// nothing.
const (
	MinBitrateKbps = 32
	MaxBitrateKbps = 128
	SampleRateHz   = 16000
	Channels       = 1
)

// SizeError reports that an audio file cannot be brought under a provider's
// upload ceiling: its duration is unknown (no bitrate can be computed), or
// the encode failed or still came out too large.
type SizeError struct {
	Msg string
	Err error
}

func (e *SizeError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *SizeError) Unwrap() error { return e.Err }

// PlanBitrate computes the encode bitrate in kbps that fits durationSec of
// audio into targetMB, clamped to [MinBitrateKbps, MaxBitrateKbps]. Fails
// with a SizeError when the duration is unknown or zero.
func PlanBitrate(durationSec, targetMB float64) (int, error) {
	if durationSec <= 0 {
		return 0, &SizeError{Msg: "could not determine audio duration for compression"}
	}

	kbps := int(targetMB * 8 * 1024 / durationSec)
	if kbps < MinBitrateKbps {
		kbps = MinBitrateKbps
	}
	if kbps > MaxBitrateKbps {
		kbps = MaxBitrateKbps
	}
	return kbps, nil
}

// Compress re-encodes inputPath at the given bitrate (mono, 16 kHz, AAC)
// into a temp file and returns its path with a cleanup function. The input
// file is never touched.
func Compress(ctx context.Context, inputPath string, kbps int) (string, func(), error) {
	noop := func() {}

	if !CheckFFmpeg() {
		return "", noop, &SizeError{Msg: "ffmpeg not found in PATH"}
	}

	tmpDir := filepath.Join(os.TempDir(), "stt-bench-compressed")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", noop, &SizeError{Msg: "create temp dir", Err: err}
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(tmpDir, fmt.Sprintf("%s_%dk_%d.m4a", base, kbps, os.Getpid()))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", inputPath,
		"-ac", fmt.Sprintf("%d", Channels),
		"-ar", fmt.Sprintf("%d", SampleRateHz),
		"-b:a", fmt.Sprintf("%dk", kbps),
		"-acodec", "aac",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		detail := strings.TrimSpace(string(out))
		if len(detail) > 200 {
			detail = detail[len(detail)-200:]
		}
		return "", noop, &SizeError{Msg: "ffmpeg encode failed: " + detail, Err: err}
	}

	cleanup := func() { os.Remove(outPath) }
	return outPath, cleanup, nil
}

// EnsureUnderLimit returns a path to an artifact of audioPath no larger than
// limitBytes, compressing into a temp file when needed. The returned cleanup
// removes the temp artifact (a no-op when the original already fits).
func EnsureUnderLimit(ctx context.Context, audioPath string, limitBytes int64, targetMB float64) (string, func(), error) {
	noop := func() {}

	fi, err := os.Stat(audioPath)
	if err != nil {
		return "", noop, fmt.Errorf("stat audio file: %w", err)
	}
	if fi.Size() <= limitBytes {
		return audioPath, noop, nil
	}

	kbps, err := PlanBitrate(Duration(ctx, audioPath), targetMB)
	if err != nil {
		return "", noop, err
	}

	outPath, cleanup, err := Compress(ctx, audioPath, kbps)
	if err != nil {
		return "", noop, err
	}

	cfi, err := os.Stat(outPath)
	if err != nil {
		cleanup()
		return "", noop, &SizeError{Msg: "stat compressed artifact", Err: err}
	}
	if cfi.Size() > limitBytes {
		cleanup()
		return "", noop, &SizeError{Msg: fmt.Sprintf(
			"still too large after compression (%.1fMB at %dkbps, limit %.1fMB)",
			float64(cfi.Size())/(1024*1024), kbps, float64(limitBytes)/(1024*1024))}
	}

	return outPath, cleanup, nil
}
