package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/fingermark/fingermark/internal/fsutil"
)

// ConvertConfig controls the ffmpeg conversion ConvertToMonoWAV runs.
type ConvertConfig struct {
	// SampleRate is the output sample rate in Hz. Zero defaults to 11025,
	// the same default the teacher's service layer used.
	SampleRate int
}

const defaultConvertTimeout = 10 * time.Second

// ConvertToMonoWAV shells out to ffmpeg to transcode an arbitrary input
// file into mono, 16-bit PCM WAV at cfg.SampleRate, returning the path of
// the converted file inside outputDir. pkg/fingermark's service runs every
// input through this conversion, WAV or not, before decoding the result
// with ReadWAV.
func ConvertToMonoWAV(ctx context.Context, inputPath, outputDir string, cfg ConvertConfig) (string, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 11025
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultConvertTimeout)
		defer cancel()
	}

	if err := fsutil.MakeDir(outputDir); err != nil {
		return "", err
	}

	outputPath := filepath.Join(outputDir, filepath.Base(inputPath))
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-y",
		"-v", "quiet",
		"-i", inputPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", cfg.SampleRate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg failed: %w (%s)", err, out)
	}

	if err := fsutil.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}
