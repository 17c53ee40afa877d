package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fingermark/fingermark/internal/fsutil"
)

// YouTubeMetadata is what yt-dlp reports about a video before download.
type YouTubeMetadata struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
}

func pickArtist(meta YouTubeMetadata) string {
	if strings.TrimSpace(meta.Artist) != "" {
		return meta.Artist
	}
	if strings.TrimSpace(meta.Channel) != "" {
		return meta.Channel
	}
	if strings.TrimSpace(meta.Uploader) != "" {
		return meta.Uploader
	}
	return "Unknown Artist"
}

const defaultYouTubeTimeout = 3 * time.Minute

// FetchYouTubeAudio downloads the best available audio stream for a
// YouTube URL into outputDir via yt-dlp, returning its path (still in
// whatever container yt-dlp chose — ConvertToMonoWAV handles the rest)
// and the parsed metadata. It shells out directly to the yt-dlp binary;
// see DESIGN.md for why no Go yt-dlp binding is used here.
func FetchYouTubeAudio(ctx context.Context, youtubeURL, outputDir string) (audioPath string, metadata *YouTubeMetadata, err error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultYouTubeTimeout)
		defer cancel()
	}

	if err := fsutil.MakeDir(outputDir); err != nil {
		return "", nil, fmt.Errorf("creating output directory: %w", err)
	}

	metaCmd := exec.CommandContext(ctx, "yt-dlp",
		"-J",
		"--no-warnings",
		"--no-playlist",
		youtubeURL,
	)
	var stdout, stderr bytes.Buffer
	metaCmd.Stdout = &stdout
	metaCmd.Stderr = &stderr
	if err := metaCmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("yt-dlp metadata extraction failed: %w (%s)", err, stderr.String())
	}

	var meta YouTubeMetadata
	if err := json.Unmarshal(stdout.Bytes(), &meta); err != nil {
		return "", nil, fmt.Errorf("parsing yt-dlp JSON: %w", err)
	}
	if strings.TrimSpace(meta.ID) == "" || strings.TrimSpace(meta.Title) == "" {
		return "", nil, fmt.Errorf("yt-dlp metadata missing id or title")
	}
	if meta.Artist == "" {
		meta.Artist = pickArtist(meta)
	}

	outputTemplate := filepath.Join(outputDir, fmt.Sprintf("%s.%%(ext)s", meta.ID))
	downloadCmd := exec.CommandContext(ctx, "yt-dlp",
		"-f", "ba",
		"--no-warnings",
		"--no-playlist",
		"-o", outputTemplate,
		youtubeURL,
	)
	var dlStderr bytes.Buffer
	downloadCmd.Stderr = &dlStderr
	if err := downloadCmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, fmt.Errorf("yt-dlp download failed: %w (%s)", err, dlStderr.String())
	}

	for _, ext := range []string{".m4a", ".webm", ".opus", ".mp3", ".aac", ".ogg"} {
		candidate := filepath.Join(outputDir, meta.ID+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, &meta, nil
		}
	}
	return "", nil, fmt.Errorf("downloaded audio file not found for video %s", meta.ID)
}

// IsYouTubeURL reports whether urlStr looks like a youtube.com or
// youtu.be URL.
func IsYouTubeURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}
