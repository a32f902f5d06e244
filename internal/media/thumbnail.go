package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Probe is what the media tool reports about a video file
type Probe struct {
	DurationSeconds float64
	Raw             []byte
}

// Thumbnailer inspects a staged video and extracts a still frame from it
type Thumbnailer interface {
	Probe(ctx context.Context, videoPath string) (*Probe, error)
	Snapshot(ctx context.Context, videoPath, imagePath string, atSeconds float64) error
}

// FFmpeg runs ffprobe and ffmpeg binaries
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
}

func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Probe implements Thumbnailer
func (f *FFmpeg) Probe(ctx context.Context, videoPath string) (*Probe, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration,format_name,bit_rate",
		"-of", "json",
		videoPath,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(stdout.Bytes())
}

// parseProbe reads ffprobe's json output. Duration arrives as a string.
func parseProbe(out []byte) (*Probe, error) {
	var doc struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("unreadable ffprobe output: %w", err)
	}
	if doc.Format.Duration == "" {
		return nil, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(doc.Format.Duration, 64)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("invalid duration %q", doc.Format.Duration)
	}
	return &Probe{DurationSeconds: d, Raw: out}, nil
}

// Snapshot implements Thumbnailer
func (f *FFmpeg) Snapshot(ctx context.Context, videoPath, imagePath string, atSeconds float64) error {
	cmd := exec.CommandContext(ctx, f.FFmpegPath, snapshotArgs(videoPath, imagePath, atSeconds)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func snapshotArgs(videoPath, imagePath string, atSeconds float64) []string {
	return []string{
		"-v", "error",
		"-ss", strconv.FormatFloat(atSeconds, 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		imagePath,
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
