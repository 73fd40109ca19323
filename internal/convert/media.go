package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/classify"
)

// MediaConverter wraps ffmpeg for video transcodes and audio
// extraction. Each call spawns a fresh process reading from stdin and
// writing to stdout; nothing is pooled or reused.
//
// Engine failures do not fail the request: the adapter logs a warning
// and returns the original, unconverted bytes. Callers must not assume
// the output format actually changed.
type MediaConverter struct {
	ffmpegPath string
	logger     *zap.Logger
}

func NewMediaConverter(ffmpegPath string, logger *zap.Logger) *MediaConverter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &MediaConverter{ffmpegPath: ffmpegPath, logger: logger}
}

// Container muxers need the fragmented layouts to write to a pipe.
var videoArgs = map[string][]string{
	"mp4":  {"-c:v", "libx264", "-c:a", "aac", "-movflags", "frag_keyframe+empty_moov", "-f", "mp4"},
	"webm": {"-c:v", "libvpx-vp9", "-c:a", "libopus", "-f", "webm"},
	"avi":  {"-c:v", "mpeg4", "-c:a", "mp3", "-f", "avi"},
	"mov":  {"-c:v", "libx264", "-c:a", "aac", "-movflags", "frag_keyframe+empty_moov", "-f", "mov"},
}

var audioArgs = map[string][]string{
	"mp3": {"-vn", "-c:a", "libmp3lame", "-f", "mp3"},
	"wav": {"-vn", "-c:a", "pcm_s16le", "-f", "wav"},
	"aac": {"-vn", "-c:a", "aac", "-f", "adts"},
}

func (m *MediaConverter) run(ctx context.Context, input []byte, formatArgs []string) ([]byte, error) {
	args := []string{"-hide_banner", "-loglevel", "error", "-i", "pipe:0"}
	args = append(args, formatArgs...)
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, m.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(input)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %v, stderr: %s", err, stderr.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output")
	}
	return out.Bytes(), nil
}

// TranscodeVideo re-muxes/re-encodes video bytes into the target
// container. On engine failure the original bytes come back unchanged.
func (m *MediaConverter) TranscodeVideo(ctx context.Context, input []byte, target string) (*Result, error) {
	formatArgs, ok := videoArgs[target]
	if !ok {
		return nil, callerErrorf(string(classify.KindVideo), "", target,
			"unsupported video conversion target: %s", target)
	}

	out, err := m.run(ctx, input, formatArgs)
	if err != nil {
		m.logger.Warn("video transcode failed, returning original bytes",
			zap.String("target", target),
			zap.Error(err),
		)
		return &Result{Bytes: input, Fallback: true}, nil
	}
	return &Result{Bytes: out}, nil
}

// ExtractAudio drops the video stream and encodes the audio track in
// the target format. Same fallback policy as TranscodeVideo.
func (m *MediaConverter) ExtractAudio(ctx context.Context, input []byte, target string) (*Result, error) {
	formatArgs, ok := audioArgs[target]
	if !ok {
		return nil, callerErrorf(string(classify.KindVideo), "", target,
			"unsupported audio extraction target: %s", target)
	}

	out, err := m.run(ctx, input, formatArgs)
	if err != nil {
		m.logger.Warn("audio extraction failed, returning original bytes",
			zap.String("target", target),
			zap.Error(err),
		)
		return &Result{Bytes: input, Fallback: true}, nil
	}
	return &Result{Bytes: out}, nil
}
