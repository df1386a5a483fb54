package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Transcoder extracts the audio track of a video file. The recognition
// pipeline must not proceed when extraction fails.
type Transcoder interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// options for the extracted audio track
type ExtractOptions struct {
	Format     string // wav, mp3, aac, flac
	SampleRate int
	Channels   int
	Bitrate    string // lossy formats only
}

// DefaultExtractOptions matches what speech recognition engines expect:
// 16 kHz mono PCM.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// FFmpegTranscoder implements Transcoder with ffmpeg.
type FFmpegTranscoder struct {
	opts ExtractOptions
}

func NewFFmpegTranscoder(opts ExtractOptions) *FFmpegTranscoder {
	return &FFmpegTranscoder{opts: opts}
}

func (t *FFmpegTranscoder) ExtractAudio(
	ctx context.Context,
	videoPath, audioPath string,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	if err := os.MkdirAll(filepath.Dir(audioPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": t.opts.SampleRate,
		"ac": t.opts.Channels,
	}

	switch t.opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if t.opts.Bitrate != "" {
			kwargs["b:a"] = t.opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if t.opts.Bitrate != "" {
			kwargs["b:a"] = t.opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	err := ffmpeg.Input(videoPath).
		Output(audioPath, kwargs).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}

// video formats accepted for recognition
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
	".flv": true,
}

// subtitle formats accepted for translation
var subtitleExtensions = map[string]bool{
	".srt": true,
	".ass": true,
	".vtt": true,
}

func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

func IsSubtitleFile(path string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(path))]
}
