package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakasub/kaka/internal/config"
	"github.com/kakasub/kaka/internal/media"
	"github.com/kakasub/kaka/internal/recognize"
	"github.com/kakasub/kaka/internal/subtitle"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [video_file]",
	Short: "Generate subtitles for a video using speech recognition",
	Long: `Extract the audio track of a video file, run it through a speech
recognition engine, and write the result as an SRT file next to the video.

Examples:
  kaka recognize movie.mp4
  kaka recognize movie.mkv -o subtitles.srt
  kaka recognize movie.mp4 --model whisper-1 -l en`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY env var)")
	recognizeCmd.Flags().
		String("model", "", "Recognition model (default whisper-1)")
	recognizeCmd.Flags().
		String("prompt", "", "Optional prompt to guide the recognition engine")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if !media.IsVideoFile(videoPath) {
		return fmt.Errorf(
			"unsupported video format %q: use .mp4, .mov, .avi, .mkv, or .flv",
			strings.ToLower(filepath.Ext(videoPath)),
		)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = cfg.Recognizer.APIKey
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set OPENAI_API_KEY environment variable",
		)
	}
	if model == "" {
		model = cfg.Recognizer.Model
	}

	recognizer, err := recognize.Factory(
		recognize.ProviderOpenAI,
		apiKey,
		recognize.Options{
			Model:    model,
			Language: language,
			BaseURL:  cfg.Recognizer.BaseURL,
			Prompt:   prompt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "kaka-audio-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(tmpDir, stem+".wav")

	logger.Infow("Extracting audio",
		"video", videoPath,
		"audio", audioPath,
	)
	transcoder := media.NewFFmpegTranscoder(media.DefaultExtractOptions())
	if err := transcoder.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}

	logger.Infow("Recognizing speech",
		"model", model,
	)
	doc, err := recognizer.Recognize(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("speech recognition failed: %w", err)
	}
	if doc.Count() == 0 {
		return fmt.Errorf("recognition produced no segments")
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	}
	if err := doc.WriteSRT(outputPath, false); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	stats := doc.Stats()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles generated successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", stats.Segments)
	fmt.Printf("  Spoken duration: %s\n", subtitle.FormatDuration(stats.SpokenDuration))

	return nil
}
