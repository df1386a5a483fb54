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
	"github.com/kakasub/kaka/internal/subtitle"
	"github.com/kakasub/kaka/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate a subtitle file to another language using AI",
	Long: `Translate an existing subtitle file to another language using AI.

Supports SRT, VTT, and ASS input; the output is always SRT with the
translated text. Timing is carried over unchanged, and the translation
fails rather than dropping or padding segments when the model misbehaves.

Examples:
  kaka translate video.srt --target-language japanese
  kaka translate video.vtt -t spanish --provider anthropic
  kaka translate video.ass -l english -t german -o out.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/ANTHROPIC_API_KEY/GEMINI_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific defaults)")
	translateCmd.Flags().
		String("provider", "", "Translation provider (openai, anthropic, gemini)")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of segments per API request")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	if !media.IsSubtitleFile(subtitlePath) {
		return fmt.Errorf(
			"unsupported subtitle format %q: use .srt, .vtt, or .ass",
			strings.ToLower(filepath.Ext(subtitlePath)),
		)
	}

	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if providerStr == "" {
		providerStr = cfg.Translator.Provider
	}
	provider := translate.Provider(providerStr)

	if apiKey == "" {
		cfg.Translator.Provider = providerStr
		apiKey = cfg.TranslatorKey()
	}
	if apiKey == "" {
		var envVar string
		switch provider {
		case translate.ProviderAnthropic:
			envVar = "ANTHROPIC_API_KEY"
		case translate.ProviderGemini:
			envVar = "GEMINI_API_KEY"
		default:
			envVar = "OPENAI_API_KEY"
		}
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			envVar,
		)
	}

	if batchSize == 0 {
		batchSize = cfg.Translator.BatchSize
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}
	if model == "" {
		model = cfg.Translator.Model
	}

	logger.Infow("Parsing subtitle file",
		"input", subtitlePath,
	)
	doc, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if doc.Count() == 0 {
		return fmt.Errorf("subtitle file contains no segments")
	}

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating subtitles",
		"segments", doc.Count(),
		"target_language", targetLang,
		"provider", provider,
	)
	translated, err := translator.Translate(ctx, doc)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if outputPath == "" {
		stem := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = stem + "_translated.srt"
	}
	if err := translated.WriteSRT(outputPath, true); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", translated.Count())
	fmt.Printf("  Target language: %s\n", targetLang)

	return nil
}
