package cli

import (
	"github.com/kakasub/kaka/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfgPath string
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kaka",
	Short: "AI-powered subtitle recognition and translation",
	Long: `Kaka turns videos into subtitles and subtitles into other languages.

It extracts audio with ffmpeg, recognizes speech with Whisper, and
translates subtitle files with OpenAI, Anthropic or Gemini models. The
serve command exposes the same workflow over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", "config.yaml", "Config file path")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Source language code (e.g., en, es, fr)")
}
