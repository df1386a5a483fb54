package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kakasub/kaka/internal/config"
	"github.com/kakasub/kaka/internal/media"
	"github.com/kakasub/kaka/internal/recognize"
	"github.com/kakasub/kaka/internal/server"
	"github.com/kakasub/kaka/internal/translate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the subtitle workflow as an HTTP service",
	Long: `Start an HTTP server exposing the recognition and translation
workflow. Each API session gets its own working directory under the
configured work dir and is cleaned up when the session is deleted.

Examples:
  kaka serve
  kaka serve --port 9000
  kaka serve -c /etc/kaka/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	if err := os.MkdirAll(cfg.Server.WorkDir, 0755); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	recognizer, err := recognize.Factory(
		recognize.Provider(cfg.Recognizer.Provider),
		cfg.Recognizer.APIKey,
		recognize.Options{
			Model:   cfg.Recognizer.Model,
			BaseURL: cfg.Recognizer.BaseURL,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}

	translator := translate.NewService(
		translate.Provider(cfg.Translator.Provider),
		cfg.TranslatorKey(),
		translate.Options{
			Model:     cfg.Translator.Model,
			BatchSize: cfg.Translator.BatchSize,
		},
	)

	app := server.New(
		cfg,
		logger,
		media.NewFFmpegTranscoder(media.DefaultExtractOptions()),
		recognizer,
		translator,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
		logger.Infow("Shutting down")
		app.Close()
		return nil
	}
}
