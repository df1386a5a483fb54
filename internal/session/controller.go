package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kakasub/kaka/internal/logging"
	"github.com/kakasub/kaka/internal/media"
	"github.com/kakasub/kaka/internal/subtitle"
)

// Controller owns one session's workflow state and temporary files. All
// mutation goes through it; collaborator calls are synchronous and only
// one workflow can be in flight at a time.
type Controller struct {
	mu      sync.Mutex
	state   State
	workDir string

	logger     *logging.Logger
	transcoder Transcoder
	recognizer Recognizer
	translator Translator
}

// NewController creates a controller with an exclusive working directory.
// The directory is created eagerly; sharing it between sessions is the
// caller's bug, not a supported mode.
func NewController(
	workDir string,
	logger *logging.Logger,
	transcoder Transcoder,
	recognizer Recognizer,
	translator Translator,
) (*Controller, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Controller{
		state:      newState(),
		workDir:    workDir,
		logger:     logger,
		transcoder: transcoder,
		recognizer: recognizer,
		translator: translator,
	}, nil
}

// AttachSource stores an uploaded file in the session workspace. Replacing
// the source is a hard reset: the previous upload and every artifact
// derived from it are deleted, and the workflow returns to idle.
func (c *Controller) AttachSource(name string, r io.Reader) error {
	if !media.IsVideoFile(name) && !media.IsSubtitleFile(name) {
		return fmt.Errorf(
			"%w: %q",
			subtitle.ErrUnsupportedFormat,
			filepath.Ext(name),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Stage.busy() {
		return ErrBusy
	}

	c.discardArtifactsLocked()

	path := filepath.Join(c.workDir, filepath.Base(name))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}

	c.state = newState()
	c.state.SourceName = filepath.Base(name)
	c.state.SourcePath = path

	c.logger.Infow("source attached",
		"file", c.state.SourceName,
	)
	return nil
}

// StartRecognition runs transcode → recognize → export for the uploaded
// video. The extracted audio is deleted on every exit path; a failure
// clears any partial result and parks the workflow in the failed stage.
func (c *Controller) StartRecognition(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Stage.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.SourcePath == "" {
		c.mu.Unlock()
		return ErrNoSource
	}
	if !media.IsVideoFile(c.state.SourcePath) {
		c.mu.Unlock()
		return fmt.Errorf(
			"%w: recognition needs a video file, got %q",
			subtitle.ErrUnsupportedFormat,
			c.state.SourceName,
		)
	}
	sourcePath := c.state.SourcePath
	stem := c.sourceStemLocked()
	c.state.Stage = StageProcessing
	c.state.LastError = ""
	c.mu.Unlock()

	audioPath := filepath.Join(c.workDir, stem+".wav")
	defer func() {
		// the intermediate audio never outlives the pipeline run
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			c.logger.Warnw("failed to remove temporary audio file",
				"path", audioPath,
				"error", err,
			)
		}
	}()

	c.logger.Infow("extracting audio",
		"video", sourcePath,
		"audio", audioPath,
	)
	if err := c.transcoder.ExtractAudio(ctx, sourcePath, audioPath); err != nil {
		return c.failRecognition(fmt.Errorf("%w: %v", ErrTranscode, err))
	}

	c.logger.Infow("starting speech recognition")
	doc, err := c.recognizer.Recognize(ctx, audioPath)
	if err != nil {
		return c.failRecognition(fmt.Errorf("%w: %v", ErrRecognition, err))
	}
	c.logger.Infow("speech recognition complete",
		"segments", doc.Count(),
	)

	exported := doc.ToSRT()
	subtitlePath := filepath.Join(c.workDir, stem+".srt")
	if err := os.WriteFile(subtitlePath, []byte(exported), 0644); err != nil {
		return c.failRecognition(fmt.Errorf("%w: %v", ErrFileSystem, err))
	}

	c.mu.Lock()
	c.state.Document = doc
	c.state.ExportedSRT = exported
	c.state.SubtitlePath = subtitlePath
	c.state.Stage = StageReady
	c.mu.Unlock()

	return nil
}

// LoadSubtitle parses the uploaded subtitle file into the session
// document, readying it for translation.
func (c *Controller) LoadSubtitle(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Stage.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.SourcePath == "" {
		c.mu.Unlock()
		return ErrNoSource
	}
	if !media.IsSubtitleFile(c.state.SourcePath) {
		c.mu.Unlock()
		return fmt.Errorf(
			"%w: translation needs a subtitle file, got %q",
			subtitle.ErrUnsupportedFormat,
			c.state.SourceName,
		)
	}
	sourcePath := c.state.SourcePath
	c.state.Stage = StageProcessing
	c.state.LastError = ""
	c.mu.Unlock()

	doc, err := subtitle.Open(sourcePath)
	if err != nil {
		return c.failRecognition(err)
	}

	c.logger.Infow("subtitle file parsed",
		"file", filepath.Base(sourcePath),
		"segments", doc.Count(),
	)

	c.mu.Lock()
	c.state.Document = doc
	c.state.ExportedSRT = doc.ToSRT()
	c.state.Stage = StageReady
	c.mu.Unlock()

	return nil
}

// StartTranslation runs the translator over the current document. On
// success the translated document replaces the session's; on failure the
// ready document survives untouched.
func (c *Controller) StartTranslation(ctx context.Context, targetLanguage string) error {
	c.mu.Lock()
	if c.state.Stage.busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state.Document == nil {
		c.mu.Unlock()
		return ErrNoDocument
	}
	doc := c.state.Document
	c.state.Stage = StageTranslating
	c.state.LastError = ""
	c.mu.Unlock()

	c.logger.Infow("starting translation",
		"segments", doc.Count(),
		"target_language", targetLanguage,
	)

	translated, err := c.translator.Translate(ctx, doc, targetLanguage)
	if err != nil {
		wrapped := err
		if !errors.Is(err, subtitle.ErrTranslationAlignment) {
			wrapped = fmt.Errorf("%w: %v", ErrTranslation, err)
		}
		c.mu.Lock()
		// the ready document is still intact; only the stage rolls back
		c.state.Stage = StageReady
		c.state.LastError = wrapped.Error()
		c.mu.Unlock()
		c.logger.Errorw("translation failed",
			"error", err,
		)
		return wrapped
	}
	if translated.Count() != doc.Count() {
		wrapped := fmt.Errorf(
			"%w: translator returned %d segments for %d",
			subtitle.ErrTranslationAlignment,
			translated.Count(),
			doc.Count(),
		)
		c.mu.Lock()
		c.state.Stage = StageReady
		c.state.LastError = wrapped.Error()
		c.mu.Unlock()
		return wrapped
	}

	c.logger.Infow("translation complete")

	c.mu.Lock()
	c.state.Document = translated
	c.state.TranslatedSRT = translated.ToTranslatedSRT()
	c.state.TargetLanguage = targetLanguage
	c.state.Stage = StageTranslated
	c.mu.Unlock()

	return nil
}

// Acknowledge clears a failed stage back to idle. No partial document is
// kept from the failed run.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Stage == StageFailed {
		c.state.Stage = StageIdle
		c.state.LastError = ""
	}
}

// Reset discards the document and every file in the session workspace.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardArtifactsLocked()
	c.state = newState()
}

// Close tears the whole workspace down; the controller is unusable after.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = newState()
	if err := os.RemoveAll(c.workDir); err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	return nil
}

// Snapshot returns a copy of the session state for read-only consumers.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stage
}

// Document returns the current document, which consumers must treat as
// read-only.
func (c *Controller) Document() (*subtitle.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Document, c.state.Document != nil
}

// Stats recomputes the statistics projection for the current document.
func (c *Controller) Stats() (subtitle.Stats, bool) {
	doc, ok := c.Document()
	if !ok {
		return subtitle.Stats{}, false
	}
	return doc.Stats(), true
}

// Rows returns the preview rows, filtered by the case-insensitive query.
func (c *Controller) Rows(query string) []subtitle.Row {
	doc, ok := c.Document()
	if !ok {
		return nil
	}
	return doc.Filter(query)
}

// ExportSRT returns the cached SRT export. Translated content wins once a
// translation has completed.
func (c *Controller) ExportSRT() (content, filename string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stem := c.sourceStemLocked()
	switch {
	case c.state.TranslatedSRT != "":
		return c.state.TranslatedSRT, stem + "_translated.srt", true
	case c.state.ExportedSRT != "":
		return c.state.ExportedSRT, stem + ".srt", true
	default:
		return "", "", false
	}
}

// WorkDir exposes the session's exclusive directory, mainly for tests.
func (c *Controller) WorkDir() string {
	return c.workDir
}

func (c *Controller) sourceStemLocked() string {
	name := c.state.SourceName
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// failRecognition records a pipeline failure: the stage parks at failed
// and no partial document survives.
func (c *Controller) failRecognition(err error) error {
	c.logger.Errorw("pipeline failed",
		"error", err,
	)
	c.mu.Lock()
	c.state.Stage = StageFailed
	c.state.LastError = err.Error()
	c.state.Document = nil
	c.state.ExportedSRT = ""
	c.state.TranslatedSRT = ""
	c.state.SubtitlePath = ""
	c.mu.Unlock()
	return err
}

// discardArtifactsLocked removes the uploaded source and any derived
// files. Callers hold c.mu.
func (c *Controller) discardArtifactsLocked() {
	for _, path := range []string{c.state.SourcePath, c.state.SubtitlePath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warnw("failed to remove artifact",
				"path", path,
				"error", err,
			)
		}
	}
}
