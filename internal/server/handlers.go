package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kakasub/kaka/internal/session"
	"github.com/kakasub/kaka/internal/subtitle"
)

func (app *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (app *App) handleCreateSession(c *gin.Context) {
	id, _, err := app.createSession()
	if err != nil {
		app.logger.Errorw("failed to create session",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	app.logger.Infow("session created",
		"session_id", id,
	)
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

func (app *App) handleDeleteSession(c *gin.Context) {
	id := c.Param("session_id")
	ctrl, ok := app.dropSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err := ctrl.Close(); err != nil {
		app.logger.Warnw("failed to clean up session workspace",
			"session_id", id,
			"error", err,
		)
	}
	c.JSON(http.StatusOK, gin.H{"message": "session closed"})
}

func (app *App) handleGetSession(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	state := ctrl.Snapshot()
	resp := gin.H{
		"stage":       state.Stage,
		"source_name": state.SourceName,
	}
	if state.TargetLanguage != "" {
		resp["target_language"] = state.TargetLanguage
	}
	if state.LastError != "" {
		resp["last_error"] = state.LastError
	}
	if stats, ok := ctrl.Stats(); ok {
		resp["stats"] = gin.H{
			"segments":        stats.Segments,
			"spoken_duration": subtitle.FormatDuration(stats.SpokenDuration),
			"characters":      stats.Characters,
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (app *App) handleUpload(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	if file.Size > app.cfg.Server.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf(
				"file too large, limit is %d MB",
				app.cfg.Server.MaxUploadSize/1024/1024,
			),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer src.Close()

	if err := ctrl.AttachSource(file.Filename, src); err != nil {
		app.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": filepath.Base(file.Filename),
		"size":     file.Size,
		"stage":    ctrl.Stage(),
	})
}

func (app *App) handleRecognize(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	started := time.Now()
	if err := ctrl.StartRecognition(c.Request.Context()); err != nil {
		app.renderError(c, err)
		return
	}

	stats, _ := ctrl.Stats()
	c.JSON(http.StatusOK, gin.H{
		"stage":    ctrl.Stage(),
		"segments": stats.Segments,
		"elapsed":  time.Since(started).Round(time.Millisecond).String(),
	})
}

func (app *App) handleLoad(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	if err := ctrl.LoadSubtitle(c.Request.Context()); err != nil {
		app.renderError(c, err)
		return
	}

	stats, _ := ctrl.Stats()
	c.JSON(http.StatusOK, gin.H{
		"stage":    ctrl.Stage(),
		"segments": stats.Segments,
	})
}

type translateRequest struct {
	TargetLanguage string `json:"target_language" binding:"required"`
}

func (app *App) handleTranslate(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_language is required"})
		return
	}

	if err := ctrl.StartTranslation(c.Request.Context(), req.TargetLanguage); err != nil {
		app.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stage":           ctrl.Stage(),
		"target_language": req.TargetLanguage,
	})
}

func (app *App) handleAcknowledge(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}
	ctrl.Acknowledge()
	c.JSON(http.StatusOK, gin.H{"stage": ctrl.Stage()})
}

func (app *App) handleReset(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}
	ctrl.Reset()
	c.JSON(http.StatusOK, gin.H{"stage": ctrl.Stage()})
}

func (app *App) handleSegments(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	if _, ok := ctrl.Document(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": session.ErrNoDocument.Error()})
		return
	}

	rows := ctrl.Rows(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"segments": rows,
		"total":    len(rows),
	})
}

func (app *App) handleExport(c *gin.Context) {
	ctrl, ok := app.session(c)
	if !ok {
		return
	}

	content, filename, ok := ctrl.ExportSRT()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": session.ErrNoDocument.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/x-subrip", []byte(content))
}

// renderError maps controller errors to HTTP responses. Busy sessions are
// a conflict, not a client mistake.
func (app *App) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNoSource),
		errors.Is(err, session.ErrNoDocument),
		errors.Is(err, subtitle.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, subtitle.ErrTranslationAlignment),
		errors.Is(err, session.ErrTranslation),
		errors.Is(err, session.ErrRecognition),
		errors.Is(err, session.ErrTranscode):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		app.logger.Errorw("request failed",
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
