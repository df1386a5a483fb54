package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kakasub/kaka/internal/config"
	"github.com/kakasub/kaka/internal/logging"
	"github.com/kakasub/kaka/internal/session"
)

// App wires the HTTP surface to the session controllers. Collaborators
// are injected once at startup and shared by every session; each session
// gets its own controller and working directory.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	transcoder session.Transcoder
	recognizer session.Recognizer
	translator session.Translator

	mu       sync.RWMutex
	sessions map[string]*session.Controller
}

func New(
	cfg *config.Config,
	logger *logging.Logger,
	transcoder session.Transcoder,
	recognizer session.Recognizer,
	translator session.Translator,
) *App {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &App{
		cfg:        cfg,
		logger:     logger,
		transcoder: transcoder,
		recognizer: recognizer,
		translator: translator,
		sessions:   make(map[string]*session.Controller),
	}
}

// Router builds the gin engine with all API routes registered.
func (app *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/ping", app.handlePing)
		api.POST("/sessions", app.handleCreateSession)
		api.DELETE("/sessions/:session_id", app.handleDeleteSession)
		api.GET("/sessions/:session_id", app.handleGetSession)
		api.POST("/sessions/:session_id/upload", app.handleUpload)
		api.POST("/sessions/:session_id/recognize", app.handleRecognize)
		api.POST("/sessions/:session_id/load", app.handleLoad)
		api.POST("/sessions/:session_id/translate", app.handleTranslate)
		api.POST("/sessions/:session_id/acknowledge", app.handleAcknowledge)
		api.POST("/sessions/:session_id/reset", app.handleReset)
		api.GET("/sessions/:session_id/segments", app.handleSegments)
		api.GET("/sessions/:session_id/export", app.handleExport)
	}

	return r
}

// Run serves the API on the configured port.
func (app *App) Run() error {
	addr := fmt.Sprintf(":%d", app.cfg.Server.Port)
	app.logger.Infow("starting server",
		"addr", addr,
	)
	return app.Router().Run(addr)
}

// Close tears down every live session and its files.
func (app *App) Close() {
	app.mu.Lock()
	defer app.mu.Unlock()
	for id, ctrl := range app.sessions {
		if err := ctrl.Close(); err != nil {
			app.logger.Warnw("failed to close session",
				"session_id", id,
				"error", err,
			)
		}
		delete(app.sessions, id)
	}
}

// createSession registers a new controller under a fresh ID with its own
// directory beneath the configured work dir.
func (app *App) createSession() (string, *session.Controller, error) {
	id := uuid.New().String()
	workDir := filepath.Join(app.cfg.Server.WorkDir, id)

	ctrl, err := session.NewController(
		workDir,
		app.logger.Named("session"),
		app.transcoder,
		app.recognizer,
		app.translator,
	)
	if err != nil {
		return "", nil, err
	}

	app.mu.Lock()
	app.sessions[id] = ctrl
	app.mu.Unlock()

	return id, ctrl, nil
}

func (app *App) session(c *gin.Context) (*session.Controller, bool) {
	id := c.Param("session_id")

	app.mu.RLock()
	ctrl, ok := app.sessions[id]
	app.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return ctrl, true
}

func (app *App) dropSession(id string) (*session.Controller, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	ctrl, ok := app.sessions[id]
	if ok {
		delete(app.sessions, id)
	}
	return ctrl, ok
}
